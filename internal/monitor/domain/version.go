package domain

import (
	"strconv"
	"strings"
)

// Ordering is the result of comparing two versions.
type Ordering int

const (
	// OrderUnknown means at least one side is unparseable and the raw
	// strings differ, so no numeric ordering exists.
	OrderUnknown Ordering = iota
	OrderLess
	OrderEqual
	OrderGreater
)

// String returns a human-readable representation of the Ordering.
func (o Ordering) String() string {
	switch o {
	case OrderLess:
		return "less"
	case OrderEqual:
		return "equal"
	case OrderGreater:
		return "greater"
	default:
		return "unknown"
	}
}

// Version is an immutable parsed version identifier.
//
// Registries occasionally publish non-conforming identifiers, so parsing
// never fails: a string that doesn't parse is retained verbatim with
// Parseable=false and is never numerically ordered against other versions.
type Version struct {
	Raw       string
	Segments  []int    // numeric segments, left to right (major, minor, patch, ...)
	Pre       []string // pre-release identifiers, nil for a final release
	Build     string   // build metadata, ignored for ordering and equality
	Parseable bool
}

// ParseVersion parses a raw version string. It accepts an optional "v"
// prefix, one or more dot-separated numeric segments, an optional
// "-pre.release" label, and optional "+build" metadata.
func ParseVersion(raw string) Version {
	unparseable := Version{Raw: raw}

	s := strings.TrimPrefix(raw, "v")
	if s == "" {
		return unparseable
	}

	var build string
	if i := strings.IndexByte(s, '+'); i >= 0 {
		build = s[i+1:]
		s = s[:i]
		if build == "" {
			return unparseable
		}
	}

	var pre []string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		pre = strings.Split(s[i+1:], ".")
		s = s[:i]
		for _, id := range pre {
			if id == "" {
				return unparseable
			}
		}
	}

	parts := strings.Split(s, ".")
	segments := make([]int, 0, len(parts))
	for _, p := range parts {
		if !isDigits(p) {
			return unparseable
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return unparseable
		}
		segments = append(segments, n)
	}

	return Version{
		Raw:       raw,
		Segments:  segments,
		Pre:       pre,
		Build:     build,
		Parseable: true,
	}
}

// Segment returns the numeric segment at index i, treating missing trailing
// segments as 0. Returns 0 for unparseable versions.
func (v Version) Segment(i int) int {
	if i < len(v.Segments) {
		return v.Segments[i]
	}
	return 0
}

// Major returns the first numeric segment.
func (v Version) Major() int { return v.Segment(0) }

// Minor returns the second numeric segment.
func (v Version) Minor() int { return v.Segment(1) }

// String returns the raw version string.
func (v Version) String() string { return v.Raw }

// Compare orders a against b.
//
// Unparseable versions compare OrderUnknown against everything except a
// textually identical unparseable version, which compares OrderEqual so a
// republished malformed tag doesn't read as an update. Parseable versions
// compare numeric segments left to right with missing trailing segments
// treated as 0; on equal segments a pre-release orders before the final
// release, and pre-release identifiers compare per segment (numeric
// identifiers numerically and before alphanumeric ones, alphanumeric
// lexicographically, a strict prefix is less). Build metadata is ignored.
func Compare(a, b Version) Ordering {
	if !a.Parseable || !b.Parseable {
		if !a.Parseable && !b.Parseable && a.Raw == b.Raw {
			return OrderEqual
		}
		return OrderUnknown
	}

	n := len(a.Segments)
	if len(b.Segments) > n {
		n = len(b.Segments)
	}
	for i := 0; i < n; i++ {
		switch {
		case a.Segment(i) < b.Segment(i):
			return OrderLess
		case a.Segment(i) > b.Segment(i):
			return OrderGreater
		}
	}

	return comparePre(a.Pre, b.Pre)
}

// comparePre orders two pre-release labels whose numeric segments are equal.
func comparePre(a, b []string) Ordering {
	switch {
	case len(a) == 0 && len(b) == 0:
		return OrderEqual
	case len(a) == 0:
		return OrderGreater // final release follows its pre-releases
	case len(b) == 0:
		return OrderLess
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if ord := comparePreIdentifier(a[i], b[i]); ord != OrderEqual {
			return ord
		}
	}

	switch {
	case len(a) < len(b):
		return OrderLess
	case len(a) > len(b):
		return OrderGreater
	}
	return OrderEqual
}

func comparePreIdentifier(a, b string) Ordering {
	aNum, bNum := isDigits(a), isDigits(b)
	switch {
	case aNum && bNum:
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		switch {
		case ai < bi:
			return OrderLess
		case ai > bi:
			return OrderGreater
		}
		return OrderEqual
	case aNum:
		return OrderLess // numeric identifiers order before alphanumeric
	case bNum:
		return OrderGreater
	}

	switch {
	case a < b:
		return OrderLess
	case a > b:
		return OrderGreater
	}
	return OrderEqual
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
