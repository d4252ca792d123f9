package domain

// Classification is the severity of a detected version transition.
type Classification string

const (
	// ClassNone means no forward progress: same version, a downgrade, or a
	// republish. Logged but not reported as an update.
	ClassNone Classification = "none"
	// ClassPatch means only the patch segment (or pre-release/build label)
	// advanced.
	ClassPatch Classification = "patch"
	// ClassMinor means the minor segment advanced.
	ClassMinor Classification = "minor"
	// ClassMajor means the major segment advanced.
	ClassMajor Classification = "major"
	// ClassUnknownFormat means one side is unparseable so the risk cannot be
	// assessed; surfaced to the user as needing a manual check.
	ClassUnknownFormat Classification = "unknown_format"
)

// String returns the classification as its wire value.
func (c Classification) String() string { return string(c) }

// Policy configures classification conventions.
type Policy struct {
	// ZeroMajorMinorBreaking treats a minor bump at major version 0 as
	// potentially breaking, matching common pre-1.0 semver practice.
	ZeroMajorMinorBreaking bool
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{ZeroMajorMinorBreaking: true}
}

// Classify determines the severity of moving from prev to cur and whether
// the transition is considered breaking. It is pure and deterministic.
//
// An Equal or Greater comparison yields ClassNone: a downgrade or republish
// is recorded but never reported as an update. An Unknown comparison yields
// ClassUnknownFormat with the breaking flag unset. Only a strictly forward
// comparison is graded major/minor/patch.
func Classify(prev, cur Version, policy Policy) (Classification, bool) {
	switch Compare(prev, cur) {
	case OrderEqual, OrderGreater:
		return ClassNone, false
	case OrderUnknown:
		return ClassUnknownFormat, false
	}

	if prev.Major() != cur.Major() {
		return ClassMajor, true
	}
	if prev.Minor() != cur.Minor() {
		breaking := policy.ZeroMajorMinorBreaking && cur.Major() == 0
		return ClassMinor, breaking
	}
	return ClassPatch, false
}
