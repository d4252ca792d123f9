package domain

import "time"

// ChangeEvent records one detected version transition for a library.
// Events are appended by the state store and never mutated or removed.
// Raw version strings are persisted verbatim; the parsed forms are
// recomputed on demand via From and To.
type ChangeEvent struct {
	ID             string         `json:"id"`
	Library        string         `json:"library"`
	FromRaw        string         `json:"from"`
	ToRaw          string         `json:"to"`
	Classification Classification `json:"classification"`
	Breaking       bool           `json:"breaking"`
	DetectedAt     time.Time      `json:"detected_at"`
}

// From returns the parsed previous version.
func (e ChangeEvent) From() Version { return ParseVersion(e.FromRaw) }

// To returns the parsed observed version.
func (e ChangeEvent) To() Version { return ParseVersion(e.ToRaw) }

// NeedsAttention reports whether the event should surface to the user:
// breaking changes, major bumps, and transitions that could not be graded.
func (e ChangeEvent) NeedsAttention() bool {
	return e.Breaking || e.Classification == ClassMajor || e.Classification == ClassUnknownFormat
}

// LibraryMeta is the configured identity of a tracked library.
type LibraryMeta struct {
	Name        string
	DisplayName string
	Category    string
	Tags        []string
}

// Display returns the display name, falling back to the registry name.
func (m LibraryMeta) Display() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// LibraryRecord is the persisted state of one tracked library: its
// last-known version, check bookkeeping, and the chronological change
// history. Created on first check, mutated only through the store's commit
// operation, never deleted.
type LibraryRecord struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name,omitempty"`
	Category    string        `json:"category,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	LastKnown   string        `json:"last_known"`
	LastChecked time.Time     `json:"last_checked"`
	Events      []ChangeEvent `json:"events"`
}

// LastKnownVersion returns the parsed last-known version. An empty
// last-known string parses as the unparseable sentinel, which makes the
// first-ever observation classify as unknown_format rather than a false
// major update.
func (r LibraryRecord) LastKnownVersion() Version {
	return ParseVersion(r.LastKnown)
}

// LastEvent returns the most recent change event, if any.
func (r LibraryRecord) LastEvent() (ChangeEvent, bool) {
	if len(r.Events) == 0 {
		return ChangeEvent{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// Pending reports whether the record's latest recorded transition is still
// awaiting acknowledgement. The history holds only real transitions and
// none-classified acknowledgements (Mark), never per-check re-observations,
// so a breaking update stays pending across re-checks of an unchanged
// registry version until it is marked or superseded by a newer release.
func (r LibraryRecord) Pending() bool {
	last, ok := r.LastEvent()
	return ok && last.Classification != ClassNone
}

// Display returns the display name, falling back to the registry name.
func (r LibraryRecord) Display() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}
