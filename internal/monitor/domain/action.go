package domain

// Action is the recommended response to a change event, derived from the
// change severity and the library's tags.
type Action string

const (
	// ActionUrgent flags a breaking change on a production-tagged library:
	// check compatibility before anything else.
	ActionUrgent Action = "urgent"
	// ActionDeepDive marks a change worth studying thoroughly.
	ActionDeepDive Action = "deep_dive"
	// ActionSkim marks a change worth a brief review.
	ActionSkim Action = "skim"
	// ActionBookmark marks a change to save for later.
	ActionBookmark Action = "bookmark"
)

// String returns the action as its wire value.
func (a Action) String() string { return string(a) }

func hasTag(tags []string, want ...string) bool {
	for _, tag := range tags {
		for _, w := range want {
			if tag == w {
				return true
			}
		}
	}
	return false
}

// RecommendedAction derives the suggested response to this event given the
// library's tags. Breaking changes on production-tagged libraries are
// urgent; other breaking or major changes deserve a deep dive, as does the
// first sighting of a new library. Minor changes rate a deep dive only for
// portfolio/interview-tagged libraries, a skim otherwise. Everything else,
// including transitions that could not be graded, is a bookmark.
func (e ChangeEvent) RecommendedAction(tags []string) Action {
	switch {
	case e.Breaking || e.Classification == ClassMajor:
		if hasTag(tags, "production") {
			return ActionUrgent
		}
		return ActionDeepDive
	case e.Classification == ClassMinor:
		if hasTag(tags, "portfolio", "interview") {
			return ActionDeepDive
		}
		return ActionSkim
	case e.Classification == ClassUnknownFormat && e.FromRaw == "":
		// A newly tracked library, not a malformed tag.
		return ActionDeepDive
	default:
		return ActionBookmark
	}
}
