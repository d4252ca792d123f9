package learning

import (
	"sort"

	"github.com/zjrosen/libwatch/internal/log"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

// Opportunity pairs one attention-worthy change event with the concepts
// worth studying before acting on it.
type Opportunity struct {
	Event    domain.ChangeEvent
	Library  domain.LibraryMeta
	Concepts []Concept
}

// Mapper matches change events against a concept catalog.
type Mapper struct {
	catalog Catalog
}

// NewMapper creates a Mapper over the given catalog.
func NewMapper(catalog Catalog) *Mapper {
	return &Mapper{catalog: catalog}
}

// Opportunities returns a study plan for the given events. Only events
// that need attention are considered; each is paired with the catalog
// concepts that share at least one tag with the library and sit at or
// below the requested level. Events that match no concept are dropped.
// Results are ordered newest event first, ties broken by library name.
func (m *Mapper) Opportunities(events []domain.ChangeEvent, metas map[string]domain.LibraryMeta, level Level) []Opportunity {
	var out []Opportunity
	for _, event := range events {
		if !event.NeedsAttention() {
			continue
		}

		meta, ok := metas[event.Library]
		if !ok {
			meta = domain.LibraryMeta{Name: event.Library}
		}

		concepts := m.match(meta.Tags, level)
		if len(concepts) == 0 {
			log.Debug(log.CatLearn, "No concepts matched", "library", event.Library, "level", level.String())
			continue
		}
		out = append(out, Opportunity{Event: event, Library: meta, Concepts: concepts})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Event.DetectedAt.Equal(out[j].Event.DetectedAt) {
			return out[i].Event.DetectedAt.After(out[j].Event.DetectedAt)
		}
		return out[i].Event.Library < out[j].Event.Library
	})
	return out
}

// match returns the concepts sharing a tag with tags, at or below level,
// in catalog order.
func (m *Mapper) match(tags []string, level Level) []Concept {
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	var matched []Concept
	for _, concept := range m.catalog.Concepts {
		if !concept.Level.AtMost(level) {
			continue
		}
		for _, tag := range concept.Tags {
			if _, ok := tagSet[tag]; ok {
				matched = append(matched, concept)
				break
			}
		}
	}
	return matched
}
