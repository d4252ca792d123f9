// Package statefile implements the durable state store for libwatch.
//
// The whole state is one JSON document keyed by library identifier. Every
// commit rewrites the document to a temporary file in the same directory
// and renames it into place, so a crash mid-write always leaves the prior
// durable state intact. All mutations are serialized through a single
// mutex: a commit's durable write finishes before the next one begins.
package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/libwatch/internal/log"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

const schemaVersion = 1

// document is the durable JSON layout. It is replaced wholesale on every
// commit, never edited in place.
type document struct {
	SchemaVersion int                              `json:"schema_version"`
	LastFullCheck time.Time                        `json:"last_full_check,omitzero"`
	Libraries     map[string]*domain.LibraryRecord `json:"libraries"`
}

// Store owns the persisted library records and their change histories.
// All other components hold at most transient copies.
type Store struct {
	path   string
	policy domain.Policy

	mu  sync.Mutex
	doc document
}

// Open loads the state document at path. A missing file yields an empty
// store; an unreadable or corrupt file is a hard StorageReadError — the
// caller must not proceed as if no libraries were tracked.
func Open(path string, policy domain.Policy) (*Store, error) {
	s := &Store{
		path:   path,
		policy: policy,
		doc: document{
			SchemaVersion: schemaVersion,
			Libraries:     make(map[string]*domain.LibraryRecord),
		},
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug(log.CatStore, "No state file, starting empty", "path", path)
			return s, nil
		}
		return nil, &domain.StorageReadError{Path: path, Err: err}
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, &domain.StorageReadError{Path: path, Err: err}
	}
	if s.doc.Libraries == nil {
		s.doc.Libraries = make(map[string]*domain.LibraryRecord)
	}

	log.Debug(log.CatStore, "Loaded state", "path", path, "libraries", len(s.doc.Libraries))
	return s, nil
}

// Path returns the location of the durable state document.
func (s *Store) Path() string { return s.path }

// Commit records an observation of rawVersion for the library. It is the
// sole mutator of library records: it classifies the transition from the
// stored last-known version (an absent record classifies against the
// unparseable empty sentinel), appends the resulting ChangeEvent, updates
// the last-known version and last-checked timestamp, and persists the whole
// document durably before returning.
//
// A none classification on an existing record means no forward progress
// (republish or downgrade): only the last-checked timestamp is refreshed.
// No event is recorded and the last-known version stays put, so an
// unacknowledged update keeps pending across re-checks until Mark
// acknowledges it or a newer release supersedes it. The returned event
// still describes the non-observation for the caller's reporting.
func (s *Store) Commit(id string, meta domain.LibraryMeta, rawVersion string, now time.Time) (domain.ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevRec, existed := s.doc.Libraries[id]

	updated := domain.LibraryRecord{
		Name:        id,
		DisplayName: meta.DisplayName,
		Category:    meta.Category,
		Tags:        slices.Clone(meta.Tags),
	}
	prev := domain.ParseVersion("")
	if existed {
		updated.LastKnown = prevRec.LastKnown
		updated.Events = slices.Clone(prevRec.Events)
		prev = prevRec.LastKnownVersion()
	}

	classification, breaking := domain.Classify(prev, domain.ParseVersion(rawVersion), s.policy)
	event := domain.ChangeEvent{
		ID:             uuid.NewString(),
		Library:        id,
		FromRaw:        updated.LastKnown,
		ToRaw:          rawVersion,
		Classification: classification,
		Breaking:       breaking,
		DetectedAt:     now,
	}

	if classification != domain.ClassNone || !existed {
		updated.Events = append(updated.Events, event)
		updated.LastKnown = rawVersion
	}
	updated.LastChecked = now
	s.doc.Libraries[id] = &updated

	if err := s.persistLocked(); err != nil {
		// Pre-swap failure: restore the in-memory view to match the
		// untouched durable state.
		if existed {
			s.doc.Libraries[id] = prevRec
		} else {
			delete(s.doc.Libraries, id)
		}
		return domain.ChangeEvent{}, err
	}

	log.Debug(log.CatStore, "Committed observation",
		"library", id, "version", rawVersion, "classification", string(classification), "breaking", breaking)
	return event, nil
}

// Mark sets a library's last-known version to the given value without
// consulting the registry, appending a none-classified audit event. Used to
// suppress a spurious or already-handled update. Returns
// LibraryNotFoundError for a library that has never been checked.
func (s *Store) Mark(id, rawVersion string, now time.Time) (domain.ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevRec, ok := s.doc.Libraries[id]
	if !ok {
		return domain.ChangeEvent{}, &domain.LibraryNotFoundError{Name: id}
	}

	updated := *prevRec
	updated.Tags = slices.Clone(prevRec.Tags)
	event := domain.ChangeEvent{
		ID:             uuid.NewString(),
		Library:        id,
		FromRaw:        prevRec.LastKnown,
		ToRaw:          rawVersion,
		Classification: domain.ClassNone,
		Breaking:       false,
		DetectedAt:     now,
	}
	updated.Events = append(slices.Clone(prevRec.Events), event)
	updated.LastKnown = rawVersion
	s.doc.Libraries[id] = &updated

	if err := s.persistLocked(); err != nil {
		s.doc.Libraries[id] = prevRec
		return domain.ChangeEvent{}, err
	}

	log.Info(log.CatStore, "Marked version", "library", id, "version", rawVersion)
	return event, nil
}

// SetLastFullCheck records the completion time of a full check cycle.
func (s *Store) SetLastFullCheck(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc.LastFullCheck
	s.doc.LastFullCheck = t
	if err := s.persistLocked(); err != nil {
		s.doc.LastFullCheck = prev
		return err
	}
	return nil
}

// LastFullCheck returns the completion time of the most recent full cycle,
// zero if none has run.
func (s *Store) LastFullCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.LastFullCheck
}

// Record returns a copy of one library's record.
func (s *Store) Record(id string) (domain.LibraryRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Libraries[id]
	if !ok {
		return domain.LibraryRecord{}, false
	}
	return copyRecord(rec), true
}

// Records returns copies of all library records, ordered by name.
func (s *Store) Records() []domain.LibraryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]domain.LibraryRecord, 0, len(s.doc.Libraries))
	for _, rec := range s.doc.Libraries {
		records = append(records, copyRecord(rec))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// Pending returns the records whose latest event is a non-none
// classification, ordered by name.
func (s *Store) Pending() []domain.LibraryRecord {
	var pending []domain.LibraryRecord
	for _, rec := range s.Records() {
		if rec.Pending() {
			pending = append(pending, rec)
		}
	}
	return pending
}

// EventsSince returns all change events detected after t across every
// library, newest first; ties are broken by library name ascending.
func (s *Store) EventsSince(t time.Time) []domain.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []domain.ChangeEvent
	for _, rec := range s.doc.Libraries {
		for _, e := range rec.Events {
			if e.DetectedAt.After(t) {
				events = append(events, e)
			}
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].DetectedAt.Equal(events[j].DetectedAt) {
			return events[i].DetectedAt.After(events[j].DetectedAt)
		}
		return events[i].Library < events[j].Library
	})
	return events
}

// persistLocked atomically replaces the durable document. Must be called
// with mu held. The temporary file lives in the destination directory so
// the rename never crosses a filesystem boundary.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return &domain.StorageWriteError{Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &domain.StorageWriteError{Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return &domain.StorageWriteError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &domain.StorageWriteError{Path: s.path, Err: cause}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &domain.StorageWriteError{Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return &domain.StorageWriteError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &domain.StorageWriteError{Path: s.path, Err: fmt.Errorf("atomic swap: %w", err)}
	}
	return nil
}

func copyRecord(rec *domain.LibraryRecord) domain.LibraryRecord {
	out := *rec
	out.Tags = slices.Clone(rec.Tags)
	out.Events = slices.Clone(rec.Events)
	return out
}
