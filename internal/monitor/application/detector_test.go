package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/libwatch/internal/infrastructure/statefile"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

type fakeClient struct {
	mu       sync.Mutex
	versions map[string]string
	errs     map[string]error
	slow     map[string]time.Duration
	inflight int
	peak     int
}

func (c *fakeClient) LatestVersion(ctx context.Context, library string) (string, error) {
	c.mu.Lock()
	c.inflight++
	if c.inflight > c.peak {
		c.peak = c.inflight
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inflight--
		c.mu.Unlock()
	}()

	if delay, ok := c.slow[library]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err, ok := c.errs[library]; ok {
		return "", err
	}
	version, ok := c.versions[library]
	if !ok {
		return "", fmt.Errorf("no such project: %s", library)
	}
	return version, nil
}

func (c *fakeClient) peakInflight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type failingStore struct{ err error }

func (s *failingStore) Commit(string, domain.LibraryMeta, string, time.Time) (domain.ChangeEvent, error) {
	return domain.ChangeEvent{}, s.err
}

func (s *failingStore) SetLastFullCheck(time.Time) error { return nil }

type captureArchive struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (a *captureArchive) Archive(event domain.ChangeEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, event)
	return nil
}

func newCycleStore(t *testing.T) *statefile.Store {
	t.Helper()
	store, err := statefile.Open(filepath.Join(t.TempDir(), "state.json"), domain.DefaultPolicy())
	require.NoError(t, err)
	return store
}

func TestRunCycle_CommitsEventsInInputOrder(t *testing.T) {
	store := newCycleStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{versions: map[string]string{
		"torch":   "2.0.0",
		"fastapi": "0.95.0",
		"ray":     "2.9.1",
	}}

	detector := NewDetector(DetectorConfig{
		Client: client,
		Store:  store,
		Clock:  fixedClock{now},
	})

	result := detector.RunCycle(context.Background(), []string{"ray", "torch", "fastapi"})
	require.Empty(t, result.Failures)
	require.Len(t, result.Events, 3)

	// Commits follow the input order regardless of fetch completion order.
	assert.Equal(t, "ray", result.Events[0].Library)
	assert.Equal(t, "torch", result.Events[1].Library)
	assert.Equal(t, "fastapi", result.Events[2].Library)

	// First observations have no prior version to grade against.
	for _, event := range result.Events {
		assert.Equal(t, domain.ClassUnknownFormat, event.Classification)
		assert.False(t, event.Breaking)
	}

	assert.Equal(t, now, store.LastFullCheck())
}

func TestRunCycle_ClassifiesAgainstStoredVersion(t *testing.T) {
	store := newCycleStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := store.Commit("torch", domain.LibraryMeta{Name: "torch"}, "1.4.2", base)
	require.NoError(t, err)

	client := &fakeClient{versions: map[string]string{"torch": "2.0.0"}}
	detector := NewDetector(DetectorConfig{
		Client: client,
		Store:  store,
		Clock:  fixedClock{base.Add(time.Hour)},
	})

	result := detector.RunCycle(context.Background(), []string{"torch"})
	require.Len(t, result.Events, 1)
	assert.Equal(t, domain.ClassMajor, result.Events[0].Classification)
	assert.True(t, result.Events[0].Breaking)
	assert.Equal(t, "1.4.2", result.Events[0].FromRaw)
	assert.Equal(t, "2.0.0", result.Events[0].ToRaw)
}

func TestRunCycle_PartialFailure(t *testing.T) {
	store := newCycleStore(t)
	client := &fakeClient{
		versions: map[string]string{"torch": "2.0.0", "ray": "2.9.1"},
		errs:     map[string]error{"fastapi": errors.New("registry returned 503")},
	}

	detector := NewDetector(DetectorConfig{Client: client, Store: store})
	result := detector.RunCycle(context.Background(), []string{"torch", "fastapi", "ray"})

	require.Len(t, result.Events, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "fastapi", result.Failures[0].Library)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, result.Failures[0].Err, &fetchErr)
	assert.Equal(t, "fastapi", fetchErr.Library)

	// The failed library gains no record; the successes are committed.
	_, ok := store.Record("fastapi")
	assert.False(t, ok)
	_, ok = store.Record("torch")
	assert.True(t, ok)

	// The cycle still counts as completed.
	assert.False(t, store.LastFullCheck().IsZero())
}

func TestRunCycle_FetchTimeout(t *testing.T) {
	store := newCycleStore(t)
	client := &fakeClient{
		versions: map[string]string{"torch": "2.0.0"},
		slow:     map[string]time.Duration{"torch": time.Second},
	}

	detector := NewDetector(DetectorConfig{
		Client:       client,
		Store:        store,
		FetchTimeout: 20 * time.Millisecond,
	})

	result := detector.RunCycle(context.Background(), []string{"torch"})
	require.Empty(t, result.Events)
	require.Len(t, result.Failures, 1)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, result.Failures[0].Err, &fetchErr)
	assert.ErrorIs(t, fetchErr, context.DeadlineExceeded)
}

func TestRunCycle_BoundsConcurrentFetches(t *testing.T) {
	store := newCycleStore(t)
	versions := make(map[string]string)
	slow := make(map[string]time.Duration)
	var ids []string
	for i := range 8 {
		id := fmt.Sprintf("lib-%d", i)
		ids = append(ids, id)
		versions[id] = "1.0.0"
		slow[id] = 30 * time.Millisecond
	}
	client := &fakeClient{versions: versions, slow: slow}

	detector := NewDetector(DetectorConfig{
		Client:  client,
		Store:   store,
		Workers: 2,
	})

	result := detector.RunCycle(context.Background(), ids)
	require.Empty(t, result.Failures)
	assert.LessOrEqual(t, client.peakInflight(), 2)
}

func TestRunCycle_StorageFailureReported(t *testing.T) {
	writeErr := &domain.StorageWriteError{Path: "/state.json", Err: errors.New("disk full")}
	client := &fakeClient{versions: map[string]string{"torch": "2.0.0"}}

	detector := NewDetector(DetectorConfig{
		Client: client,
		Store:  &failingStore{err: writeErr},
	})

	result := detector.RunCycle(context.Background(), []string{"torch"})
	require.Empty(t, result.Events)
	require.Len(t, result.Failures, 1)

	var storageErr *domain.StorageWriteError
	assert.ErrorAs(t, result.Failures[0].Err, &storageErr)
}

func TestRunCycle_UsesConfiguredMeta(t *testing.T) {
	store := newCycleStore(t)
	client := &fakeClient{versions: map[string]string{"torch": "2.0.0"}}

	detector := NewDetector(DetectorConfig{
		Client: client,
		Store:  store,
		Metas: map[string]domain.LibraryMeta{
			"torch": {Name: "torch", DisplayName: "PyTorch", Category: "ml", Tags: []string{"ml", "tensor"}},
		},
	})

	result := detector.RunCycle(context.Background(), []string{"torch"})
	require.Len(t, result.Events, 1)

	rec, ok := store.Record("torch")
	require.True(t, ok)
	assert.Equal(t, "PyTorch", rec.DisplayName)
	assert.Equal(t, []string{"ml", "tensor"}, rec.Tags)
}

func TestRunCycle_ArchivesEvents(t *testing.T) {
	store := newCycleStore(t)
	client := &fakeClient{versions: map[string]string{"torch": "2.0.0", "ray": "2.9.1"}}
	archive := &captureArchive{}

	detector := NewDetector(DetectorConfig{
		Client:  client,
		Store:   store,
		Archive: archive,
	})

	result := detector.RunCycle(context.Background(), []string{"torch", "ray"})
	require.Len(t, result.Events, 2)
	assert.Equal(t, result.Events, archive.events)
}

func TestRunCycle_DoesNotArchiveReObservations(t *testing.T) {
	store := newCycleStore(t)
	client := &fakeClient{versions: map[string]string{"torch": "2.0.0"}}
	archive := &captureArchive{}

	detector := NewDetector(DetectorConfig{
		Client:  client,
		Store:   store,
		Archive: archive,
	})

	detector.RunCycle(context.Background(), []string{"torch"})
	require.Len(t, archive.events, 1)

	// The second cycle sees the same version; the resulting none event is
	// reporting, not history.
	result := detector.RunCycle(context.Background(), []string{"torch"})
	require.Len(t, result.Events, 1)
	assert.Equal(t, domain.ClassNone, result.Events[0].Classification)
	assert.Len(t, archive.events, 1)
}

func TestRunCycle_ArchiveFailureIsNotFatal(t *testing.T) {
	store := newCycleStore(t)
	client := &fakeClient{versions: map[string]string{"torch": "2.0.0"}}
	archive := &captureArchive{err: errors.New("archive locked")}

	detector := NewDetector(DetectorConfig{
		Client:  client,
		Store:   store,
		Archive: archive,
	})

	result := detector.RunCycle(context.Background(), []string{"torch"})
	require.Empty(t, result.Failures)
	require.Len(t, result.Events, 1)

	// The durable state still advanced.
	rec, ok := store.Record("torch")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", rec.LastKnown)
}
