package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

func newTestArchive(t *testing.T) *EventArchive {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.EventArchive()
}

func testEvent(library, from, to string, class domain.Classification, at time.Time) domain.ChangeEvent {
	return domain.ChangeEvent{
		ID:             uuid.NewString(),
		Library:        library,
		FromRaw:        from,
		ToRaw:          to,
		Classification: class,
		Breaking:       class == domain.ClassMajor,
		DetectedAt:     at,
	}
}

func TestEventArchive_RoundTrip(t *testing.T) {
	archive := newTestArchive(t)
	now := time.Now().UTC().Truncate(time.Second)

	event := testEvent("torch", "1.4.2", "2.0.0", domain.ClassMajor, now)
	require.NoError(t, archive.Archive(event))

	got, err := archive.EventsBetween(now.Add(-time.Hour), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, event, got[0])
}

func TestEventArchive_ArchiveIsIdempotent(t *testing.T) {
	archive := newTestArchive(t)
	now := time.Now().UTC().Truncate(time.Second)

	event := testEvent("torch", "1.4.2", "1.4.5", domain.ClassPatch, now)
	require.NoError(t, archive.Archive(event))
	require.NoError(t, archive.Archive(event))

	got, err := archive.EventsBetween(now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEventArchive_WindowAndOrdering(t *testing.T) {
	archive := newTestArchive(t)
	base := time.Now().UTC().Truncate(time.Second)

	old := testEvent("torch", "1.0.0", "1.1.0", domain.ClassMinor, base.Add(-72*time.Hour))
	recent := testEvent("torch", "1.1.0", "1.2.0", domain.ClassMinor, base.Add(-2*time.Hour))
	tiedA := testEvent("fastapi", "0.1.0", "0.2.0", domain.ClassMinor, base.Add(-time.Hour))
	tiedB := testEvent("ray", "2.0.0", "2.0.1", domain.ClassPatch, base.Add(-time.Hour))

	for _, e := range []domain.ChangeEvent{old, recent, tiedB, tiedA} {
		require.NoError(t, archive.Archive(e))
	}

	got, err := archive.EventsBetween(base.Add(-24*time.Hour), base)
	require.NoError(t, err)
	require.Len(t, got, 3, "events outside the window are excluded")

	// Newest first; equal timestamps ordered by library name.
	assert.Equal(t, tiedA.ID, got[0].ID)
	assert.Equal(t, tiedB.ID, got[1].ID)
	assert.Equal(t, recent.ID, got[2].ID)
}

func TestNewDB_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "archive.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
