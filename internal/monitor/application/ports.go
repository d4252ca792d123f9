package application

import (
	"context"
	"time"

	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

// RegistryClient fetches the current published version for a library.
// Retry policy, if any, belongs to the client; the detector treats any
// error as a per-library fetch failure and moves on.
type RegistryClient interface {
	LatestVersion(ctx context.Context, library string) (string, error)
}

// StateCommitter is the mutating slice of the state store the detector
// depends on.
type StateCommitter interface {
	Commit(id string, meta domain.LibraryMeta, rawVersion string, now time.Time) (domain.ChangeEvent, error)
	SetLastFullCheck(t time.Time) error
}

// EventArchiver mirrors committed change events into a queryable index.
// Archiving is best-effort: the state file remains the source of truth.
type EventArchiver interface {
	Archive(event domain.ChangeEvent) error
}
