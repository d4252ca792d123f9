package application

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/libwatch/internal/log"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

// CycleFailure records a library whose check did not complete this cycle,
// whether the registry fetch or the storage commit failed. Err preserves
// the typed cause (FetchError or StorageWriteError).
type CycleFailure struct {
	Library string
	Err     error
}

// CycleResult is the outcome of one check cycle: the change events
// committed, plus the libraries that failed, each list in the iteration
// order of the input set.
type CycleResult struct {
	Events   []domain.ChangeEvent
	Failures []CycleFailure
}

// Clock provides the current time (overridable for testing).
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	Client RegistryClient
	Store  StateCommitter

	// Archive receives committed events; nil disables archiving.
	Archive EventArchiver

	// Metas supplies configured identity (display name, tags) per library.
	// Libraries without an entry are committed with their bare name.
	Metas map[string]domain.LibraryMeta

	// Workers bounds concurrent registry fetches. Defaults to 4.
	Workers int

	// FetchTimeout bounds each registry fetch. A timed-out fetch is a
	// CycleFailure like any other. Defaults to 10 seconds.
	FetchTimeout time.Duration

	// Clock is used for commit timestamps (for testing). Nil uses UTC now.
	Clock Clock
}

// Detector runs check cycles: it fetches current versions from the
// registry concurrently, then commits each observation through the store,
// which classifies the transition and persists it.
type Detector struct {
	client       RegistryClient
	store        StateCommitter
	archive      EventArchiver
	metas        map[string]domain.LibraryMeta
	workers      int
	fetchTimeout time.Duration
	clock        Clock
	tracer       trace.Tracer
}

// NewDetector creates a Detector from the given configuration.
func NewDetector(cfg DetectorConfig) *Detector {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}

	return &Detector{
		client:       cfg.Client,
		store:        cfg.Store,
		archive:      cfg.Archive,
		metas:        cfg.Metas,
		workers:      workers,
		fetchTimeout: fetchTimeout,
		clock:        clock,
		tracer:       otel.Tracer("libwatch/detector"),
	}
}

type fetchResult struct {
	version string
	err     error
}

// RunCycle checks every library in ids. Fetches run on a bounded worker
// pool; commits are serialized by the store and applied in input order. A
// fetch or storage failure for one library never aborts the cycle for the
// others: it is reported in CycleResult.Failures and the library's
// last-checked timestamp is left unchanged.
func (d *Detector) RunCycle(ctx context.Context, ids []string) CycleResult {
	ctx, span := d.tracer.Start(ctx, "detector.RunCycle",
		trace.WithAttributes(attribute.Int("libraries", len(ids))))
	defer span.End()

	log.Info(log.CatDetect, "Starting check cycle", "libraries", len(ids), "workers", d.workers)

	results := make([]fetchResult, len(ids))
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		log.SafeGo("detector.fetch", func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = d.fetch(ctx, id)
		})
	}
	wg.Wait()

	var result CycleResult
	for i, id := range ids {
		if results[i].err != nil {
			log.Warn(log.CatDetect, "Skipping library after fetch failure", "library", id, "error", results[i].err)
			result.Failures = append(result.Failures, CycleFailure{
				Library: id,
				Err:     &domain.FetchError{Library: id, Err: results[i].err},
			})
			continue
		}

		event, err := d.store.Commit(id, d.meta(id), results[i].version, d.clock.Now())
		if err != nil {
			log.ErrorErr(log.CatDetect, "Commit failed", err, "library", id)
			result.Failures = append(result.Failures, CycleFailure{Library: id, Err: err})
			continue
		}
		result.Events = append(result.Events, event)

		// None events describe a non-observation and are not part of the
		// recorded history, so they don't belong in the archive either.
		if d.archive != nil && event.Classification != domain.ClassNone {
			if err := d.archive.Archive(event); err != nil {
				log.Warn(log.CatDetect, "Event archive write failed", "library", id, "error", err)
			}
		}
	}

	if err := d.store.SetLastFullCheck(d.clock.Now()); err != nil {
		log.Warn(log.CatDetect, "Recording cycle completion failed", "error", err)
	}

	span.SetAttributes(
		attribute.Int("events", len(result.Events)),
		attribute.Int("failures", len(result.Failures)),
	)
	log.Info(log.CatDetect, "Check cycle finished", "events", len(result.Events), "failures", len(result.Failures))
	return result
}

// fetch retrieves the current version for one library under the per-fetch
// timeout.
func (d *Detector) fetch(ctx context.Context, id string) fetchResult {
	ctx, span := d.tracer.Start(ctx, "detector.fetch",
		trace.WithAttributes(attribute.String("library", id)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
	defer cancel()

	version, err := d.client.LatestVersion(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fetchResult{err: err}
	}
	return fetchResult{version: version}
}

func (d *Detector) meta(id string) domain.LibraryMeta {
	if meta, ok := d.metas[id]; ok {
		return meta
	}
	return domain.LibraryMeta{Name: id}
}
