package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

// EventArchive stores change events in SQLite for indexed time-window
// queries. Rows are append-only; re-archiving an already-stored event is a
// no-op, keyed by the event's ID.
type EventArchive struct {
	db *sql.DB
}

func newEventArchive(db *sql.DB) *EventArchive {
	return &EventArchive{db: db}
}

// Archive stores one change event. Safe to call with events that were
// already archived.
func (a *EventArchive) Archive(event domain.ChangeEvent) error {
	_, err := a.db.Exec(
		`INSERT OR IGNORE INTO change_events (id, library, from_version, to_version, classification, breaking, detected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Library, event.FromRaw, event.ToRaw,
		string(event.Classification), event.Breaking, event.DetectedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("archiving change event: %w", err)
	}
	return nil
}

// EventsBetween returns the events detected in (from, to], newest first;
// ties are broken by library name ascending.
func (a *EventArchive) EventsBetween(from, to time.Time) ([]domain.ChangeEvent, error) {
	rows, err := a.db.Query(
		`SELECT id, library, from_version, to_version, classification, breaking, detected_at
		 FROM change_events
		 WHERE detected_at > ? AND detected_at <= ?
		 ORDER BY detected_at DESC, library ASC`,
		from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying change events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.ChangeEvent
	for rows.Next() {
		var (
			e              domain.ChangeEvent
			classification string
			detectedAt     int64
		)
		if err := rows.Scan(&e.ID, &e.Library, &e.FromRaw, &e.ToRaw, &classification, &e.Breaking, &detectedAt); err != nil {
			return nil, fmt.Errorf("scanning change event row: %w", err)
		}
		e.Classification = domain.Classification(classification)
		e.DetectedAt = time.Unix(detectedAt, 0).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change event rows: %w", err)
	}
	return events, nil
}
