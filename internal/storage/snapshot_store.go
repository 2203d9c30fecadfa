package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// SnapshotStore reads and writes the analysis history of root components.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a SnapshotStore instance.
// DB should have schema already created.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

var snapshotColumns = []string{"uuid", "component_uuid", "created_at", "version", "status", "islast"}

// SelectSnapshots returns every analysis of the component, processed or not,
// ordered by creation date.
func (s *SnapshotStore) SelectSnapshots(componentUUID string) ([]*Snapshot, error) {
	rows, err := sq.Select(snapshotColumns...).
		From("snapshots").
		Where(sq.Eq{"component_uuid": componentUUID}).
		OrderBy("created_at", "uuid").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots of %s: %w", componentUUID, err)
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// SelectLastSnapshot returns the analysis flagged last for the component.
// Returns (nil, nil) if the component was never analysed.
func (s *SnapshotStore) SelectLastSnapshot(componentUUID string) (*Snapshot, error) {
	row := sq.Select(snapshotColumns...).
		From("snapshots").
		Where(sq.Eq{"component_uuid": componentUUID, "islast": true}).
		RunWith(s.db).
		QueryRow()

	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return snap, err
}

// SelectVersionEvents returns the Version events of the component, most recent first.
func (s *SnapshotStore) SelectVersionEvents(componentUUID string) ([]*Event, error) {
	rows, err := sq.Select("e.uuid", "e.analysis_uuid", "e.component_uuid", "e.name", "e.category", "e.event_date").
		From("events e").
		Join("snapshots s ON s.uuid = e.analysis_uuid").
		Where(sq.Eq{"e.component_uuid": componentUUID, "e.category": EventCategoryVersion}).
		OrderBy("e.event_date DESC", "s.created_at DESC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query version events of %s: %w", componentUUID, err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.UUID, &e.AnalysisUUID, &e.ComponentUUID, &e.Name, &e.Category, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// InsertSnapshot records a new analysis.
func (s *SnapshotStore) InsertSnapshot(snap *Snapshot) error {
	_, err := sq.Insert("snapshots").
		Columns(snapshotColumns...).
		Values(snap.UUID, snap.ComponentUUID, snap.CreatedAt, snap.Version, snap.Status, snap.IsLast).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert snapshot %s: %w", snap.UUID, err)
	}
	return nil
}

// InsertEvent records an event of an analysis.
func (s *SnapshotStore) InsertEvent(e *Event) error {
	_, err := sq.Insert("events").
		Columns("uuid", "analysis_uuid", "component_uuid", "name", "category", "event_date").
		Values(e.UUID, e.AnalysisUUID, e.ComponentUUID, e.Name, e.Category, e.Date).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert event %s: %w", e.Name, err)
	}
	return nil
}

// MarkProcessedAndLast flags the analysis as processed and as the last one of
// its component, clearing the flag on every other analysis.
func (s *SnapshotStore) MarkProcessedAndLast(componentUUID, analysisUUID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := sq.Update("snapshots").
		Set("islast", false).
		Where(sq.Eq{"component_uuid": componentUUID}).
		RunWith(tx).
		Exec(); err != nil {
		return fmt.Errorf("failed to clear last snapshot: %w", err)
	}

	res, err := sq.Update("snapshots").
		Set("islast", true).
		Set("status", SnapshotStatusProcessed).
		Where(sq.Eq{"uuid": analysisUUID, "component_uuid": componentUUID}).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to mark snapshot %s: %w", analysisUUID, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return fmt.Errorf("snapshot %s of component %s not found", analysisUUID, componentUUID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot flags: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	snap := &Snapshot{}
	var version sql.NullString
	if err := row.Scan(&snap.UUID, &snap.ComponentUUID, &snap.CreatedAt, &version, &snap.Status, &snap.IsLast); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	if version.Valid {
		v := version.String
		snap.Version = &v
	}
	return snap, nil
}
