package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// PropertyStore persists the scanner context properties of analyses.
type PropertyStore struct {
	db *sql.DB
}

// NewPropertyStore creates a PropertyStore instance.
func NewPropertyStore(db *sql.DB) *PropertyStore {
	return &PropertyStore{db: db}
}

// InsertProperties writes properties in a single transaction.
func (s *PropertyStore) InsertProperties(props []*AnalysisProperty) error {
	if len(props) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	for _, p := range props {
		_, err := sq.Insert("analysis_properties").
			Columns("uuid", "analysis_uuid", "kee", "value", "created_at").
			Values(p.UUID, p.AnalysisUUID, p.Key, p.Value, p.CreatedAt).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert analysis property %s: %w", p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis properties: %w", err)
	}
	return nil
}

// SelectByAnalysis returns the properties of an analysis ordered by key.
func (s *PropertyStore) SelectByAnalysis(analysisUUID string) ([]*AnalysisProperty, error) {
	rows, err := sq.Select("uuid", "analysis_uuid", "kee", "value", "created_at").
		From("analysis_properties").
		Where(sq.Eq{"analysis_uuid": analysisUUID}).
		OrderBy("kee").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis properties: %w", err)
	}
	defer rows.Close()

	var props []*AnalysisProperty
	for rows.Next() {
		p := &AnalysisProperty{}
		if err := rows.Scan(&p.UUID, &p.AnalysisUUID, &p.Key, &p.Value, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}
