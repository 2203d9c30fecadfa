package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// MeasureStore reads and writes persisted measures.
type MeasureStore struct {
	db *sql.DB
}

// NewMeasureStore creates a MeasureStore instance.
// DB should have schema already created.
func NewMeasureStore(db *sql.DB) *MeasureStore {
	return &MeasureStore{db: db}
}

var measureColumns = []string{
	"pm.id", "pm.component_uuid", "pm.analysis_uuid", "pm.metric_id",
	"pm.value", "pm.text_value", "pm.variation_value_1", "pm.alert_status", "pm.alert_text",
	"pm.rule_id", "pm.characteristic_id", "pm.developer", "pm.measure_data",
}

// SelectLastMeasure returns the component-level measure of the metric stored
// with the analysis flagged last. Returns (nil, nil) if there is none.
func (s *MeasureStore) SelectLastMeasure(componentUUID string, metricID int) (*MeasureRecord, error) {
	row := sq.Select(measureColumns...).
		From("project_measures pm").
		Join("snapshots s ON s.uuid = pm.analysis_uuid").
		Where(sq.Eq{
			"pm.component_uuid":    componentUUID,
			"pm.metric_id":         metricID,
			"s.islast":             true,
			"pm.rule_id":           nil,
			"pm.characteristic_id": nil,
			"pm.developer":         nil,
		}).
		RunWith(s.db).
		QueryRow()

	rec, err := scanMeasure(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// SelectMeasure returns the measure of the metric stored with the given
// analysis. A nil ruleID or characteristicID selects rows where it is unset.
// Returns (nil, nil) if there is none.
func (s *MeasureStore) SelectMeasure(componentUUID, analysisUUID string, metricID int, ruleID, characteristicID *int) (*MeasureRecord, error) {
	row := sq.Select(measureColumns...).
		From("project_measures pm").
		Where(sq.Eq{
			"pm.component_uuid":    componentUUID,
			"pm.analysis_uuid":     analysisUUID,
			"pm.metric_id":         metricID,
			"pm.rule_id":           ruleID,
			"pm.characteristic_id": characteristicID,
			"pm.developer":         nil,
		}).
		RunWith(s.db).
		QueryRow()

	rec, err := scanMeasure(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// SelectByAnalysis returns every measure stored with the analysis, ordered by component and metric.
func (s *MeasureStore) SelectByAnalysis(analysisUUID string) ([]*MeasureRecord, error) {
	rows, err := sq.Select(measureColumns...).
		From("project_measures pm").
		Where(sq.Eq{"pm.analysis_uuid": analysisUUID}).
		OrderBy("pm.component_uuid", "pm.metric_id", "pm.id").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query measures of analysis %s: %w", analysisUUID, err)
	}
	defer rows.Close()

	var records []*MeasureRecord
	for rows.Next() {
		rec, err := scanMeasure(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertMeasures writes measures in a single transaction.
// More efficient than individual writes for bulk inserts.
func (s *MeasureStore) InsertMeasures(records []*MeasureRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Build the query once with Squirrel, then get SQL and args for preparation
	sqlStr, _, err := sq.Insert("project_measures").
		Columns(
			"component_uuid", "analysis_uuid", "metric_id",
			"value", "text_value", "variation_value_1", "alert_status", "alert_text",
			"rule_id", "characteristic_id", "developer", "measure_data",
		).
		Values("", "", 0, nil, nil, nil, nil, nil, nil, nil, nil, nil).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		res, err := stmt.Exec(
			r.ComponentUUID, r.AnalysisUUID, r.MetricID,
			r.Value, r.TextValue, r.Variation, r.AlertStatus, r.AlertText,
			r.RuleID, r.CharacteristicID, r.Developer, r.Data,
		)
		if err != nil {
			return fmt.Errorf("failed to insert measure %d of %s: %w", r.MetricID, r.ComponentUUID, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			r.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit measures: %w", err)
	}
	return nil
}

func scanMeasure(row rowScanner) (*MeasureRecord, error) {
	rec := &MeasureRecord{}
	var (
		value, variation                  sql.NullFloat64
		textValue, alertStatus, alertText sql.NullString
		developer, data                   sql.NullString
		ruleID, characteristicID          sql.NullInt64
	)
	err := row.Scan(
		&rec.ID, &rec.ComponentUUID, &rec.AnalysisUUID, &rec.MetricID,
		&value, &textValue, &variation, &alertStatus, &alertText,
		&ruleID, &characteristicID, &developer, &data,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan measure: %w", err)
	}

	rec.Value = floatPtr(value)
	rec.Variation = floatPtr(variation)
	rec.TextValue = stringPtr(textValue)
	rec.AlertStatus = stringPtr(alertStatus)
	rec.AlertText = stringPtr(alertText)
	rec.Developer = stringPtr(developer)
	rec.Data = stringPtr(data)
	rec.RuleID = intPtr(ruleID)
	rec.CharacteristicID = intPtr(characteristicID)
	return rec, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
