package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-gauge/internal/metric"
)

// LoadMetrics reads the metric catalogue stored in the database.
func LoadMetrics(db *sql.DB) ([]*metric.Metric, error) {
	rows, err := sq.Select("id", "name", "short_name", "val_type", "developer_scoped").
		From("metrics").
		OrderBy("id").
		RunWith(db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*metric.Metric
	for rows.Next() {
		m := &metric.Metric{}
		var valType string
		if err := rows.Scan(&m.ID, &m.Key, &m.Name, &valType, &m.DeveloperScoped); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		if m.Type, err = metric.ParseType(valType); err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Key, err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
