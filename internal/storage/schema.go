package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-gauge/internal/metric"
)

// SchemaVersion is written to the metadata table on creation.
const SchemaVersion = "1.0"

// CreateSchema creates all tables and indexes of the history database and
// seeds the metric catalogue. It is idempotent.
// Uses transactions for atomicity - all schema creation succeeds or fails together.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"components", createComponentsTable},
		{"snapshots", createSnapshotsTable},
		{"events", createEventsTable},
		{"metrics", createMetricsTable},
		{"project_measures", createProjectMeasuresTable},
		{"analysis_properties", createAnalysisPropertiesTable},
		{"metadata", createMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := seedMetrics(tx, metric.Core()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

func seedMetrics(tx *sql.Tx, metrics []*metric.Metric) error {
	for _, m := range metrics {
		_, err := sq.Insert("metrics").
			Columns("id", "name", "short_name", "val_type", "developer_scoped").
			Values(m.ID, m.Key, m.Name, m.Type.String(), m.DeveloperScoped).
			Options("OR IGNORE").
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to seed metric %s: %w", m.Key, err)
		}
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createComponentsTable = `
CREATE TABLE IF NOT EXISTS components (
    uuid TEXT PRIMARY KEY,                       -- Stable identity across analyses
    kee TEXT NOT NULL UNIQUE,                    -- Component key
    name TEXT NOT NULL DEFAULT '',
    qualifier TEXT NOT NULL,                     -- PROJECT, MODULE, DIRECTORY, FILE, VIEW, ...
    path TEXT,                                   -- Relative path for directories and files
    root_uuid TEXT NOT NULL                      -- Analysed project or view
)
`

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
    uuid TEXT PRIMARY KEY,                       -- Analysis uuid
    component_uuid TEXT NOT NULL,
    created_at INTEGER NOT NULL,                 -- Analysis date, epoch millis
    version TEXT,                                -- Project version declared by the scanner
    status TEXT NOT NULL DEFAULT 'U',            -- P (processed) or U (unprocessed)
    islast INTEGER NOT NULL DEFAULT 0,           -- Boolean: most recent processed analysis
    FOREIGN KEY (component_uuid) REFERENCES components(uuid) ON DELETE CASCADE
)
`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    uuid TEXT PRIMARY KEY,
    analysis_uuid TEXT NOT NULL,
    component_uuid TEXT NOT NULL,
    name TEXT NOT NULL,                          -- Version label for Version events
    category TEXT NOT NULL,
    event_date INTEGER NOT NULL,                 -- Epoch millis
    FOREIGN KEY (analysis_uuid) REFERENCES snapshots(uuid) ON DELETE CASCADE
)
`

const createMetricsTable = `
CREATE TABLE IF NOT EXISTS metrics (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,                   -- Metric key
    short_name TEXT NOT NULL,                    -- Display name
    val_type TEXT NOT NULL,                      -- INT, FLOAT, PERCENT, LEVEL, ...
    developer_scoped INTEGER NOT NULL DEFAULT 0  -- Boolean: computed per developer
)
`

const createProjectMeasuresTable = `
CREATE TABLE IF NOT EXISTS project_measures (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    component_uuid TEXT NOT NULL,
    analysis_uuid TEXT NOT NULL,
    metric_id INTEGER NOT NULL,
    value REAL,                                  -- Numeric value
    text_value TEXT,                             -- String and level values
    variation_value_1 REAL,                      -- Delta against the leak period
    alert_status TEXT,
    alert_text TEXT,
    rule_id INTEGER,
    characteristic_id INTEGER,
    developer TEXT,
    measure_data TEXT,
    FOREIGN KEY (analysis_uuid) REFERENCES snapshots(uuid) ON DELETE CASCADE,
    FOREIGN KEY (metric_id) REFERENCES metrics(id)
)
`

const createAnalysisPropertiesTable = `
CREATE TABLE IF NOT EXISTS analysis_properties (
    uuid TEXT PRIMARY KEY,
    analysis_uuid TEXT NOT NULL,
    kee TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (analysis_uuid) REFERENCES snapshots(uuid) ON DELETE CASCADE
)
`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_components_root ON components(root_uuid)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_component ON snapshots(component_uuid, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_component ON events(component_uuid, category)`,
		`CREATE INDEX IF NOT EXISTS idx_measures_component_analysis ON project_measures(component_uuid, analysis_uuid)`,
		`CREATE INDEX IF NOT EXISTS idx_measures_metric ON project_measures(metric_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_properties_analysis ON analysis_properties(analysis_uuid)`,
	}
}
