package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-gauge/internal/metric"
)

// Test Plan for Schema:
// - CreateSchema creates all tables and records the schema version
// - CreateSchema is idempotent
// - The core metric catalogue is seeded and can be loaded back
// - GetSchemaVersion returns "0" for an empty database

func TestCreateSchema(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)

	for _, table := range []string{"components", "snapshots", "events", "metrics", "project_measures", "analysis_properties", "metadata"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	// Second run must not fail nor duplicate seeded rows
	require.NoError(t, CreateSchema(db))

	metrics, err := LoadMetrics(db)
	require.NoError(t, err)
	assert.Len(t, metrics, len(metric.Core()))
}

func TestLoadMetrics_MatchesCore(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)

	metrics, err := LoadMetrics(db)
	require.NoError(t, err)

	registry, err := metric.NewRegistry(metrics)
	require.NoError(t, err)

	for _, want := range metric.Core() {
		got, err := registry.ByKey(want.Key)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Type, got.Type)
	}
}

func TestGetSchemaVersion_EmptyDatabase(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	_, err := db.Exec("DROP TABLE metadata")
	require.NoError(t, err)

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, "0", version)
}
