package storage

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// insertTestProject persists a project component and returns its uuid.
func insertTestProject(t *testing.T, db *sql.DB, uuid, key string) string {
	t.Helper()
	require.NoError(t, NewComponentStore(db).UpsertComponents([]*Component{
		{UUID: uuid, Key: key, Name: key, Type: "PROJECT", RootUUID: uuid},
	}))
	return uuid
}

// insertTestSnapshot persists an analysis of the component.
func insertTestSnapshot(t *testing.T, db *sql.DB, snap *Snapshot) {
	t.Helper()
	require.NoError(t, NewSnapshotStore(db).InsertSnapshot(snap))
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }
