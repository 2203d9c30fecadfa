package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ComponentStore:
// - SelectUUIDsByKeys returns uuids of known keys only
// - UpsertComponents keeps the uuid of an existing key and refreshes its name
// - SelectByKey returns nil for unknown keys

func TestComponentStore_Upsert(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	store := NewComponentStore(db)

	require.NoError(t, store.UpsertComponents([]*Component{
		{UUID: "P", Key: "proj", Name: "Project", Type: "PROJECT", RootUUID: "P"},
		{UUID: "F", Key: "proj:src/a.go", Name: "a.go", Type: "FILE", Path: "src/a.go", RootUUID: "P"},
	}))

	uuids, err := store.SelectUUIDsByKeys([]string{"proj", "proj:src/a.go", "proj:src/b.go"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"proj": "P", "proj:src/a.go": "F"}, uuids)

	require.NoError(t, store.UpsertComponents([]*Component{
		{UUID: "OTHER", Key: "proj", Name: "Renamed", Type: "PROJECT", RootUUID: "P"},
	}))

	c, err := store.SelectByKey("proj")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "P", c.UUID)
	assert.Equal(t, "Renamed", c.Name)
	assert.Empty(t, c.Path)

	file, err := store.SelectByKey("proj:src/a.go")
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "src/a.go", file.Path)

	missing, err := store.SelectByKey("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
