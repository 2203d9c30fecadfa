package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Registry:
// - Core catalogue builds a registry without duplicate keys or ids
// - ByKey and ByID return the same definition
// - Unknown keys and ids return ErrNotFound
// - Duplicate keys are rejected
// - All is ordered by id
// - IsNumeric excludes text, level and distribution types

func TestRegistry_Core(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Core())
	require.NoError(t, err)

	lines, err := r.ByKey(KeyLines)
	require.NoError(t, err)
	assert.Equal(t, TypeInt, lines.Type)

	byID, err := r.ByID(lines.ID)
	require.NoError(t, err)
	assert.Same(t, lines, byID)

	all := r.All()
	require.Len(t, all, len(Core()))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	t.Parallel()

	r := MustNewRegistry(Core())

	_, err := r.ByKey("unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ByID(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_DuplicateKey(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry([]*Metric{
		{ID: 1, Key: "a", Type: TypeInt},
		{ID: 2, Key: "a", Type: TypeInt},
	})
	assert.Error(t, err)

	_, err = NewRegistry([]*Metric{
		{ID: 1, Key: "a", Type: TypeInt},
		{ID: 1, Key: "b", Type: TypeInt},
	})
	assert.Error(t, err)
}

func TestType_IsNumeric(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{TypeInt, TypeLong, TypeFloat, TypePercent, TypeBool, TypeMillisec, TypeRating, TypeWorkDuration} {
		assert.True(t, typ.IsNumeric(), typ.String())
	}
	for _, typ := range []Type{TypeString, TypeData, TypeLevel, TypeDistribution} {
		assert.False(t, typ.IsNumeric(), typ.String())
	}

	parsed, err := ParseType("distrib")
	require.NoError(t, err)
	assert.Equal(t, TypeDistribution, parsed)
}
