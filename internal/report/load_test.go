package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for report loading:
// - A complete YAML report is decoded into components, measures, duplications and properties
// - Unknown fields are rejected
// - Undeclared root, child, duplication and measure refs are rejected
// - Duplicate refs are rejected
// - Property finds context properties by key

func TestLoad_Sample(t *testing.T) {
	t.Parallel()

	r, err := Load("testdata/sample.yml")
	require.NoError(t, err)

	meta := r.Metadata()
	assert.Equal(t, "org.sample:project", meta.ProjectKey)
	assert.Equal(t, 1, meta.RootComponentRef)
	assert.True(t, meta.AnalysisDate.Equal(time.Date(2008, 11, 30, 12, 0, 0, 0, time.UTC)))

	root, ok := r.Component(1)
	require.True(t, ok)
	assert.Equal(t, "PROJECT", root.Type)
	assert.Equal(t, "1.1", root.Version)
	assert.Equal(t, []int{2}, root.ChildRefs)
	assert.Equal(t, []int{1, 2, 3, 4}, r.ComponentRefs())

	measures := r.Measures(4)
	require.Len(t, measures, 2)
	assert.Equal(t, "coverage", measures[1].MetricKey)
	require.NotNil(t, measures[1].DoubleValue)
	assert.Equal(t, 81.26, *measures[1].DoubleValue)

	dups := r.Duplications(3)
	require.Len(t, dups, 1)
	require.Len(t, dups[0].Duplicates, 3)
	assert.Nil(t, dups[0].Duplicates[0].OtherFileRef)
	require.NotNil(t, dups[0].Duplicates[1].OtherFileRef)
	assert.Equal(t, 4, *dups[0].Duplicates[1].OtherFileRef)
	assert.Equal(t, "other:src/c.go", dups[0].Duplicates[2].OtherFileKey)
	assert.Empty(t, r.Duplications(4))

	period, ok := Property(r, "sonar.leak.period")
	require.True(t, ok)
	assert.Equal(t, "previous_version", period)
	_, ok = Property(r, "missing")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing analysis date",
			doc: `
metadata: {root_component_ref: 1, project_key: P}
components: [{ref: 1, type: PROJECT, key: P}]`,
		},
		{
			name: "undeclared root",
			doc: `
metadata: {root_component_ref: 9, analysis_date: 2008-11-30T12:00:00Z}
components: [{ref: 1, type: PROJECT}]`,
		},
		{
			name: "undeclared child",
			doc: `
metadata: {root_component_ref: 1, analysis_date: 2008-11-30T12:00:00Z}
components: [{ref: 1, type: PROJECT, children: [2]}]`,
		},
		{
			name: "duplicate ref",
			doc: `
metadata: {root_component_ref: 1, analysis_date: 2008-11-30T12:00:00Z}
components: [{ref: 1, type: PROJECT}, {ref: 1, type: FILE}]`,
		},
		{
			name: "duplications of undeclared file",
			doc: `
metadata: {root_component_ref: 1, analysis_date: 2008-11-30T12:00:00Z}
components: [{ref: 1, type: PROJECT}]
duplications:
  5: []`,
		},
		{
			name: "measures of undeclared component",
			doc: `
metadata: {root_component_ref: 1, analysis_date: 2008-11-30T12:00:00Z}
components: [{ref: 1, type: PROJECT}]
measures:
  5: []`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidReport)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(`
metadata: {root_component_ref: 1, analysis_date: 2008-11-30T12:00:00Z}
components: [{ref: 1, type: PROJECT, colour: blue}]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidReport)
}

func TestMemory_Builder(t *testing.T) {
	t.Parallel()

	ref := 2
	r := New(Metadata{ProjectKey: "P", RootComponentRef: 1}).
		PutComponent(Component{Ref: 1, Type: "PROJECT", Key: "P", ChildRefs: []int{2}}).
		PutComponent(Component{Ref: 2, Type: "FILE", Path: "a.go"}).
		PutDuplications(2, Duplication{
			OriginPosition: TextRange{StartLine: 1, EndLine: 2},
			Duplicates:     []Duplicate{{OtherFileRef: &ref, Range: TextRange{StartLine: 5, EndLine: 6}}},
		}).
		PutContextProperties(ContextProperty{Key: "k", Value: "v"})

	var reader Reader = r
	assert.Len(t, reader.Duplications(2), 1)
	assert.Empty(t, reader.Measures(2))
	assert.Len(t, reader.ContextProperties(), 1)
}
