package measure

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/report"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

// Test Plan for Repository:
// - Add twice for the same key fails with ErrMeasureExists and keeps the first value
// - Add accepts the same metric under different dimensions
// - Add rejects a value type contradicting the metric, except NO_VALUE
// - Report measures are returned when nothing was added; added measures win
// - Report measures of unknown metrics are ignored
// - Update replaces added and report measures, fails for unknown keys
// - GetRawMeasuresByMetric merges report and added measures
// - GetBaseMeasure reads the analysis flagged last only
// - GetBaseMeasureAt reads the requested analysis
// - Nil component or metric panics

const (
	projectRef  = 1
	fileRef     = 2
	projectUUID = "PROJECT_UUID"
	fileUUID    = "FILE_UUID"
)

type repoFixture struct {
	project *component.Component
	file    *component.Component
	metrics metric.Repository
	reader  *report.Memory
}

func newRepoFixture() *repoFixture {
	file := component.New(component.TypeFile, fileRef).UUID(fileUUID).Key("P:a.go").Build()
	project := component.New(component.TypeProject, projectRef).UUID(projectUUID).Key("P").Children(file).Build()
	return &repoFixture{
		project: project,
		file:    file,
		metrics: metric.MustNewRegistry(metric.Core()),
		reader:  report.New(report.Metadata{ProjectKey: "P", RootComponentRef: projectRef}),
	}
}

func (f *repoFixture) metric(t *testing.T, key string) *metric.Metric {
	t.Helper()
	m, err := f.metrics.ByKey(key)
	require.NoError(t, err)
	return m
}

func (f *repoFixture) repository(t *testing.T, store BaseMeasureStore) Repository {
	t.Helper()
	repo, err := NewRepository(Options{Reader: f.reader, Metrics: f.metrics, Store: store})
	require.NoError(t, err)
	return repo
}

func intPtr(i int) *int { return &i }

func TestRepository_AddTwiceFails(t *testing.T) {
	t.Parallel()

	f := newRepoFixture()
	repo := f.repository(t, nil)
	ncloc := f.metric(t, metric.KeyNcloc)

	require.NoError(t, repo.Add(f.file, ncloc, NewBuilder().CreateInt(10)))
	err := repo.Add(f.file, ncloc, NewBuilder().CreateInt(20))
	assert.ErrorIs(t, err, ErrMeasureExists)

	got, ok := repo.GetRawMeasure(f.file, ncloc)
	require.True(t, ok)
	assert.Equal(t, 10, got.IntValue())

	// Same metric on another component or another dimension is a different key
	require.NoError(t, repo.Add(f.project, ncloc, NewBuilder().CreateInt(20)))
	require.NoError(t, repo.Add(f.file, ncloc, NewBuilder().ForRule(1).CreateInt(3)))
	require.NoError(t, repo.Add(f.file, ncloc, NewBuilder().ForCharacteristic(1).CreateInt(4)))

	perRule, ok := repo.GetRawMeasureFor(f.file, ncloc, RuleDimension(1))
	require.True(t, ok)
	assert.Equal(t, 3, perRule.IntValue())
	assert.Len(t, repo.GetRawMeasures(f.file, ncloc), 3)
}

func TestRepository_ValueTypeMismatch(t *testing.T) {
	t.Parallel()

	f := newRepoFixture()
	repo := f.repository(t, nil)

	err := repo.Add(f.file, f.metric(t, metric.KeyNcloc), NewBuilder().CreateString("x"))
	assert.ErrorIs(t, err, ErrValueTypeMismatch)

	assert.NoError(t, repo.Add(f.file, f.metric(t, metric.KeyCoverage), NewBuilder().CreateNoValue()))
	assert.NoError(t, repo.Add(f.file, f.metric(t, metric.KeyDuplicationsData), NewBuilder().CreateString("<duplications/>")))
}

func TestRepository_ReportFallback(t *testing.T) {
	t.Parallel()

	f := newRepoFixture()
	f.reader.PutMeasures(fileRef,
		report.Measure{MetricKey: metric.KeyLines, IntValue: intPtr(50)},
		report.Measure{MetricKey: metric.KeyNcloc, IntValue: intPtr(40)},
		report.Measure{MetricKey: "not_a_metric", IntValue: intPtr(1)},
	)
	repo := f.repository(t, nil)
	lines := f.metric(t, metric.KeyLines)
	ncloc := f.metric(t, metric.KeyNcloc)

	fromReport, ok := repo.GetRawMeasure(f.file, lines)
	require.True(t, ok)
	assert.Equal(t, 50, fromReport.IntValue())

	// An added measure shadows the report value
	require.NoError(t, repo.Add(f.file, ncloc, NewBuilder().CreateInt(41)))
	added, ok := repo.GetRawMeasure(f.file, ncloc)
	require.True(t, ok)
	assert.Equal(t, 41, added.IntValue())

	_, ok = repo.GetRawMeasure(f.project, lines)
	assert.False(t, ok)

	byMetric := repo.GetRawMeasuresByMetric(f.file)
	assert.Len(t, byMetric, 2)
	require.Len(t, byMetric[metric.KeyNcloc], 1)
	assert.Equal(t, 41, byMetric[metric.KeyNcloc][0].IntValue())
	_, unknown := byMetric["not_a_metric"]
	assert.False(t, unknown)
}

func TestRepository_Update(t *testing.T) {
	t.Parallel()

	f := newRepoFixture()
	f.reader.PutMeasures(fileRef, report.Measure{MetricKey: metric.KeyLines, IntValue: intPtr(50)})
	repo := f.repository(t, nil)
	lines := f.metric(t, metric.KeyLines)
	ncloc := f.metric(t, metric.KeyNcloc)

	// Update of a report measure
	raw, ok := repo.GetRawMeasure(f.file, lines)
	require.True(t, ok)
	require.NoError(t, repo.Update(f.file, lines, UpdateFrom(raw).Variation(5).Create()))
	updated, ok := repo.GetRawMeasure(f.file, lines)
	require.True(t, ok)
	variation, ok := updated.Variation()
	require.True(t, ok)
	assert.Equal(t, 5.0, variation)

	// Update of an added measure
	require.NoError(t, repo.Add(f.project, ncloc, NewBuilder().CreateInt(1)))
	require.NoError(t, repo.Update(f.project, ncloc, NewBuilder().CreateInt(2)))
	got, _ := repo.GetRawMeasure(f.project, ncloc)
	assert.Equal(t, 2, got.IntValue())

	err := repo.Update(f.file, ncloc, NewBuilder().CreateInt(2))
	assert.ErrorIs(t, err, ErrMeasureNotFound)
	_, ok = repo.GetRawMeasure(f.file, ncloc)
	assert.False(t, ok)
}

func TestRepository_NilArgumentsPanic(t *testing.T) {
	t.Parallel()

	f := newRepoFixture()
	repo := f.repository(t, nil)
	lines := f.metric(t, metric.KeyLines)

	assert.Panics(t, func() { _ = repo.Add(nil, lines, NewBuilder().CreateInt(1)) })
	assert.Panics(t, func() { _ = repo.Add(f.file, nil, NewBuilder().CreateInt(1)) })
	assert.Panics(t, func() { repo.GetRawMeasure(nil, lines) })
	assert.Panics(t, func() { repo.GetRawMeasure(f.file, nil) })
	assert.Panics(t, func() { _, _, _ = repo.GetBaseMeasure(nil, lines) })
	assert.Panics(t, func() { _, _, _ = repo.GetBaseMeasure(f.file, nil) })
	assert.Panics(t, func() { repo.GetRawMeasuresByMetric(nil) })
}

// seedHistory stores two analyses of the project: OLD and LAST (flagged last).
func seedHistory(t *testing.T, db *sql.DB) {
	t.Helper()

	require.NoError(t, storage.NewComponentStore(db).UpsertComponents([]*storage.Component{
		{UUID: projectUUID, Key: "P", Type: "PROJECT", RootUUID: projectUUID},
		{UUID: fileUUID, Key: "P:a.go", Type: "FILE", Path: "a.go", RootUUID: projectUUID},
	}))
	snapshots := storage.NewSnapshotStore(db)
	require.NoError(t, snapshots.InsertSnapshot(&storage.Snapshot{UUID: "OLD", ComponentUUID: projectUUID, CreatedAt: 1000, Status: storage.SnapshotStatusProcessed}))
	require.NoError(t, snapshots.InsertSnapshot(&storage.Snapshot{UUID: "LAST", ComponentUUID: projectUUID, CreatedAt: 2000, Status: storage.SnapshotStatusProcessed, IsLast: true}))

	v := func(f float64) *float64 { return &f }
	s := func(s string) *string { return &s }
	require.NoError(t, storage.NewMeasureStore(db).InsertMeasures([]*storage.MeasureRecord{
		{ComponentUUID: fileUUID, AnalysisUUID: "OLD", MetricID: 1, Value: v(30)},
		{ComponentUUID: fileUUID, AnalysisUUID: "LAST", MetricID: 1, Value: v(45), Data: s("d")},
		{ComponentUUID: projectUUID, AnalysisUUID: "LAST", MetricID: 33, TextValue: s("ERROR"), AlertStatus: s("ERROR"), AlertText: s("Coverage < 80")},
	}))
}

func TestRepository_GetBaseMeasure(t *testing.T) {
	t.Parallel()

	db := storage.NewTestDB(t)
	seedHistory(t, db)

	f := newRepoFixture()
	repo := f.repository(t, storage.NewMeasureStore(db))
	lines := f.metric(t, metric.KeyLines)

	base, ok, err := repo.GetBaseMeasure(f.file, lines)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 45, base.IntValue())
	data, _ := base.Data()
	assert.Equal(t, "d", data)

	status, ok, err := repo.GetBaseMeasure(f.project, f.metric(t, metric.KeyAlertStatus))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, LevelError, status.LevelValue())
	qg, ok := status.QualityGateStatus()
	require.True(t, ok)
	assert.Equal(t, "Coverage < 80", qg.Text)

	_, ok, err = repo.GetBaseMeasure(f.project, lines)
	require.NoError(t, err)
	assert.False(t, ok)

	old, ok, err := repo.GetBaseMeasureAt(f.file, lines, "OLD", NoDimension)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30, old.IntValue())

	// Cached lookups return the same result
	again, ok, err := repo.GetBaseMeasure(f.file, lines)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, base, again)
}

func TestRepository_GetBaseMeasure_NoHistory(t *testing.T) {
	t.Parallel()

	f := newRepoFixture()
	repo := f.repository(t, nil)

	_, ok, err := repo.GetBaseMeasure(f.file, f.metric(t, metric.KeyLines))
	require.NoError(t, err)
	assert.False(t, ok)
}
