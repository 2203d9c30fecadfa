package qualitygate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/report"
)

// Test Plan for the gate and the small changeset rule:
// - A new coverage ERROR with 19 new lines is downgraded to OK, value kept
// - With 20 new lines it stays ERROR
// - A new_bugs ERROR with 19 new lines is never downgraded
// - Without a new_lines variation nothing is downgraded
// - Apply records alert_status with the worst level and text, quality_gate_details JSON,
//   and the status of each condition's measure
// - Apply without conditions records nothing

type gateFixture struct {
	root     *component.Component
	metrics  metric.Repository
	reader   *report.Memory
	measures measure.Repository
}

func newGateFixture(t *testing.T, newLines *int, coverage float64, newBugs int) *gateFixture {
	t.Helper()
	root := component.New(component.TypeProject, 1).Key("P").Build()
	reader := report.New(report.Metadata{ProjectKey: "P", RootComponentRef: 1})

	bugs := float64(newBugs)
	measures := []report.Measure{
		{MetricKey: metric.KeyNewCoverage, DoubleValue: &coverage},
		{MetricKey: metric.KeyNewBugs, IntValue: &newBugs, Variation: &bugs},
	}
	if newLines != nil {
		v := float64(*newLines)
		measures = append(measures, report.Measure{MetricKey: metric.KeyNewLines, IntValue: newLines, Variation: &v})
	}
	reader.PutMeasures(1, measures...)

	metrics := metric.MustNewRegistry(metric.Core())
	repo, err := measure.NewRepository(measure.Options{Reader: reader, Metrics: metrics})
	require.NoError(t, err)
	return &gateFixture{root: root, metrics: metrics, reader: reader, measures: repo}
}

func (f *gateFixture) metric(t *testing.T, key string) *metric.Metric {
	t.Helper()
	m, err := f.metrics.ByKey(key)
	require.NoError(t, err)
	return m
}

func (f *gateFixture) conditions(t *testing.T) []Condition {
	t.Helper()
	coverage, err := NewCondition(f.metric(t, metric.KeyNewCoverage), OpLessThan, "80", "", false)
	require.NoError(t, err)
	bugs, err := NewCondition(f.metric(t, metric.KeyNewBugs), OpGreaterThan, "0", "", true)
	require.NoError(t, err)
	return []Condition{coverage, bugs}
}

func (f *gateFixture) evaluator(t *testing.T) *Evaluator {
	t.Helper()
	return NewEvaluator(f.conditions(t), NewSmallChangesetFilter(nil, 0), f.measures, f.metrics, nil)
}

func newLines(n int) *int { return &n }

func TestSmallChangeset_Downgrades(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t, newLines(19), 50, 0)

	status, err := f.evaluator(t).Evaluate(f.root)
	require.NoError(t, err)

	require.Len(t, status.Results, 2)
	coverage := status.Results[0]
	assert.Equal(t, measure.LevelOK, coverage.Level)
	require.NotNil(t, coverage.Value)
	assert.Equal(t, "50", *coverage.Value)
	assert.True(t, status.IgnoredConditions)
	assert.Equal(t, measure.LevelOK, status.Level)
}

func TestSmallChangeset_ThresholdIsExclusive(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t, newLines(20), 50, 0)

	status, err := f.evaluator(t).Evaluate(f.root)
	require.NoError(t, err)

	assert.Equal(t, measure.LevelError, status.Results[0].Level)
	assert.False(t, status.IgnoredConditions)
	assert.Equal(t, measure.LevelError, status.Level)
}

func TestSmallChangeset_NewBugsNeverDowngraded(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t, newLines(19), 90, 3)

	status, err := f.evaluator(t).Evaluate(f.root)
	require.NoError(t, err)

	assert.Equal(t, measure.LevelOK, status.Results[0].Level)
	bugs := status.Results[1]
	assert.Equal(t, measure.LevelError, bugs.Level)
	assert.Equal(t, "3", *bugs.Value)
	assert.False(t, status.IgnoredConditions)
	assert.Equal(t, measure.LevelError, status.Level)
}

func TestSmallChangeset_NoNewLines(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t, nil, 50, 0)

	status, err := f.evaluator(t).Evaluate(f.root)
	require.NoError(t, err)
	assert.Equal(t, measure.LevelError, status.Results[0].Level)
}

func TestSmallChangesetFilter_CustomMetrics(t *testing.T) {
	t.Parallel()

	f := NewSmallChangesetFilter([]string{metric.KeyNewBugs}, 5)
	assert.True(t, f.Applies(metric.KeyNewBugs))
	assert.False(t, f.Applies(metric.KeyNewCoverage))

	defaults := NewSmallChangesetFilter(nil, 0)
	for _, k := range metric.NewCoverageKeys() {
		assert.True(t, defaults.Applies(k), k)
	}
	assert.False(t, defaults.Applies(metric.KeyNewBugs))
}

func TestEvaluator_Apply(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t, newLines(50), 50, 2)

	status, err := f.evaluator(t).Apply(f.root)
	require.NoError(t, err)
	assert.Equal(t, measure.LevelError, status.Level)

	alert, ok := f.measures.GetRawMeasure(f.root, f.metric(t, metric.KeyAlertStatus))
	require.True(t, ok)
	assert.Equal(t, measure.LevelError, alert.LevelValue())
	qg, ok := alert.QualityGateStatus()
	require.True(t, ok)
	assert.Equal(t, "Coverage on New Code < 80, New Bugs since leak period > 0", qg.Text)

	details, ok := f.measures.GetRawMeasure(f.root, f.metric(t, metric.KeyQualityGateDetails))
	require.True(t, ok)
	var decoded struct {
		Level      string `json:"level"`
		Conditions []struct {
			Metric string `json:"metric"`
			Op     string `json:"op"`
			Error  string `json:"error"`
			Actual string `json:"actual"`
			Level  string `json:"level"`
			Period *int   `json:"period"`
		} `json:"conditions"`
		IgnoredConditions bool `json:"ignoredConditions"`
	}
	require.NoError(t, json.Unmarshal([]byte(details.StringValue()), &decoded))
	assert.Equal(t, "ERROR", decoded.Level)
	require.Len(t, decoded.Conditions, 2)
	assert.Equal(t, "new_coverage", decoded.Conditions[0].Metric)
	assert.Equal(t, "LT", decoded.Conditions[0].Op)
	assert.Equal(t, "50", decoded.Conditions[0].Actual)
	assert.Nil(t, decoded.Conditions[0].Period)
	assert.Equal(t, "new_bugs", decoded.Conditions[1].Metric)
	require.NotNil(t, decoded.Conditions[1].Period)
	assert.Equal(t, 1, *decoded.Conditions[1].Period)
	assert.False(t, decoded.IgnoredConditions)

	coverage, ok := f.measures.GetRawMeasure(f.root, f.metric(t, metric.KeyNewCoverage))
	require.True(t, ok)
	coverageStatus, ok := coverage.QualityGateStatus()
	require.True(t, ok)
	assert.Equal(t, measure.LevelError, coverageStatus.Level)
	assert.Equal(t, 50.0, coverage.DoubleValue())
}

func TestEvaluator_ApplyWithoutConditions(t *testing.T) {
	t.Parallel()
	f := newGateFixture(t, newLines(50), 50, 2)

	status, err := NewEvaluator(nil, nil, f.measures, f.metrics, nil).Apply(f.root)
	require.NoError(t, err)
	assert.Equal(t, measure.LevelOK, status.Level)

	_, ok := f.measures.GetRawMeasure(f.root, f.metric(t, metric.KeyAlertStatus))
	assert.False(t, ok)
}
