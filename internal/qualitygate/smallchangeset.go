package qualitygate

import (
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
)

// DefaultSmallChangesetLines is the number of new lines below which coverage
// conditions are not enforced.
const DefaultSmallChangesetLines = 20

// SmallChangesetFilter relaxes conditions on new code coverage when too few
// lines changed for coverage to be meaningful.
type SmallChangesetFilter struct {
	metrics   map[string]struct{}
	threshold float64
}

// NewSmallChangesetFilter creates a filter for the given metric keys. A nil
// key list uses metric.NewCoverageKeys; a non-positive threshold uses
// DefaultSmallChangesetLines.
func NewSmallChangesetFilter(metricKeys []string, threshold int) *SmallChangesetFilter {
	if metricKeys == nil {
		metricKeys = metric.NewCoverageKeys()
	}
	if threshold <= 0 {
		threshold = DefaultSmallChangesetLines
	}
	f := &SmallChangesetFilter{
		metrics:   make(map[string]struct{}, len(metricKeys)),
		threshold: float64(threshold),
	}
	for _, k := range metricKeys {
		f.metrics[k] = struct{}{}
	}
	return f
}

// Applies reports whether conditions on the metric can be relaxed.
func (f *SmallChangesetFilter) Applies(metricKey string) bool {
	_, ok := f.metrics[metricKey]
	return ok
}

// Filter downgrades ERROR and WARN results of filtered metrics to OK when the
// new_lines variation is known and below the threshold. Values are kept. The
// second return reports whether any result was downgraded.
func (f *SmallChangesetFilter) Filter(results []Result, newLines *measure.Measure) ([]Result, bool) {
	if newLines == nil {
		return results, false
	}
	changed, ok := newLines.Variation()
	if !ok || changed >= f.threshold {
		return results, false
	}

	out := make([]Result, len(results))
	ignored := false
	for i, r := range results {
		if r.Level != measure.LevelOK && f.Applies(r.Condition.Metric.Key) {
			r.Level = measure.LevelOK
			ignored = true
		}
		out[i] = r
	}
	return out, ignored
}
