package qualitygate

import (
	"strconv"

	"github.com/mvp-joe/project-gauge/internal/measure"
)

// Result is the outcome of one condition. Value is nil when the measure, or
// its variation for leak conditions, is absent.
type Result struct {
	Condition Condition
	Level     measure.Level
	Value     *string
}

// Evaluate checks a condition against a measure. A nil measure is treated as
// absent and evaluates to OK.
func Evaluate(c Condition, m *measure.Measure) Result {
	value, formatted, ok := c.actual(m)
	if !ok {
		return Result{Condition: c, Level: measure.LevelOK}
	}

	level := measure.LevelOK
	switch {
	case c.breaches(value, c.ErrorThreshold):
		level = measure.LevelError
	case c.WarningThreshold != "" && c.breaches(value, c.WarningThreshold):
		level = measure.LevelWarn
	}
	return Result{Condition: c, Level: level, Value: &formatted}
}

func (c Condition) breaches(value float64, threshold string) bool {
	t, err := parseThreshold(c.kind(), threshold)
	if err != nil {
		// NewCondition validated the thresholds.
		return false
	}
	switch {
	case value < t:
		return c.Operator.compare(-1)
	case value > t:
		return c.Operator.compare(1)
	}
	return c.Operator.compare(0)
}

// actual returns the compared value and its display form.
func (c Condition) actual(m *measure.Measure) (float64, string, bool) {
	if m == nil {
		return 0, "", false
	}

	if c.OnLeak {
		v, ok := m.Variation()
		if !ok {
			return 0, "", false
		}
		if c.kind() == kindInteger {
			i := int64(v)
			return float64(i), strconv.FormatInt(i, 10), true
		}
		return v, strconv.FormatFloat(v, 'f', -1, 64), true
	}

	if c.kind() == kindLevel {
		if m.ValueType() != measure.ValueLevel {
			return 0, "", false
		}
		l := m.LevelValue()
		return float64(l), l.String(), true
	}

	v, ok := m.NumericValue()
	if !ok {
		return 0, "", false
	}
	return v, m.FormattedValue(), true
}
