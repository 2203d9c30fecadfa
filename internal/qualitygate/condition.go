// Package qualitygate evaluates quality gate conditions against the measures
// of an analysis.
package qualitygate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
)

var (
	// ErrUnknownOperator is returned for an operator that is not EQ, NE, GT or LT.
	ErrUnknownOperator = errors.New("unknown condition operator")
	// ErrInvalidCondition is returned for a condition that can never be evaluated.
	ErrInvalidCondition = errors.New("invalid condition")
)

// Operator compares a measure value to a threshold.
type Operator string

const (
	OpEquals      Operator = "EQ"
	OpNotEquals   Operator = "NE"
	OpGreaterThan Operator = "GT"
	OpLessThan    Operator = "LT"
)

// ParseOperator accepts the short form (GT) and the long form (GREATER_THAN).
func ParseOperator(s string) (Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EQ", "EQUALS":
		return OpEquals, nil
	case "NE", "NOT_EQUALS":
		return OpNotEquals, nil
	case "GT", "GREATER_THAN":
		return OpGreaterThan, nil
	case "LT", "LESS_THAN":
		return OpLessThan, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

func (o Operator) compare(cmp int) bool {
	switch o {
	case OpEquals:
		return cmp == 0
	case OpNotEquals:
		return cmp != 0
	case OpGreaterThan:
		return cmp > 0
	case OpLessThan:
		return cmp < 0
	}
	return false
}

// Condition is one rule of a quality gate. The measure, or its variation when
// OnLeak is set, raises an error when it compares true to ErrorThreshold and
// a warning when it compares true to WarningThreshold.
type Condition struct {
	Metric           *metric.Metric
	Operator         Operator
	ErrorThreshold   string
	WarningThreshold string
	OnLeak           bool
}

// NewCondition validates that the metric supports conditions and that the
// thresholds parse for its type. An empty warning threshold is ignored.
func NewCondition(m *metric.Metric, op Operator, errorThreshold, warningThreshold string, onLeak bool) (Condition, error) {
	if m == nil {
		return Condition{}, fmt.Errorf("%w: metric is required", ErrInvalidCondition)
	}
	if _, err := ParseOperator(string(op)); err != nil {
		return Condition{}, err
	}
	c := Condition{
		Metric:           m,
		Operator:         op,
		ErrorThreshold:   strings.TrimSpace(errorThreshold),
		WarningThreshold: strings.TrimSpace(warningThreshold),
		OnLeak:           onLeak,
	}

	kind := c.kind()
	switch kind {
	case kindUnsupported:
		return Condition{}, fmt.Errorf("%w: conditions on metric type %s are not supported", ErrInvalidCondition, m.Type)
	case kindLevel:
		if onLeak {
			return Condition{}, fmt.Errorf("%w: level metric %s has no variation", ErrInvalidCondition, m.Key)
		}
		if op != OpEquals && op != OpNotEquals {
			return Condition{}, fmt.Errorf("%w: level metric %s only supports EQ and NE", ErrInvalidCondition, m.Key)
		}
	}

	if c.ErrorThreshold == "" {
		return Condition{}, fmt.Errorf("%w: error threshold of %s is required", ErrInvalidCondition, m.Key)
	}
	for _, threshold := range []string{c.ErrorThreshold, c.WarningThreshold} {
		if threshold == "" {
			continue
		}
		if _, err := parseThreshold(kind, threshold); err != nil {
			return Condition{}, fmt.Errorf("%w: unable to parse value %q to compare against %s", ErrInvalidCondition, threshold, m.Key)
		}
	}
	return c, nil
}

func (c Condition) String() string {
	leak := ""
	if c.OnLeak {
		leak = " on leak"
	}
	return fmt.Sprintf("%s %s %s%s", c.Metric.Key, c.Operator, c.ErrorThreshold, leak)
}

type valueKind int

const (
	kindUnsupported valueKind = iota
	kindInteger
	kindDecimal
	kindBoolean
	kindLevel
)

func (c Condition) kind() valueKind {
	switch measure.ValueTypeOf(c.Metric.Type) {
	case measure.ValueInt, measure.ValueLong:
		return kindInteger
	case measure.ValueDouble:
		return kindDecimal
	case measure.ValueBoolean:
		return kindBoolean
	case measure.ValueLevel:
		return kindLevel
	}
	return kindUnsupported
}

// parseThreshold returns the numeric form of a threshold. Integer thresholds
// are truncated; levels map to their ordinal.
func parseThreshold(kind valueKind, s string) (float64, error) {
	switch kind {
	case kindLevel:
		l, err := measure.ParseLevel(s)
		return float64(l), err
	case kindBoolean:
		switch s {
		case "0", "false":
			return 0, nil
		case "1", "true":
			return 1, nil
		}
		return 0, fmt.Errorf("not a boolean: %q", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if kind == kindInteger {
		v = float64(int64(v))
	}
	return v, nil
}
