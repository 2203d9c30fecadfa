package measure

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType is the tag of a Measure.
type ValueType int

const (
	ValueNoValue ValueType = iota
	ValueInt
	ValueLong
	ValueDouble
	ValueBoolean
	ValueString
	ValueLevel
)

var valueTypeNames = [...]string{"NO_VALUE", "INT", "LONG", "DOUBLE", "BOOLEAN", "STRING", "LEVEL"}

func (t ValueType) String() string {
	if int(t) >= 0 && int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Level is the status carried by LEVEL measures and quality gate results.
type Level int

const (
	LevelOK Level = iota + 1
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelOK:
		return "OK"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts "OK", "WARN" or "ERROR" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "OK":
		return LevelOK, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// QualityGateStatus is the quality gate outcome attached to a measure.
type QualityGateStatus struct {
	Level Level
	Text  string
}

// Measure is an immutable value for one (component, metric, dimension) key.
// Exactly one value field is meaningful, selected by the ValueType tag.
type Measure struct {
	valueType   ValueType
	intValue    int
	longValue   int64
	doubleValue float64
	boolValue   bool
	stringValue string
	level       Level

	dimension Dimension
	data      *string
	qgStatus  *QualityGateStatus
	variation *float64
}

// ValueType returns the tag of the measure.
func (m Measure) ValueType() ValueType { return m.valueType }

// Dimension returns the rule, characteristic or developer the measure is scoped to.
func (m Measure) Dimension() Dimension { return m.dimension }

func (m Measure) IntValue() int {
	m.checkType(ValueInt)
	return m.intValue
}

func (m Measure) LongValue() int64 {
	m.checkType(ValueLong)
	return m.longValue
}

func (m Measure) DoubleValue() float64 {
	m.checkType(ValueDouble)
	return m.doubleValue
}

func (m Measure) BoolValue() bool {
	m.checkType(ValueBoolean)
	return m.boolValue
}

func (m Measure) StringValue() string {
	m.checkType(ValueString)
	return m.stringValue
}

func (m Measure) LevelValue() Level {
	m.checkType(ValueLevel)
	return m.level
}

func (m Measure) checkType(want ValueType) {
	if m.valueType != want {
		panic(fmt.Sprintf("measure: value can not be converted to %s because current value type is a %s", want, m.valueType))
	}
}

// NumericValue returns the value as a float64 for INT, LONG, DOUBLE and BOOLEAN
// measures (false=0, true=1).
func (m Measure) NumericValue() (float64, bool) {
	switch m.valueType {
	case ValueInt:
		return float64(m.intValue), true
	case ValueLong:
		return float64(m.longValue), true
	case ValueDouble:
		return m.doubleValue, true
	case ValueBoolean:
		if m.boolValue {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// FormattedValue renders the value the way it is displayed and persisted as text.
// NO_VALUE measures return "".
func (m Measure) FormattedValue() string {
	switch m.valueType {
	case ValueInt:
		return strconv.Itoa(m.intValue)
	case ValueLong:
		return strconv.FormatInt(m.longValue, 10)
	case ValueDouble:
		return strconv.FormatFloat(m.doubleValue, 'f', -1, 64)
	case ValueBoolean:
		return strconv.FormatBool(m.boolValue)
	case ValueString:
		return m.stringValue
	case ValueLevel:
		return m.level.String()
	}
	return ""
}

// Data returns the free-form data of the measure.
func (m Measure) Data() (string, bool) {
	if m.data == nil {
		return "", false
	}
	return *m.data, true
}

// Variation returns the delta against the leak period baseline.
func (m Measure) Variation() (float64, bool) {
	if m.variation == nil {
		return 0, false
	}
	return *m.variation, true
}

// QualityGateStatus returns the status set by quality gate evaluation.
func (m Measure) QualityGateStatus() (QualityGateStatus, bool) {
	if m.qgStatus == nil {
		return QualityGateStatus{}, false
	}
	return *m.qgStatus, true
}

func (m Measure) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Measure{%s", m.valueType)
	if m.valueType != ValueNoValue {
		fmt.Fprintf(&b, " value=%s", m.FormattedValue())
	}
	if !m.dimension.IsZero() {
		fmt.Fprintf(&b, " %s", m.dimension)
	}
	if m.variation != nil {
		fmt.Fprintf(&b, " variation=%v", *m.variation)
	}
	if m.qgStatus != nil {
		fmt.Fprintf(&b, " qg=%s", m.qgStatus.Level)
	}
	b.WriteString("}")
	return b.String()
}

// roundScale1 rounds half up to one decimal place.
func roundScale1(v float64) float64 {
	if math.IsNaN(v) {
		panic("measure: NaN is not allowed as a measure value")
	}
	if math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*10) / 10
}
