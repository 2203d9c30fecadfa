package metric

import (
	"fmt"
	"strings"
)

// Type is the declared value type of a metric.
type Type int

const (
	TypeInt Type = iota + 1
	TypeLong
	TypeFloat
	TypePercent
	TypeBool
	TypeString
	TypeData
	TypeLevel
	TypeDistribution
	TypeMillisec
	TypeRating
	TypeWorkDuration
)

var typeNames = map[Type]string{
	TypeInt:          "INT",
	TypeLong:         "LONG",
	TypeFloat:        "FLOAT",
	TypePercent:      "PERCENT",
	TypeBool:         "BOOL",
	TypeString:       "STRING",
	TypeData:         "DATA",
	TypeLevel:        "LEVEL",
	TypeDistribution: "DISTRIB",
	TypeMillisec:     "MILLISEC",
	TypeRating:       "RATING",
	TypeWorkDuration: "WORK_DUR",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a stored type name back to a Type.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown metric type %q", s)
}

// IsNumeric reports whether measures of this type take part in variation arithmetic.
// Distribution, level and text types never do.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeInt, TypeRating, TypeLong, TypeMillisec, TypeWorkDuration, TypeFloat, TypePercent, TypeBool:
		return true
	}
	return false
}

// Metric is the immutable definition of a measured quantity.
type Metric struct {
	ID   int
	Key  string
	Name string
	Type Type
	// DeveloperScoped metrics are computed per developer and are excluded from
	// variation computation.
	DeveloperScoped bool
}

func (m *Metric) String() string {
	return fmt.Sprintf("%s(%s)", m.Key, m.Type)
}
