package measure

import "fmt"

// Builder creates Measures. The optional fields are set first, then one of
// the Create methods fixes the value and tag.
type Builder struct {
	dimension Dimension
	data      *string
	qgStatus  *QualityGateStatus
	variation *float64
}

// NewBuilder returns a Builder for a measure without dimension.
func NewBuilder() *Builder {
	return &Builder{dimension: NoDimension}
}

// ForRule scopes the measure to a rule. It panics if a characteristic or developer is already set.
func (b *Builder) ForRule(ruleID int) *Builder {
	b.checkNoDimension("rule")
	b.dimension = RuleDimension(ruleID)
	return b
}

// ForCharacteristic scopes the measure to a characteristic. It panics if a rule or developer is already set.
func (b *Builder) ForCharacteristic(characteristicID int) *Builder {
	b.checkNoDimension("characteristic")
	b.dimension = CharacteristicDimension(characteristicID)
	return b
}

func (b *Builder) ForDeveloper(developer string) *Builder {
	b.checkNoDimension("developer")
	b.dimension = DeveloperDimension(developer)
	return b
}

// ForDimension copies an existing dimension.
func (b *Builder) ForDimension(d Dimension) *Builder {
	b.dimension = d
	return b
}

func (b *Builder) checkNoDimension(what string) {
	if !b.dimension.IsZero() {
		panic(fmt.Sprintf("measure: can not set %s, measure is already scoped to %s", what, b.dimension))
	}
}

// Variation sets the variation, rounded to one decimal place.
func (b *Builder) Variation(v float64) *Builder {
	r := roundScale1(v)
	b.variation = &r
	return b
}

func (b *Builder) QualityGateStatus(s QualityGateStatus) *Builder {
	b.qgStatus = &s
	return b
}

func (b *Builder) Data(data string) *Builder {
	b.data = &data
	return b
}

func (b *Builder) base(t ValueType) Measure {
	return Measure{
		valueType: t,
		dimension: b.dimension,
		data:      b.data,
		qgStatus:  b.qgStatus,
		variation: b.variation,
	}
}

func (b *Builder) CreateInt(v int) Measure {
	m := b.base(ValueInt)
	m.intValue = v
	return m
}

func (b *Builder) CreateLong(v int64) Measure {
	m := b.base(ValueLong)
	m.longValue = v
	return m
}

// CreateDouble rounds v to one decimal place. It panics on NaN.
func (b *Builder) CreateDouble(v float64) Measure {
	m := b.base(ValueDouble)
	m.doubleValue = roundScale1(v)
	return m
}

func (b *Builder) CreateBool(v bool) Measure {
	m := b.base(ValueBoolean)
	m.boolValue = v
	return m
}

func (b *Builder) CreateString(v string) Measure {
	m := b.base(ValueString)
	m.stringValue = v
	return m
}

func (b *Builder) CreateLevel(l Level) Measure {
	if l < LevelOK || l > LevelError {
		panic(fmt.Sprintf("measure: invalid level %d", int(l)))
	}
	m := b.base(ValueLevel)
	m.level = l
	return m
}

func (b *Builder) CreateNoValue() Measure {
	return b.base(ValueNoValue)
}

// UpdateBuilder derives a new Measure from an existing one. Optional fields
// that are already set on the original can not be set again.
type UpdateBuilder struct {
	m Measure
}

// UpdateFrom starts an update of m.
func UpdateFrom(m Measure) *UpdateBuilder {
	return &UpdateBuilder{m: m}
}

// Variation panics if the original measure already has a variation.
func (u *UpdateBuilder) Variation(v float64) *UpdateBuilder {
	if u.m.variation != nil {
		panic("measure: variation can not be set twice")
	}
	r := roundScale1(v)
	u.m.variation = &r
	return u
}

// QualityGateStatus panics if the original measure already has a status.
func (u *UpdateBuilder) QualityGateStatus(s QualityGateStatus) *UpdateBuilder {
	if u.m.qgStatus != nil {
		panic("measure: quality gate status can not be set twice")
	}
	u.m.qgStatus = &s
	return u
}

func (u *UpdateBuilder) Create() Measure {
	return u.m
}
