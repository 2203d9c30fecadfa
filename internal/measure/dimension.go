package measure

import "fmt"

// unsetID marks an absent rule or characteristic id. Ids are always positive.
const unsetID = -1

// Dimension is the optional secondary axis of a measure: a rule, a
// characteristic or a developer. Rule and characteristic are mutually exclusive.
type Dimension struct {
	ruleID           int
	characteristicID int
	developer        string
}

// NoDimension is the dimension of plain component-level measures.
var NoDimension = Dimension{ruleID: unsetID, characteristicID: unsetID}

func RuleDimension(ruleID int) Dimension {
	return Dimension{ruleID: ruleID, characteristicID: unsetID}
}

func CharacteristicDimension(characteristicID int) Dimension {
	return Dimension{ruleID: unsetID, characteristicID: characteristicID}
}

// DeveloperDimension scopes a measure to one developer. The key must not be empty.
func DeveloperDimension(developer string) Dimension {
	if developer == "" {
		panic("measure: developer key must not be empty")
	}
	return Dimension{ruleID: unsetID, characteristicID: unsetID, developer: developer}
}

func (d Dimension) RuleID() (int, bool) {
	return d.ruleID, d.ruleID != unsetID
}

func (d Dimension) CharacteristicID() (int, bool) {
	return d.characteristicID, d.characteristicID != unsetID
}

func (d Dimension) Developer() (string, bool) {
	return d.developer, d.developer != ""
}

// IsZero reports whether d is NoDimension.
func (d Dimension) IsZero() bool {
	return d == NoDimension
}

func (d Dimension) String() string {
	switch {
	case d.ruleID != unsetID:
		return fmt.Sprintf("rule=%d", d.ruleID)
	case d.characteristicID != unsetID:
		return fmt.Sprintf("characteristic=%d", d.characteristicID)
	case d.developer != "":
		return fmt.Sprintf("developer=%s", d.developer)
	}
	return "none"
}

// Key identifies a measure of a component. Unset dimension fields compare
// equal only to other unset fields.
type Key struct {
	MetricKey string
	Dimension Dimension
}

// NewKey returns the key of the plain measure of metricKey.
func NewKey(metricKey string) Key {
	return Key{MetricKey: metricKey, Dimension: NoDimension}
}

// KeyOf returns the key under which m is stored for metricKey.
func KeyOf(metricKey string, m Measure) Key {
	return Key{MetricKey: metricKey, Dimension: m.dimension}
}

func (k Key) String() string {
	return fmt.Sprintf("%s[%s]", k.MetricKey, k.Dimension)
}
