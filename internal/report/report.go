// Package report defines the analysis report produced by a scanner and the
// readers the engine consumes it through.
package report

import "time"

// Metadata describes the analysis a report belongs to.
type Metadata struct {
	AnalysisDate     time.Time `yaml:"analysis_date" json:"analysis_date"`
	ProjectKey       string    `yaml:"project_key" json:"project_key"`
	RootComponentRef int       `yaml:"root_component_ref" json:"root_component_ref"`
}

// Component is a node of the scanned hierarchy. Refs are unique and positive.
type Component struct {
	Ref       int    `yaml:"ref" json:"ref"`
	Type      string `yaml:"type" json:"type"`
	Key       string `yaml:"key,omitempty" json:"key,omitempty"`
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	Path      string `yaml:"path,omitempty" json:"path,omitempty"`
	Version   string `yaml:"version,omitempty" json:"version,omitempty"`
	ChildRefs []int  `yaml:"children,omitempty" json:"children,omitempty"`
}

// TextRange is an inclusive line range.
type TextRange struct {
	StartLine int `yaml:"start_line" json:"start_line"`
	EndLine   int `yaml:"end_line" json:"end_line"`
}

// Duplicate is one copy of a duplicated block. OtherFileRef points to another
// file of the same report, OtherFileKey to a file of another project; when both
// are absent the copy is in the same file as the original.
type Duplicate struct {
	OtherFileRef *int      `yaml:"other_file_ref,omitempty" json:"other_file_ref,omitempty"`
	OtherFileKey string    `yaml:"other_file_key,omitempty" json:"other_file_key,omitempty"`
	Range        TextRange `yaml:"range" json:"range"`
}

// Duplication is an original block and its copies.
type Duplication struct {
	OriginPosition TextRange   `yaml:"origin" json:"origin"`
	Duplicates     []Duplicate `yaml:"duplicates" json:"duplicates"`
}

// Measure is a scanner-computed value. At most one value field is set.
type Measure struct {
	MetricKey    string   `yaml:"metric" json:"metric"`
	IntValue     *int     `yaml:"int_value,omitempty" json:"int_value,omitempty"`
	LongValue    *int64   `yaml:"long_value,omitempty" json:"long_value,omitempty"`
	DoubleValue  *float64 `yaml:"double_value,omitempty" json:"double_value,omitempty"`
	BooleanValue *bool    `yaml:"boolean_value,omitempty" json:"boolean_value,omitempty"`
	StringValue  *string  `yaml:"string_value,omitempty" json:"string_value,omitempty"`
	Variation    *float64 `yaml:"variation,omitempty" json:"variation,omitempty"`
}

// ContextProperty is a key/value pair describing the scanner environment.
type ContextProperty struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

// Reader gives the engine access to one analysis report. Reports are fully
// materialized before the engine runs, so lookups never fail; absent data is
// returned as a zero value.
type Reader interface {
	Metadata() Metadata
	Component(ref int) (Component, bool)
	Duplications(ref int) []Duplication
	Measures(ref int) []Measure
	ContextProperties() []ContextProperty
}

// Property returns the value of the context property with the given key.
func Property(r Reader, key string) (string, bool) {
	for _, p := range r.ContextProperties() {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
