package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidReport is returned when a report file is structurally inconsistent.
var ErrInvalidReport = errors.New("invalid report")

type document struct {
	Metadata          Metadata              `yaml:"metadata"`
	Components        []Component           `yaml:"components"`
	Duplications      map[int][]Duplication `yaml:"duplications"`
	Measures          map[int][]Measure     `yaml:"measures"`
	ContextProperties []ContextProperty     `yaml:"context_properties"`
}

// Load reads a YAML (or JSON) report file.
func Load(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a report and checks that it is dated and that every ref it uses is declared.
func Parse(in io.Reader) (*Memory, error) {
	var doc document
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}

	if doc.Metadata.AnalysisDate.IsZero() {
		return nil, fmt.Errorf("%w: metadata has no analysis_date", ErrInvalidReport)
	}

	r := New(doc.Metadata)
	for _, c := range doc.Components {
		if c.Ref <= 0 {
			return nil, fmt.Errorf("%w: component %q has non-positive ref %d", ErrInvalidReport, c.Key, c.Ref)
		}
		if _, dup := r.components[c.Ref]; dup {
			return nil, fmt.Errorf("%w: duplicate component ref %d", ErrInvalidReport, c.Ref)
		}
		r.PutComponent(c)
	}

	if _, ok := r.components[doc.Metadata.RootComponentRef]; !ok {
		return nil, fmt.Errorf("%w: root component ref %d is not declared", ErrInvalidReport, doc.Metadata.RootComponentRef)
	}
	for _, c := range doc.Components {
		for _, child := range c.ChildRefs {
			if _, ok := r.components[child]; !ok {
				return nil, fmt.Errorf("%w: component %d has undeclared child %d", ErrInvalidReport, c.Ref, child)
			}
		}
	}

	for ref, dups := range doc.Duplications {
		if _, ok := r.components[ref]; !ok {
			return nil, fmt.Errorf("%w: duplications for undeclared component %d", ErrInvalidReport, ref)
		}
		r.PutDuplications(ref, dups...)
	}
	for ref, measures := range doc.Measures {
		if _, ok := r.components[ref]; !ok {
			return nil, fmt.Errorf("%w: measures for undeclared component %d", ErrInvalidReport, ref)
		}
		r.PutMeasures(ref, measures...)
	}
	r.PutContextProperties(doc.ContextProperties...)

	return r, nil
}
