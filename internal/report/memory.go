package report

import "sort"

// Memory is an in-memory Reader. It is filled once and read-only afterwards.
type Memory struct {
	metadata     Metadata
	components   map[int]Component
	duplications map[int][]Duplication
	measures     map[int][]Measure
	properties   []ContextProperty
}

// New creates an empty report for the given analysis.
func New(metadata Metadata) *Memory {
	return &Memory{
		metadata:     metadata,
		components:   make(map[int]Component),
		duplications: make(map[int][]Duplication),
		measures:     make(map[int][]Measure),
	}
}

// PutComponent adds or replaces a component.
func (r *Memory) PutComponent(c Component) *Memory {
	r.components[c.Ref] = c
	return r
}

// PutDuplications appends duplications of the file with the given ref.
func (r *Memory) PutDuplications(ref int, duplications ...Duplication) *Memory {
	r.duplications[ref] = append(r.duplications[ref], duplications...)
	return r
}

// PutMeasures appends measures of the component with the given ref.
func (r *Memory) PutMeasures(ref int, measures ...Measure) *Memory {
	r.measures[ref] = append(r.measures[ref], measures...)
	return r
}

func (r *Memory) PutContextProperties(props ...ContextProperty) *Memory {
	r.properties = append(r.properties, props...)
	return r
}

func (r *Memory) Metadata() Metadata { return r.metadata }

func (r *Memory) Component(ref int) (Component, bool) {
	c, ok := r.components[ref]
	return c, ok
}

func (r *Memory) Duplications(ref int) []Duplication { return r.duplications[ref] }

func (r *Memory) Measures(ref int) []Measure { return r.measures[ref] }

func (r *Memory) ContextProperties() []ContextProperty { return r.properties }

// ComponentRefs returns every component ref in ascending order.
func (r *Memory) ComponentRefs() []int {
	refs := make([]int, 0, len(r.components))
	for ref := range r.components {
		refs = append(refs, ref)
	}
	sort.Ints(refs)
	return refs
}
