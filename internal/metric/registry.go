package metric

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a metric is looked up by an unregistered key or id.
var ErrNotFound = errors.New("metric not found")

// Repository resolves metric definitions.
type Repository interface {
	ByKey(key string) (*Metric, error)
	ByID(id int) (*Metric, error)
	All() []*Metric
}

type registry struct {
	byKey map[string]*Metric
	byID  map[int]*Metric
}

// NewRegistry builds an immutable Repository. Keys and ids must be unique.
func NewRegistry(metrics []*Metric) (Repository, error) {
	r := &registry{
		byKey: make(map[string]*Metric, len(metrics)),
		byID:  make(map[int]*Metric, len(metrics)),
	}
	for _, m := range metrics {
		if m.Key == "" {
			return nil, fmt.Errorf("metric id %d has an empty key", m.ID)
		}
		if _, dup := r.byKey[m.Key]; dup {
			return nil, fmt.Errorf("duplicate metric key %q", m.Key)
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate metric id %d", m.ID)
		}
		r.byKey[m.Key] = m
		r.byID[m.ID] = m
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for static catalogues.
func MustNewRegistry(metrics []*Metric) Repository {
	r, err := NewRegistry(metrics)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *registry) ByKey(key string) (*Metric, error) {
	if m, ok := r.byKey[key]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: key %q", ErrNotFound, key)
}

func (r *registry) ByID(id int) (*Metric, error) {
	if m, ok := r.byID[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// All returns the metrics ordered by id.
func (r *registry) All() []*Metric {
	all := make([]*Metric, 0, len(r.byID))
	for _, m := range r.byID {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
