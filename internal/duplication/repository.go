package duplication

import (
	"errors"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/mvp-joe/project-gauge/internal/component"
)

// ErrIllegalArgument is returned for duplications that reference an invalid component.
var ErrIllegalArgument = errors.New("illegal argument")

// Repository holds the duplications of the files of one analysis.
type Repository interface {
	// Add records a duplication for a file.
	Add(file *component.Component, d Duplication) error
	// AddAll records the duplications of a file in one step.
	AddAll(file *component.Component, ds []Duplication) error
	// Get returns the duplications of a file in insertion order.
	Get(file *component.Component) []Duplication
	// Files returns the refs of every file with at least one duplication.
	Files() []int
}

type repository struct {
	byRef *xsync.MapOf[int, []Duplication]
}

// NewRepository creates an empty, concurrency-safe repository.
func NewRepository() Repository {
	return &repository{byRef: xsync.NewMapOf[int, []Duplication]()}
}

func checkFile(file *component.Component) error {
	if file == nil {
		panic("duplication repository: file can not be nil")
	}
	if file.Type() != component.TypeFile {
		return fmt.Errorf("%w: duplications can only be recorded on files, got %s", ErrIllegalArgument, file)
	}
	return nil
}

func (r *repository) Add(file *component.Component, d Duplication) error {
	return r.AddAll(file, []Duplication{d})
}

func (r *repository) AddAll(file *component.Component, ds []Duplication) error {
	if err := checkFile(file); err != nil {
		return err
	}
	if len(ds) == 0 {
		return nil
	}
	r.byRef.Compute(file.Ref(), func(old []Duplication, _ bool) ([]Duplication, bool) {
		merged := make([]Duplication, 0, len(old)+len(ds))
		merged = append(merged, old...)
		return append(merged, ds...), false
	})
	return nil
}

func (r *repository) Get(file *component.Component) []Duplication {
	if file == nil {
		panic("duplication repository: file can not be nil")
	}
	ds, _ := r.byRef.Load(file.Ref())
	return ds
}

func (r *repository) Files() []int {
	refs := make([]int, 0, r.byRef.Size())
	r.byRef.Range(func(ref int, _ []Duplication) bool {
		refs = append(refs, ref)
		return true
	})
	sort.Ints(refs)
	return refs
}
