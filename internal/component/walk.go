package component

import (
	"errors"
	"fmt"
)

// Order is the traversal order of a Walk.
type Order int

const (
	// PreOrder visits a parent before its children (top-down steps).
	PreOrder Order = iota
	// PostOrder visits children before their parent (bottom-up aggregation).
	PostOrder
)

// VisitFunc is called once per component.
type VisitFunc func(c *Component) error

// VisitError reports that visiting a component failed. Err holds the cause.
type VisitError struct {
	Component *Component
	Err       error
}

func (e *VisitError) Error() string {
	return fmt.Sprintf("visit of %s failed: %v", e.Component, e.Err)
}

func (e *VisitError) Unwrap() error { return e.Err }

// Walk traverses the subtree under root. The first error returned by fn stops
// the walk and is returned wrapped in a *VisitError.
func Walk(root *Component, order Order, fn VisitFunc) error {
	if root == nil {
		return nil
	}
	if order == PreOrder {
		if err := fn(root); err != nil {
			return wrapVisit(root, err)
		}
	}
	for _, child := range root.children {
		if err := Walk(child, order, fn); err != nil {
			return err
		}
	}
	if order == PostOrder {
		if err := fn(root); err != nil {
			return wrapVisit(root, err)
		}
	}
	return nil
}

func wrapVisit(c *Component, err error) error {
	var visitErr *VisitError
	if errors.As(err, &visitErr) {
		return err
	}
	return &VisitError{Component: c, Err: err}
}
