package component

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

var (
	// ErrDuplicateRef is returned when two nodes share a report ref.
	ErrDuplicateRef = errors.New("duplicate component ref")
	// ErrCycle is returned when a component is reachable from itself.
	ErrCycle = errors.New("component tree contains a cycle")
	// ErrMultipleParents is returned when one node is the child of several parents.
	ErrMultipleParents = errors.New("component has more than one parent")
	// ErrMixedTypes is returned when report and views types are combined in one tree.
	ErrMixedTypes = errors.New("component tree mixes report and views types")
)

// Tree is the component hierarchy of one analysis, addressable by ref.
type Tree struct {
	root  *Component
	byRef map[int]*Component
	byKey map[string]*Component
}

// NewTree indexes the hierarchy under root and checks that it is a proper tree:
// refs are unique, every node has a single parent, no node is its own ancestor
// and all nodes belong to the type family of the root.
func NewTree(root *Component) (*Tree, error) {
	if root == nil {
		return nil, errors.New("component tree: nil root")
	}

	g := graph.New(func(c *Component) int { return c.ref }, graph.Directed(), graph.PreventCycles())
	t := &Tree{
		root:  root,
		byRef: make(map[int]*Component),
		byKey: make(map[string]*Component),
	}

	var add func(parent, c *Component) error
	add = func(parent, c *Component) error {
		if c.typ.IsViewsType() != root.typ.IsViewsType() {
			return fmt.Errorf("%w: %s under %s", ErrMixedTypes, c, root)
		}
		if err := g.AddVertex(c); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				if existing := t.byRef[c.ref]; existing == c {
					return fmt.Errorf("%w: %s", ErrMultipleParents, c)
				}
				return fmt.Errorf("%w: %d", ErrDuplicateRef, c.ref)
			}
			return err
		}
		t.byRef[c.ref] = c
		if c.key != "" {
			t.byKey[c.key] = c
		}
		if parent != nil {
			if err := g.AddEdge(parent.ref, c.ref); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return fmt.Errorf("%w: %s -> %s", ErrCycle, parent, c)
				}
				return err
			}
		}
		for _, child := range c.children {
			if err := add(c, child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add(nil, root); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the top-level component.
func (t *Tree) Root() *Component { return t.root }

// ByRef returns the component with the given report ref.
func (t *Tree) ByRef(ref int) (*Component, bool) {
	c, ok := t.byRef[ref]
	return c, ok
}

// ByKey returns the component with the given key.
func (t *Tree) ByKey(key string) (*Component, bool) {
	c, ok := t.byKey[key]
	return c, ok
}

// Size is the number of components in the tree.
func (t *Tree) Size() int { return len(t.byRef) }

// Files returns every FILE component in pre-order.
func (t *Tree) Files() []*Component {
	var files []*Component
	_ = Walk(t.root, PreOrder, func(c *Component) error {
		if c.typ == TypeFile {
			files = append(files, c)
		}
		return nil
	})
	return files
}

// Walk visits every component of the tree in the given order.
func (t *Tree) Walk(order Order, fn VisitFunc) error {
	return Walk(t.root, order, fn)
}
