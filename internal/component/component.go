package component

import (
	"fmt"
	"strings"
)

// Type is the kind of a Component. A tree holds either report types
// (project, module, directory, file) or views types, never both.
type Type int

const (
	TypeProject Type = iota + 1
	TypeModule
	TypeDirectory
	TypeFile
	TypeView
	TypeSubView
	TypeProjectView
)

var typeNames = map[Type]string{
	TypeProject:     "PROJECT",
	TypeModule:      "MODULE",
	TypeDirectory:   "DIRECTORY",
	TypeFile:        "FILE",
	TypeView:        "VIEW",
	TypeSubView:     "SUBVIEW",
	TypeProjectView: "PROJECT_VIEW",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a type name such as "FILE" (case-insensitive) to a Type.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown component type %q", s)
}

// IsReportType reports whether t belongs to the project/module/directory/file family.
func (t Type) IsReportType() bool {
	return t >= TypeProject && t <= TypeFile
}

// IsViewsType reports whether t belongs to the portfolio family.
func (t Type) IsViewsType() bool {
	return t >= TypeView && t <= TypeProjectView
}

// IsLeaf reports whether components of type t never have children.
func (t Type) IsLeaf() bool {
	return t == TypeFile || t == TypeProjectView
}

// Component is one node of the analysed hierarchy. It is immutable once built.
type Component struct {
	ref      int
	typ      Type
	uuid     string
	key      string
	name     string
	path     string
	version  string
	children []*Component
}

func (c *Component) Ref() int { return c.ref }
func (c *Component) Type() Type { return c.typ }
func (c *Component) UUID() string { return c.uuid }
func (c *Component) Key() string { return c.key }
func (c *Component) Name() string { return c.name }
func (c *Component) Path() string { return c.path }

// Version is the project version declared by the scanner, or "" when absent.
func (c *Component) Version() string { return c.version }

// Children returns the child components in report order. The slice must not be modified.
func (c *Component) Children() []*Component { return c.children }

func (c *Component) String() string {
	return fmt.Sprintf("%s(ref=%d, key=%s)", c.typ, c.ref, c.key)
}

// Builder assembles a Component. Builders are single-use.
type Builder struct {
	c Component
}

// New starts a Component of the given type and report ref.
func New(typ Type, ref int) *Builder {
	return &Builder{c: Component{typ: typ, ref: ref}}
}

func (b *Builder) UUID(uuid string) *Builder {
	b.c.uuid = uuid
	return b
}

func (b *Builder) Key(key string) *Builder {
	b.c.key = key
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.c.name = name
	return b
}

func (b *Builder) Path(path string) *Builder {
	b.c.path = path
	return b
}

func (b *Builder) Version(version string) *Builder {
	b.c.version = version
	return b
}

// Children appends children in the given order.
func (b *Builder) Children(children ...*Component) *Builder {
	b.c.children = append(b.c.children, children...)
	return b
}

// Build returns the Component. It panics if the type is unknown or a leaf type was given children.
func (b *Builder) Build() *Component {
	if _, ok := typeNames[b.c.typ]; !ok {
		panic(fmt.Sprintf("component ref %d: unknown type %d", b.c.ref, int(b.c.typ)))
	}
	if b.c.typ.IsLeaf() && len(b.c.children) > 0 {
		panic(fmt.Sprintf("component %s cannot have children", b.c.typ))
	}
	for _, child := range b.c.children {
		if child == nil {
			panic(fmt.Sprintf("component ref %d: nil child", b.c.ref))
		}
	}
	c := b.c
	c.children = append([]*Component(nil), b.c.children...)
	return &c
}
