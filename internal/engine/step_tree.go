package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/report"
)

// BuildComponentTreeStep builds the component tree from the report. Directory
// and file keys default to "<module key>:<path>"; uuids of known keys are
// reused from history, new keys get a random uuid.
type BuildComponentTreeStep struct{}

func (s *BuildComponentTreeStep) Name() string { return "Build component tree" }

type pendingComponent struct {
	rc       report.Component
	typ      component.Type
	key      string
	children []*pendingComponent
}

func (s *BuildComponentTreeStep) Execute(ctx context.Context, pc *Context) error {
	meta := pc.Report.Metadata()
	visiting := make(map[int]bool)

	var resolve func(ref int, moduleKey string) (*pendingComponent, error)
	resolve = func(ref int, moduleKey string) (*pendingComponent, error) {
		if visiting[ref] {
			return nil, fmt.Errorf("%w: component %d is its own ancestor", report.ErrInvalidReport, ref)
		}
		visiting[ref] = true
		defer delete(visiting, ref)

		rc, ok := pc.Report.Component(ref)
		if !ok {
			return nil, fmt.Errorf("%w: component %d is missing", report.ErrInvalidReport, ref)
		}
		typ, err := component.ParseType(rc.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d: %v", report.ErrInvalidReport, ref, err)
		}

		if typ.IsLeaf() && len(rc.ChildRefs) > 0 {
			return nil, fmt.Errorf("%w: %s %d can not have children", report.ErrInvalidReport, typ, ref)
		}

		p := &pendingComponent{rc: rc, typ: typ, key: rc.Key}
		switch {
		case p.key != "":
		case ref == meta.RootComponentRef && meta.ProjectKey != "":
			p.key = meta.ProjectKey
		case (typ == component.TypeDirectory || typ == component.TypeFile) && moduleKey != "":
			p.key = moduleKey + ":" + rc.Path
		default:
			return nil, fmt.Errorf("%w: component %d has no key", report.ErrInvalidReport, ref)
		}

		childModule := moduleKey
		if typ == component.TypeProject || typ == component.TypeModule {
			childModule = p.key
		}
		for _, childRef := range rc.ChildRefs {
			child, err := resolve(childRef, childModule)
			if err != nil {
				return nil, err
			}
			p.children = append(p.children, child)
		}
		return p, nil
	}

	root, err := resolve(meta.RootComponentRef, "")
	if err != nil {
		return err
	}

	uuids, err := s.knownUUIDs(pc, root)
	if err != nil {
		return err
	}

	var build func(p *pendingComponent) *component.Component
	build = func(p *pendingComponent) *component.Component {
		children := make([]*component.Component, 0, len(p.children))
		for _, child := range p.children {
			children = append(children, build(child))
		}
		id, ok := uuids[p.key]
		if !ok {
			id = uuid.New().String()
		}
		return component.New(p.typ, p.rc.Ref).
			UUID(id).
			Key(p.key).
			Name(p.rc.Name).
			Path(p.rc.Path).
			Version(p.rc.Version).
			Children(children...).
			Build()
	}

	tree, err := component.NewTree(build(root))
	if err != nil {
		return err
	}
	pc.Tree = tree
	pc.Logger.Debug("component tree built", "root", tree.Root().Key(), "components", tree.Size(), "files", len(tree.Files()))
	return nil
}

func (s *BuildComponentTreeStep) knownUUIDs(pc *Context, root *pendingComponent) (map[string]string, error) {
	if pc.Stores.Components == nil {
		return map[string]string{}, nil
	}
	var keys []string
	var collect func(p *pendingComponent)
	collect = func(p *pendingComponent) {
		keys = append(keys, p.key)
		for _, c := range p.children {
			collect(c)
		}
	}
	collect(root)
	return pc.Stores.Components.SelectUUIDsByKeys(keys)
}
