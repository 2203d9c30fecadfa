package duplication

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/report"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Reader     report.Reader
	Tree       *component.Tree
	Repository Repository
	Exclusions *Exclusions
	// Workers bounds the number of files converted concurrently. Defaults to GOMAXPROCS.
	Workers int
	Logger  hclog.Logger
}

// Loader converts the duplications of a report into Duplications of the tree's files.
type Loader struct {
	reader     report.Reader
	tree       *component.Tree
	repo       Repository
	exclusions *Exclusions
	workers    int
	logger     hclog.Logger
}

// NewLoader creates a Loader. Reader, Tree and Repository are required.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.Reader == nil || opts.Tree == nil || opts.Repository == nil {
		panic("duplication loader: reader, tree and repository are required")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Loader{
		reader:     opts.Reader,
		tree:       opts.Tree,
		repo:       opts.Repository,
		exclusions: opts.Exclusions,
		workers:    opts.Workers,
		logger:     opts.Logger.Named("duplications"),
	}
}

type staged struct {
	file         *component.Component
	duplications []Duplication
}

// Load reads the duplications of every file and records them in the repository.
// It returns the number of Duplications recorded.
//
// Files are converted in parallel, but nothing is recorded unless every file
// converts: an invalid reference in any file fails the whole load with a
// *component.VisitError wrapping ErrIllegalArgument.
func (l *Loader) Load(ctx context.Context) (int, error) {
	var (
		mu      sync.Mutex
		results []staged
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for _, file := range l.tree.Files() {
		if l.exclusions.Excludes(file) {
			l.logger.Debug("file excluded from duplication detection", "file", file.Key())
			continue
		}
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := l.convert(file)
			if err != nil {
				return &component.VisitError{Component: file, Err: err}
			}
			if len(ds) == 0 {
				return nil
			}
			mu.Lock()
			results = append(results, staged{file: file, duplications: ds})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for _, s := range results {
		if err := l.repo.AddAll(s.file, s.duplications); err != nil {
			return count, &component.VisitError{Component: s.file, Err: err}
		}
		count += len(s.duplications)
	}
	l.logger.Debug("duplications loaded", "files", len(results), "duplications", count)
	return count, nil
}

// convert builds the Duplications of one file, numbering originals from 1 in
// report order. Entries sharing an origin are kept apart.
func (l *Loader) convert(file *component.Component) ([]Duplication, error) {
	entries := l.reader.Duplications(file.Ref())
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]Duplication, 0, len(entries))
	for i, entry := range entries {
		origin, err := textBlock(entry.OriginPosition)
		if err != nil {
			return nil, err
		}
		if len(entry.Duplicates) == 0 {
			return nil, fmt.Errorf("%w: duplication %s of %s has no duplicate", ErrIllegalArgument, origin, file.Key())
		}

		duplicates := make([]Duplicate, 0, len(entry.Duplicates))
		for _, rd := range entry.Duplicates {
			d, err := l.duplicate(file, rd)
			if err != nil {
				return nil, err
			}
			duplicates = append(duplicates, d)
		}
		out = append(out, New(DetailedTextBlock{ID: i + 1, TextBlock: origin}, duplicates))
	}
	return out, nil
}

func (l *Loader) duplicate(file *component.Component, rd report.Duplicate) (Duplicate, error) {
	block, err := textBlock(rd.Range)
	if err != nil {
		return Duplicate{}, err
	}

	switch {
	case rd.OtherFileRef != nil:
		ref := *rd.OtherFileRef
		if ref == file.Ref() {
			return Duplicate{}, fmt.Errorf("%w: file %s references itself as duplicate, use an inner duplicate instead", ErrIllegalArgument, file.Key())
		}
		other, ok := l.tree.ByRef(ref)
		if !ok {
			return Duplicate{}, fmt.Errorf("%w: component with ref %d does not exist", ErrIllegalArgument, ref)
		}
		if other.Type() != component.TypeFile {
			return Duplicate{}, fmt.Errorf("%w: component with ref %d is a %s, not a file", ErrIllegalArgument, ref, other.Type())
		}
		return InProjectDuplicate(other, block), nil
	case rd.OtherFileKey != "":
		return CrossProjectDuplicate(rd.OtherFileKey, block), nil
	default:
		return InnerDuplicate(block), nil
	}
}

func textBlock(r report.TextRange) (TextBlock, error) {
	if r.StartLine < 1 || r.EndLine < r.StartLine {
		return TextBlock{}, fmt.Errorf("%w: invalid line range [%d-%d]", ErrIllegalArgument, r.StartLine, r.EndLine)
	}
	return NewTextBlock(r.StartLine, r.EndLine), nil
}
