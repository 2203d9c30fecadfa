package duplication

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/report"
)

// Test Plan for Loader:
// - Entries get ids 1..n in report order
// - Entries sharing an origin line stay separate, each with its own duplicates
// - otherFileRef resolves to an in-project duplicate, otherFileKey to a cross-project one
// - An unknown ref fails with a VisitError wrapping ErrIllegalArgument
// - A self reference fails the same way and records nothing for any file
// - Invalid line ranges are rejected
// - Excluded files get no duplications, a nil Exclusions excludes nothing
// - Files without entries get nothing

const (
	rootRef  = 1
	dirRef   = 2
	file1Ref = 3
	file2Ref = 4
)

type loaderFixture struct {
	tree   *component.Tree
	file1  *component.Component
	file2  *component.Component
	reader *report.Memory
	repo   Repository
}

func newLoaderFixture(t *testing.T) *loaderFixture {
	t.Helper()
	file1 := component.New(component.TypeFile, file1Ref).Key("P:src/a.go").Path("src/a.go").Build()
	file2 := component.New(component.TypeFile, file2Ref).Key("P:gen/b.go").Path("gen/b.go").Build()
	dir := component.New(component.TypeDirectory, dirRef).Key("P:src").Path("src").Children(file1, file2).Build()
	root := component.New(component.TypeProject, rootRef).Key("P").Children(dir).Build()

	tree, err := component.NewTree(root)
	require.NoError(t, err)

	return &loaderFixture{
		tree:   tree,
		file1:  file1,
		file2:  file2,
		reader: report.New(report.Metadata{ProjectKey: "P", RootComponentRef: rootRef}),
		repo:   NewRepository(),
	}
}

func (f *loaderFixture) load(t *testing.T, exclusions *Exclusions) (int, error) {
	t.Helper()
	return NewLoader(LoaderOptions{
		Reader:     f.reader,
		Tree:       f.tree,
		Repository: f.repo,
		Exclusions: exclusions,
		Workers:    2,
	}).Load(context.Background())
}

func lines(start, end int) report.TextRange {
	return report.TextRange{StartLine: start, EndLine: end}
}

func refPtr(ref int) *int { return &ref }

var componentIdentity = cmp.Comparer(func(a, b *component.Component) bool { return a == b })

func TestLoader_SameOriginLineKeepsEntriesApart(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file1Ref,
		report.Duplication{
			OriginPosition: lines(1, 5),
			Duplicates:     []report.Duplicate{{Range: lines(10, 14)}},
		},
		report.Duplication{
			OriginPosition: lines(1, 6),
			Duplicates:     []report.Duplicate{{OtherFileRef: refPtr(file2Ref), Range: lines(20, 25)}},
		},
	)

	count, err := f.load(t, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	want := []Duplication{
		New(DetailedTextBlock{ID: 1, TextBlock: NewTextBlock(1, 5)}, []Duplicate{InnerDuplicate(NewTextBlock(10, 14))}),
		New(DetailedTextBlock{ID: 2, TextBlock: NewTextBlock(1, 6)}, []Duplicate{InProjectDuplicate(f.file2, NewTextBlock(20, 25))}),
	}
	got := f.repo.Get(f.file1)
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Duplication{}, Duplicate{}), componentIdentity); diff != "" {
		t.Errorf("duplications mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, f.repo.Get(f.file2))
}

func TestLoader_CrossProjectDuplicate(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file1Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{OtherFileKey: "PROJECT2_KEY:file2", Range: lines(6, 10)}},
	})

	_, err := f.load(t, nil)
	require.NoError(t, err)

	got := f.repo.Get(f.file1)
	require.Len(t, got, 1)
	dup := got[0].Duplicates()[0]
	assert.Equal(t, KindCrossProject, dup.Kind())
	assert.Equal(t, "PROJECT2_KEY:file2", dup.FileKey())
	assert.Equal(t, NewTextBlock(6, 10), dup.TextBlock())
}

func TestLoader_SelfReferenceFails(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file2Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{Range: lines(6, 10)}},
	})
	f.reader.PutDuplications(file1Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{OtherFileRef: refPtr(file1Ref), Range: lines(6, 10)}},
	})

	_, err := f.load(t, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrIllegalArgument)

	var visitErr *component.VisitError
	require.True(t, errors.As(err, &visitErr))
	assert.Equal(t, file1Ref, visitErr.Component.Ref())

	assert.Empty(t, f.repo.Get(f.file1))
	assert.Empty(t, f.repo.Get(f.file2))
	assert.Empty(t, f.repo.Files())
}

func TestLoader_UnknownRefFails(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file1Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{OtherFileRef: refPtr(99), Range: lines(6, 10)}},
	})

	_, err := f.load(t, nil)
	require.ErrorIs(t, err, ErrIllegalArgument)
	var visitErr *component.VisitError
	assert.ErrorAs(t, err, &visitErr)
	assert.Empty(t, f.repo.Files())
}

func TestLoader_RefToDirectoryFails(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file1Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{OtherFileRef: refPtr(dirRef), Range: lines(6, 10)}},
	})

	_, err := f.load(t, nil)
	require.ErrorIs(t, err, ErrIllegalArgument)
}

func TestLoader_InvalidRange(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file1Ref, report.Duplication{
		OriginPosition: lines(5, 1),
		Duplicates:     []report.Duplicate{{Range: lines(6, 10)}},
	})

	_, err := f.load(t, nil)
	require.ErrorIs(t, err, ErrIllegalArgument)
}

func TestLoader_Exclusions(t *testing.T) {
	t.Parallel()
	f := newLoaderFixture(t)

	f.reader.PutDuplications(file1Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{Range: lines(6, 10)}},
	})
	f.reader.PutDuplications(file2Ref, report.Duplication{
		OriginPosition: lines(1, 5),
		Duplicates:     []report.Duplicate{{Range: lines(6, 10)}},
	})

	exclusions, err := NewExclusions([]string{"gen/**"})
	require.NoError(t, err)

	count, err := f.load(t, exclusions)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, f.repo.Get(f.file1), 1)
	assert.Empty(t, f.repo.Get(f.file2))
}

func TestExclusions_Nil(t *testing.T) {
	t.Parallel()

	var nilExclusions *Exclusions
	file := component.New(component.TypeFile, 1).Key("P:a").Build()
	assert.False(t, nilExclusions.Excludes(file))
	assert.Nil(t, nilExclusions.Patterns())
}
