package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Tree:
// - NewTree indexes every component by ref and key
// - Duplicate refs are rejected
// - A node shared by two parents is rejected
// - Mixing views and report types is rejected
// - Walk visits in pre-order and post-order
// - Errors from the visitor are wrapped once in a VisitError
// - Files lists file components in report order

func sampleTree() *Component {
	file1 := New(TypeFile, 4).Key("P:src/a.go").Path("src/a.go").Build()
	file2 := New(TypeFile, 5).Key("P:src/b.go").Path("src/b.go").Build()
	dir := New(TypeDirectory, 3).Key("P:src").Path("src").Children(file1, file2).Build()
	module := New(TypeModule, 2).Key("P:core").Children(dir).Build()
	return New(TypeProject, 1).Key("P").Version("1.0").Children(module).Build()
}

func TestNewTree_IndexesComponents(t *testing.T) {
	t.Parallel()

	tree, err := NewTree(sampleTree())
	require.NoError(t, err)

	assert.Equal(t, 5, tree.Size())
	assert.Equal(t, 1, tree.Root().Ref())
	assert.Equal(t, "1.0", tree.Root().Version())

	file, ok := tree.ByRef(4)
	require.True(t, ok)
	assert.Equal(t, TypeFile, file.Type())
	assert.Equal(t, "src/a.go", file.Path())

	byKey, ok := tree.ByKey("P:src/b.go")
	require.True(t, ok)
	assert.Equal(t, 5, byKey.Ref())

	_, ok = tree.ByRef(42)
	assert.False(t, ok)
}

func TestNewTree_DuplicateRef(t *testing.T) {
	t.Parallel()

	root := New(TypeProject, 1).Key("P").Children(
		New(TypeFile, 2).Key("P:a").Build(),
		New(TypeFile, 2).Key("P:b").Build(),
	).Build()

	_, err := NewTree(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateRef))
}

func TestNewTree_SharedChild(t *testing.T) {
	t.Parallel()

	shared := New(TypeFile, 3).Key("P:a").Build()
	root := New(TypeProject, 1).Key("P").Children(
		New(TypeDirectory, 2).Key("P:d").Children(shared).Build(),
		shared,
	).Build()

	_, err := NewTree(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleParents)
}

func TestNewTree_MixedTypes(t *testing.T) {
	t.Parallel()

	root := New(TypeView, 1).Key("V").Children(New(TypeFile, 2).Key("F").Build()).Build()

	_, err := NewTree(root)
	assert.ErrorIs(t, err, ErrMixedTypes)
}

func TestWalk_Orders(t *testing.T) {
	t.Parallel()

	tree, err := NewTree(sampleTree())
	require.NoError(t, err)

	var pre, post []int
	require.NoError(t, tree.Walk(PreOrder, func(c *Component) error {
		pre = append(pre, c.Ref())
		return nil
	}))
	require.NoError(t, tree.Walk(PostOrder, func(c *Component) error {
		post = append(post, c.Ref())
		return nil
	}))

	assert.Equal(t, []int{1, 2, 3, 4, 5}, pre)
	assert.Equal(t, []int{4, 5, 3, 2, 1}, post)
}

func TestWalk_WrapsErrorOnce(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tree, err := NewTree(sampleTree())
	require.NoError(t, err)

	err = tree.Walk(PostOrder, func(c *Component) error {
		if c.Ref() == 5 {
			return cause
		}
		return nil
	})

	var visitErr *VisitError
	require.ErrorAs(t, err, &visitErr)
	assert.Equal(t, 5, visitErr.Component.Ref())
	assert.Same(t, cause, visitErr.Err)
	assert.ErrorIs(t, err, cause)
}

func TestTree_Files(t *testing.T) {
	t.Parallel()

	tree, err := NewTree(sampleTree())
	require.NoError(t, err)

	files := tree.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "P:src/a.go", files[0].Key())
	assert.Equal(t, "P:src/b.go", files[1].Key())
}

func TestParseType(t *testing.T) {
	t.Parallel()

	typ, err := ParseType("project_view")
	require.NoError(t, err)
	assert.Equal(t, TypeProjectView, typ)
	assert.True(t, typ.IsViewsType())
	assert.False(t, typ.IsReportType())

	_, err = ParseType("PACKAGE")
	assert.Error(t, err)
}

func TestBuilder_LeafWithChildrenPanics(t *testing.T) {
	t.Parallel()

	child := New(TypeFile, 2).Build()
	assert.Panics(t, func() {
		New(TypeFile, 1).Children(child).Build()
	})
}
