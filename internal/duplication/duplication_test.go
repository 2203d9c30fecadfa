package duplication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-gauge/internal/component"
)

// Test Plan for Duplication types:
// - NewTextBlock rejects lines before 1 and inverted ranges
// - Length counts both ends
// - Duplicates sort inner first, then in-project by key, then cross-project by key
// - Equal duplicates collapse into one
// - New without duplicates panics
// - In-project duplicates must reference files; cross-project ones need a key
// - Repository only accepts files and keeps insertion order

func TestNewTextBlock(t *testing.T) {
	t.Parallel()

	b := NewTextBlock(3, 7)
	assert.Equal(t, 5, b.Length())
	assert.Equal(t, "[3-7]", b.String())
	assert.Equal(t, 1, NewTextBlock(4, 4).Length())

	assert.Panics(t, func() { NewTextBlock(0, 4) })
	assert.Panics(t, func() { NewTextBlock(5, 4) })
}

func TestNew_SortsDuplicates(t *testing.T) {
	t.Parallel()

	fileB := component.New(component.TypeFile, 3).Key("P:b").Build()
	fileA := component.New(component.TypeFile, 2).Key("P:a").Build()

	d := New(DetailedTextBlock{ID: 1, TextBlock: NewTextBlock(1, 5)}, []Duplicate{
		CrossProjectDuplicate("Z:file", NewTextBlock(1, 5)),
		InProjectDuplicate(fileB, NewTextBlock(2, 6)),
		InnerDuplicate(NewTextBlock(30, 34)),
		CrossProjectDuplicate("A:file", NewTextBlock(1, 5)),
		InProjectDuplicate(fileA, NewTextBlock(8, 12)),
		InnerDuplicate(NewTextBlock(10, 14)),
	})

	got := make([]string, 0, len(d.Duplicates()))
	for _, dup := range d.Duplicates() {
		got = append(got, dup.String())
	}
	assert.Equal(t, []string{
		"inner[10-14]",
		"inner[30-34]",
		"in-project[8-12]@P:a",
		"in-project[2-6]@P:b",
		"cross-project[1-5]@A:file",
		"cross-project[1-5]@Z:file",
	}, got)
	assert.Equal(t, 1, d.Original().ID)
}

func TestNew_DropsRepeatedDuplicates(t *testing.T) {
	t.Parallel()

	file := component.New(component.TypeFile, 2).Key("P:a").Build()

	d := New(DetailedTextBlock{ID: 1, TextBlock: NewTextBlock(1, 5)}, []Duplicate{
		InProjectDuplicate(file, NewTextBlock(8, 12)),
		InnerDuplicate(NewTextBlock(10, 14)),
		InProjectDuplicate(file, NewTextBlock(8, 12)),
		InnerDuplicate(NewTextBlock(10, 14)),
		InnerDuplicate(NewTextBlock(10, 15)),
	})

	got := make([]string, 0, len(d.Duplicates()))
	for _, dup := range d.Duplicates() {
		got = append(got, dup.String())
	}
	assert.Equal(t, []string{
		"inner[10-14]",
		"inner[10-15]",
		"in-project[8-12]@P:a",
	}, got)
}

func TestNew_RequiresDuplicates(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		New(DetailedTextBlock{ID: 1, TextBlock: NewTextBlock(1, 2)}, nil)
	})
}

func TestDuplicate_Constructors(t *testing.T) {
	t.Parallel()

	dir := component.New(component.TypeDirectory, 2).Key("P:src").Build()
	assert.Panics(t, func() { InProjectDuplicate(dir, NewTextBlock(1, 2)) })
	assert.Panics(t, func() { InProjectDuplicate(nil, NewTextBlock(1, 2)) })
	assert.Panics(t, func() { CrossProjectDuplicate("", NewTextBlock(1, 2)) })

	file := component.New(component.TypeFile, 3).Key("P:src/a.go").Build()
	d := InProjectDuplicate(file, NewTextBlock(1, 2))
	assert.Equal(t, KindInProject, d.Kind())
	assert.Same(t, file, d.Component())
	assert.Empty(t, d.FileKey())

	c := CrossProjectDuplicate("Q:x.go", NewTextBlock(1, 2))
	assert.Equal(t, KindCrossProject, c.Kind())
	assert.Nil(t, c.Component())
	assert.Equal(t, "Q:x.go", c.FileKey())
}

func TestRepository(t *testing.T) {
	t.Parallel()

	repo := NewRepository()
	file := component.New(component.TypeFile, 3).Key("P:a").Build()
	dir := component.New(component.TypeDirectory, 2).Key("P:src").Build()

	first := New(DetailedTextBlock{ID: 1, TextBlock: NewTextBlock(1, 2)}, []Duplicate{InnerDuplicate(NewTextBlock(5, 6))})
	second := New(DetailedTextBlock{ID: 2, TextBlock: NewTextBlock(1, 2)}, []Duplicate{InnerDuplicate(NewTextBlock(8, 9))})

	require.NoError(t, repo.Add(file, first))
	require.NoError(t, repo.Add(file, second))

	got := repo.Get(file)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Original().ID)
	assert.Equal(t, 2, got[1].Original().ID)
	assert.Equal(t, []int{3}, repo.Files())

	err := repo.Add(dir, first)
	require.ErrorIs(t, err, ErrIllegalArgument)
	assert.Empty(t, repo.Get(dir))

	assert.Panics(t, func() { repo.Get(nil) })
}
