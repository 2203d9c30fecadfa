// Package duplication models duplicated blocks of code and loads them from
// analysis reports.
package duplication

import (
	"fmt"
	"sort"

	"github.com/mvp-joe/project-gauge/internal/component"
)

// TextBlock is an inclusive range of lines. Lines start at 1.
type TextBlock struct {
	Start int
	End   int
}

// NewTextBlock panics if the range is empty or starts before line 1.
func NewTextBlock(start, end int) TextBlock {
	if start < 1 {
		panic(fmt.Sprintf("duplication: start line %d must be >= 1", start))
	}
	if end < start {
		panic(fmt.Sprintf("duplication: end line %d must be >= start line %d", end, start))
	}
	return TextBlock{Start: start, End: end}
}

// Length is the number of lines of the block.
func (b TextBlock) Length() int { return b.End - b.Start + 1 }

func (b TextBlock) String() string { return fmt.Sprintf("[%d-%d]", b.Start, b.End) }

func (b TextBlock) less(o TextBlock) bool {
	if b.Start != o.Start {
		return b.Start < o.Start
	}
	return b.End < o.End
}

// DetailedTextBlock is an original block with an id unique within its file.
type DetailedTextBlock struct {
	ID int
	TextBlock
}

// Kind distinguishes where a duplicate lives.
type Kind int

const (
	// KindInner is a copy in the same file as the original.
	KindInner Kind = iota + 1
	// KindInProject is a copy in another file of the analysed project.
	KindInProject
	// KindCrossProject is a copy in a file of another project.
	KindCrossProject
)

func (k Kind) String() string {
	switch k {
	case KindInner:
		return "inner"
	case KindInProject:
		return "in-project"
	case KindCrossProject:
		return "cross-project"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Duplicate is one copy of an original block.
type Duplicate struct {
	kind      Kind
	block     TextBlock
	component *component.Component
	fileKey   string
}

func InnerDuplicate(block TextBlock) Duplicate {
	return Duplicate{kind: KindInner, block: block}
}

// InProjectDuplicate panics unless c is a file.
func InProjectDuplicate(c *component.Component, block TextBlock) Duplicate {
	if c == nil || c.Type() != component.TypeFile {
		panic(fmt.Sprintf("duplication: in-project duplicate must reference a file, got %v", c))
	}
	return Duplicate{kind: KindInProject, block: block, component: c}
}

// CrossProjectDuplicate panics if fileKey is empty.
func CrossProjectDuplicate(fileKey string, block TextBlock) Duplicate {
	if fileKey == "" {
		panic("duplication: cross-project duplicate needs a file key")
	}
	return Duplicate{kind: KindCrossProject, block: block, fileKey: fileKey}
}

func (d Duplicate) Kind() Kind { return d.kind }

func (d Duplicate) TextBlock() TextBlock { return d.block }

// Component is the file holding an in-project duplicate, nil for other kinds.
func (d Duplicate) Component() *component.Component { return d.component }

// FileKey is the key of the file holding a cross-project duplicate, "" for other kinds.
func (d Duplicate) FileKey() string { return d.fileKey }

func (d Duplicate) String() string {
	switch d.kind {
	case KindInProject:
		return fmt.Sprintf("%s%s@%s", d.kind, d.block, d.component.Key())
	case KindCrossProject:
		return fmt.Sprintf("%s%s@%s", d.kind, d.block, d.fileKey)
	}
	return fmt.Sprintf("%s%s", d.kind, d.block)
}

// less orders inner duplicates first, then in-project by file key, then cross-project by file key.
func (d Duplicate) less(o Duplicate) bool {
	if d.kind != o.kind {
		return d.kind < o.kind
	}
	dk, ok := d.fileKey, o.fileKey
	if d.kind == KindInProject {
		dk, ok = d.component.Key(), o.component.Key()
	}
	if dk != ok {
		return dk < ok
	}
	return d.block.less(o.block)
}

// Duplication is an original block and its copies.
type Duplication struct {
	original   DetailedTextBlock
	duplicates []Duplicate
}

// New builds a Duplication. Duplicates are ordered inner first, then
// in-project, then cross-project, without repeats. It panics if duplicates is empty.
func New(original DetailedTextBlock, duplicates []Duplicate) Duplication {
	if len(duplicates) == 0 {
		panic(fmt.Sprintf("duplication: original %s has no duplicate", original.TextBlock))
	}
	sorted := append([]Duplicate(nil), duplicates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })

	// Equal copies collapse into one.
	unique := sorted[:1]
	for _, dup := range sorted[1:] {
		if unique[len(unique)-1].less(dup) {
			unique = append(unique, dup)
		}
	}
	return Duplication{original: original, duplicates: unique}
}

func (d Duplication) Original() DetailedTextBlock { return d.original }

// Duplicates returns the copies. The slice must not be modified.
func (d Duplication) Duplicates() []Duplicate { return d.duplicates }
