package duplication

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/project-gauge/internal/component"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Exclusions decides which files are left out of duplication detection.
// A nil *Exclusions excludes nothing.
type Exclusions struct {
	patterns []compiledPattern
}

// NewExclusions compiles the given glob patterns. Patterns use '/' as separator,
// so "**" spans directories and "*" stays within one.
func NewExclusions(patterns []string) (*Exclusions, error) {
	e := &Exclusions{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid duplication exclusion %q: %w", pattern, err)
		}
		e.patterns = append(e.patterns, compiledPattern{pattern: pattern, glob: g})
	}
	return e, nil
}

// Excludes reports whether a file matches any exclusion. Files are matched on
// their path, or on their key when they have no path.
func (e *Exclusions) Excludes(file *component.Component) bool {
	if e == nil || len(e.patterns) == 0 {
		return false
	}
	target := file.Path()
	if target == "" {
		target = file.Key()
	}
	target = strings.ReplaceAll(target, "\\", "/")
	for _, p := range e.patterns {
		if p.glob.Match(target) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (e *Exclusions) Patterns() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.patterns))
	for i, p := range e.patterns {
		out[i] = p.pattern
	}
	return out
}
