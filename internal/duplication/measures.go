package duplication

import (
	"fmt"
	"math"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
)

// WriteData adds a duplications_data measure holding the XML of every file
// with at least one duplication. Files without duplications get no measure.
func WriteData(tree *component.Tree, dups Repository, measures measure.Repository, metrics metric.Repository) (int, error) {
	dataMetric, err := metrics.ByKey(metric.KeyDuplicationsData)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, file := range tree.Files() {
		ds := dups.Get(file)
		if len(ds) == 0 {
			continue
		}
		m := measure.NewBuilder().CreateString(FormatXML(file, ds))
		if err := measures.Add(file, dataMetric, m); err != nil {
			return count, &component.VisitError{Component: file, Err: err}
		}
		count++
	}
	return count, nil
}

type counters struct {
	blocks int
	lines  int
	files  int
}

func (c *counters) add(o counters) {
	c.blocks += o.blocks
	c.lines += o.lines
	c.files += o.files
}

// fileCounters counts the original and every inner duplicate as one block
// each. Duplicated lines are the distinct lines covered by those blocks;
// blocks in other files do not count toward this file.
func fileCounters(ds []Duplication) counters {
	var c counters
	lines := make(map[int]struct{})
	addLines := func(b TextBlock) {
		for l := b.Start; l <= b.End; l++ {
			lines[l] = struct{}{}
		}
	}
	for _, d := range ds {
		c.blocks++
		addLines(d.Original().TextBlock)
		for _, dup := range d.Duplicates() {
			if dup.Kind() == KindInner {
				c.blocks++
				addLines(dup.TextBlock())
			}
		}
	}
	c.lines = len(lines)
	if c.blocks > 0 {
		c.files = 1
	}
	return c
}

// MeasureComputer computes duplicated_blocks, duplicated_lines,
// duplicated_files and duplicated_lines_density for every component.
type MeasureComputer struct {
	dups     Repository
	measures measure.Repository

	blocksMetric, linesMetric, filesMetric, densityMetric *metric.Metric
	linesSize, ncloc, commentLines                        *metric.Metric
}

func NewMeasureComputer(dups Repository, measures measure.Repository, metrics metric.Repository) (*MeasureComputer, error) {
	mc := &MeasureComputer{dups: dups, measures: measures}
	for key, dst := range map[string]**metric.Metric{
		metric.KeyDuplicatedBlocks:       &mc.blocksMetric,
		metric.KeyDuplicatedLines:        &mc.linesMetric,
		metric.KeyDuplicatedFiles:        &mc.filesMetric,
		metric.KeyDuplicatedLinesDensity: &mc.densityMetric,
		metric.KeyLines:                  &mc.linesSize,
		metric.KeyNcloc:                  &mc.ncloc,
		metric.KeyCommentLines:           &mc.commentLines,
	} {
		m, err := metrics.ByKey(key)
		if err != nil {
			return nil, fmt.Errorf("duplication measures: %w", err)
		}
		*dst = m
	}
	return mc, nil
}

// Compute walks the tree bottom-up. File counters come from the duplication
// repository, other components sum their children. Every component gets the
// three counters, zero included; density is only added when the component has
// a positive line count.
func (mc *MeasureComputer) Compute(tree *component.Tree) error {
	totals := make(map[int]counters, tree.Size())
	return tree.Walk(component.PostOrder, func(c *component.Component) error {
		var cs counters
		if c.Type() == component.TypeFile {
			cs = fileCounters(mc.dups.Get(c))
		} else {
			for _, child := range c.Children() {
				cs.add(totals[child.Ref()])
			}
		}
		totals[c.Ref()] = cs

		b := measure.NewBuilder()
		if err := mc.measures.Add(c, mc.blocksMetric, b.CreateInt(cs.blocks)); err != nil {
			return err
		}
		if err := mc.measures.Add(c, mc.linesMetric, b.CreateInt(cs.lines)); err != nil {
			return err
		}
		if err := mc.measures.Add(c, mc.filesMetric, b.CreateInt(cs.files)); err != nil {
			return err
		}

		if total, ok := mc.lineCount(c); ok && total > 0 {
			density := math.Min(100, float64(cs.lines)/total*100)
			if err := mc.measures.Add(c, mc.densityMetric, b.CreateDouble(density)); err != nil {
				return err
			}
		}
		return nil
	})
}

// lineCount prefers the lines measure and falls back to ncloc + comment_lines.
func (mc *MeasureComputer) lineCount(c *component.Component) (float64, bool) {
	if m, ok := mc.measures.GetRawMeasure(c, mc.linesSize); ok {
		if v, ok := m.NumericValue(); ok {
			return v, true
		}
	}
	m, ok := mc.measures.GetRawMeasure(c, mc.ncloc)
	if !ok {
		return 0, false
	}
	total, ok := m.NumericValue()
	if !ok {
		return 0, false
	}
	if cm, ok := mc.measures.GetRawMeasure(c, mc.commentLines); ok {
		if v, ok := cm.NumericValue(); ok {
			total += v
		}
	}
	return total, true
}
