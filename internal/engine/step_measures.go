package engine

import (
	"context"
	"fmt"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/duplication"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/period"
	"github.com/mvp-joe/project-gauge/internal/qualitygate"
	"github.com/mvp-joe/project-gauge/internal/report"
)

// LoadPeriodStep resolves the leak period. The report's sonar.leak.period
// context property takes precedence over the configured one.
type LoadPeriodStep struct{}

func (s *LoadPeriodStep) Name() string { return "Load period" }

func (s *LoadPeriodStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}

	setting := pc.Settings.LeakPeriod
	if v, ok := report.Property(pc.Report, period.SettingKey); ok {
		setting = v
	}

	// A nil *SnapshotStore must not become a non-nil interface.
	var store period.SnapshotStore
	if pc.Stores.Snapshots != nil {
		store = pc.Stores.Snapshots
	}

	p, err := period.NewResolver(store, pc.Logger).Resolve(period.Request{
		Setting:      setting,
		Root:         tree.Root(),
		AnalysisDate: pc.Report.Metadata().AnalysisDate,
	})
	if err != nil {
		return err
	}
	return pc.Period.Set(p)
}

// LoadDuplicationsStep loads the report's duplications of every file not
// excluded from duplication detection.
type LoadDuplicationsStep struct{}

func (s *LoadDuplicationsStep) Name() string { return "Load duplications" }

func (s *LoadDuplicationsStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	exclusions, err := duplication.NewExclusions(pc.Settings.DuplicationExclusions)
	if err != nil {
		return err
	}
	_, err = duplication.NewLoader(duplication.LoaderOptions{
		Reader:     pc.Report,
		Tree:       tree,
		Repository: pc.Duplications,
		Exclusions: exclusions,
		Workers:    pc.Settings.DuplicationWorkers,
		Logger:     pc.Logger,
	}).Load(ctx)
	return err
}

// additiveMetrics are summed from children when a component has no value of its own.
var additiveMetrics = []string{
	metric.KeyLines,
	metric.KeyNcloc,
	metric.KeyCommentLines,
	metric.KeyFiles,
	metric.KeyFunctions,
	metric.KeyClasses,
	metric.KeyNewLines,
}

// AggregateSizeMeasuresStep sums size metrics up the tree. Files count as one
// file each. Variations are summed only when every contributing child carries one.
type AggregateSizeMeasuresStep struct{}

func (s *AggregateSizeMeasuresStep) Name() string { return "Aggregate size measures" }

func (s *AggregateSizeMeasuresStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	for _, key := range additiveMetrics {
		m, err := pc.Metrics.ByKey(key)
		if err != nil {
			return err
		}
		if err := aggregate(tree, pc.Measures, m); err != nil {
			return err
		}
	}
	return nil
}

type sum struct {
	value        float64
	hasValue     bool
	variation    float64
	hasVariation bool
}

func aggregate(tree *component.Tree, measures measure.Repository, m *metric.Metric) error {
	sums := make(map[int]sum, tree.Size())
	return tree.Walk(component.PostOrder, func(c *component.Component) error {
		if raw, ok := measures.GetRawMeasure(c, m); ok {
			sums[c.Ref()] = sumOf(raw)
			return nil
		}

		var total sum
		if c.Type() == component.TypeFile {
			if m.Key != metric.KeyFiles {
				return nil
			}
			total = sum{value: 1, hasValue: true}
		} else {
			allHaveVariation := true
			for _, child := range c.Children() {
				cs, ok := sums[child.Ref()]
				if !ok || !cs.hasValue {
					continue
				}
				total.value += cs.value
				total.hasValue = true
				total.variation += cs.variation
				allHaveVariation = allHaveVariation && cs.hasVariation
			}
			if !total.hasValue {
				return nil
			}
			// A partial sum is wrong; leave it to the variation step.
			total.hasVariation = allHaveVariation
		}
		sums[c.Ref()] = total

		b := measure.NewBuilder()
		if total.hasVariation {
			b.Variation(total.variation)
		}
		var created measure.Measure
		switch measure.ValueTypeOf(m.Type) {
		case measure.ValueLong:
			created = b.CreateLong(int64(total.value))
		case measure.ValueDouble:
			created = b.CreateDouble(total.value)
		default:
			created = b.CreateInt(int(total.value))
		}
		return measures.Add(c, m, created)
	})
}

func sumOf(m measure.Measure) sum {
	var s sum
	s.value, s.hasValue = m.NumericValue()
	s.variation, s.hasVariation = m.Variation()
	return s
}

// DuplicationDataStep stores the duplications of each file as XML.
type DuplicationDataStep struct{}

func (s *DuplicationDataStep) Name() string { return "Duplication data" }

func (s *DuplicationDataStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	count, err := duplication.WriteData(tree, pc.Duplications, pc.Measures, pc.Metrics)
	if err != nil {
		return err
	}
	pc.Logger.Debug("duplication data written", "files", count)
	return nil
}

// DuplicationMeasuresStep computes the duplication counters and density.
type DuplicationMeasuresStep struct{}

func (s *DuplicationMeasuresStep) Name() string { return "Duplication measures" }

func (s *DuplicationMeasuresStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	mc, err := duplication.NewMeasureComputer(pc.Duplications, pc.Measures, pc.Metrics)
	if err != nil {
		return err
	}
	return mc.Compute(tree)
}

// ComputeVariationsStep sets variations against the leak period. Without a
// period it does nothing.
type ComputeVariationsStep struct{}

func (s *ComputeVariationsStep) Name() string { return "Compute variations" }

func (s *ComputeVariationsStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	p, err := pc.Period.Period()
	if err != nil {
		return err
	}
	if p == nil {
		pc.Logger.Debug("no leak period, variations skipped")
		return nil
	}
	updated, err := measure.NewVariationComputer(pc.Measures, pc.Metrics, pc.Logger).Compute(tree, p.AnalysisUUID)
	if err != nil {
		return err
	}
	pc.Logger.Debug("variations computed", "period", p.String(), "measures", updated)
	return nil
}

// QualityGateStep evaluates the configured conditions on the root component.
type QualityGateStep struct{}

func (s *QualityGateStep) Name() string { return "Quality gate" }

func (s *QualityGateStep) Execute(ctx context.Context, pc *Context) error {
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	conditions, err := ResolveConditions(pc.Metrics, pc.Settings.Conditions)
	if err != nil {
		return err
	}
	filter := qualitygate.NewSmallChangesetFilter(pc.Settings.NewCoverageMetrics, pc.Settings.SmallChangesetLines)
	status, err := qualitygate.NewEvaluator(conditions, filter, pc.Measures, pc.Metrics, pc.Logger).Apply(tree.Root())
	if err != nil {
		return err
	}
	pc.GateStatus = &status
	return nil
}

// ResolveConditions turns configured conditions into evaluable ones.
func ResolveConditions(metrics metric.Repository, settings []ConditionSetting) ([]qualitygate.Condition, error) {
	conditions := make([]qualitygate.Condition, 0, len(settings))
	for _, cs := range settings {
		m, err := metrics.ByKey(cs.Metric)
		if err != nil {
			return nil, fmt.Errorf("quality gate condition: %w", err)
		}
		op, err := qualitygate.ParseOperator(cs.Op)
		if err != nil {
			return nil, err
		}
		c, err := qualitygate.NewCondition(m, op, cs.Error, cs.Warning, cs.OnLeak)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	return conditions, nil
}
