package measure

import (
	"github.com/hashicorp/go-hclog"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/metric"
)

// VariationComputer sets the leak period variation of numeric raw measures.
type VariationComputer struct {
	repo    Repository
	metrics metric.Repository
	logger  hclog.Logger
}

// NewVariationComputer creates a VariationComputer.
func NewVariationComputer(repo Repository, metrics metric.Repository, logger hclog.Logger) *VariationComputer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &VariationComputer{repo: repo, metrics: metrics, logger: logger}
}

// Compute walks the tree and sets, on every eligible raw measure without a
// variation, the difference with the measure persisted by the analysis
// analysisUUID. Components or measures absent from that analysis get their
// whole value as variation. It returns the number of updated measures.
func (v *VariationComputer) Compute(tree *component.Tree, analysisUUID string) (int, error) {
	updated := 0
	err := tree.Walk(component.PreOrder, func(c *component.Component) error {
		for metricKey, measures := range v.repo.GetRawMeasuresByMetric(c) {
			m, err := v.metrics.ByKey(metricKey)
			if err != nil {
				continue
			}
			if !m.Type.IsNumeric() || m.DeveloperScoped {
				continue
			}
			for _, raw := range measures {
				ok, err := v.computeOne(c, m, raw, analysisUUID)
				if err != nil {
					return err
				}
				if ok {
					updated++
				}
			}
		}
		return nil
	})
	return updated, err
}

func (v *VariationComputer) computeOne(c *component.Component, m *metric.Metric, raw Measure, analysisUUID string) (bool, error) {
	if _, isDev := raw.Dimension().Developer(); isDev {
		return false, nil
	}
	if _, has := raw.Variation(); has {
		return false, nil
	}
	current, ok := raw.NumericValue()
	if !ok {
		return false, nil
	}

	base, found, err := v.repo.GetBaseMeasureAt(c, m, analysisUUID, raw.Dimension())
	if err != nil {
		return false, err
	}

	variation := current
	if found {
		if baseValue, ok := base.NumericValue(); ok {
			variation = current - baseValue
		}
	}

	if err := v.repo.Update(c, m, UpdateFrom(raw).Variation(variation).Create()); err != nil {
		return false, err
	}
	return true, nil
}
