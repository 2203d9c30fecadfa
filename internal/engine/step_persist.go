package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

func (c *Context) persistenceDisabled(step string) bool {
	if c.Stores.Enabled() {
		return false
	}
	c.Logger.Debug("no history database, step skipped", "step", step)
	return true
}

// PersistComponentsStep records every component of the tree.
type PersistComponentsStep struct{}

func (s *PersistComponentsStep) Name() string { return "Persist components" }

func (s *PersistComponentsStep) Execute(ctx context.Context, pc *Context) error {
	if pc.persistenceDisabled(s.Name()) {
		return nil
	}
	tree, err := pc.tree()
	if err != nil {
		return err
	}

	rootUUID := tree.Root().UUID()
	rows := make([]*storage.Component, 0, tree.Size())
	err = tree.Walk(component.PreOrder, func(c *component.Component) error {
		rows = append(rows, &storage.Component{
			UUID:     c.UUID(),
			Key:      c.Key(),
			Name:     c.Name(),
			Type:     c.Type().String(),
			Path:     c.Path(),
			RootUUID: rootUUID,
		})
		return nil
	})
	if err != nil {
		return err
	}
	return pc.Stores.Components.UpsertComponents(rows)
}

// PersistAnalysisStep records the analysis as unprocessed, plus a Version event
// when the root's version differs from the one of the last analysis.
type PersistAnalysisStep struct{}

func (s *PersistAnalysisStep) Name() string { return "Persist analysis" }

func (s *PersistAnalysisStep) Execute(ctx context.Context, pc *Context) error {
	if pc.persistenceDisabled(s.Name()) {
		return nil
	}
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	root := tree.Root()
	createdAt := pc.Report.Metadata().AnalysisDate.UnixMilli()

	last, err := pc.Stores.Snapshots.SelectLastSnapshot(root.UUID())
	if err != nil {
		return err
	}

	var version *string
	if v := root.Version(); v != "" {
		version = &v
	}
	err = pc.Stores.Snapshots.InsertSnapshot(&storage.Snapshot{
		UUID:          pc.AnalysisUUID,
		ComponentUUID: root.UUID(),
		CreatedAt:     createdAt,
		Version:       version,
		Status:        storage.SnapshotStatusUnprocessed,
	})
	if err != nil {
		return err
	}

	if version == nil || (last != nil && last.Version != nil && *last.Version == *version) {
		return nil
	}
	pc.Logger.Debug("new version", "component", root.Key(), "version", *version)
	return pc.Stores.Snapshots.InsertEvent(&storage.Event{
		UUID:          uuid.New().String(),
		AnalysisUUID:  pc.AnalysisUUID,
		ComponentUUID: root.UUID(),
		Name:          *version,
		Category:      storage.EventCategoryVersion,
		Date:          createdAt,
	})
}

// PersistMeasuresStep records every raw measure. NO_VALUE measures without a
// variation, data or quality gate status carry nothing and are skipped.
type PersistMeasuresStep struct{}

func (s *PersistMeasuresStep) Name() string { return "Persist measures" }

func (s *PersistMeasuresStep) Execute(ctx context.Context, pc *Context) error {
	if pc.persistenceDisabled(s.Name()) {
		return nil
	}
	tree, err := pc.tree()
	if err != nil {
		return err
	}

	var records []*storage.MeasureRecord
	err = tree.Walk(component.PreOrder, func(c *component.Component) error {
		byMetric := pc.Measures.GetRawMeasuresByMetric(c)
		keys := make([]string, 0, len(byMetric))
		for k := range byMetric {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			m, err := pc.Metrics.ByKey(key)
			if err != nil {
				continue
			}
			for _, raw := range byMetric[key] {
				if isEmpty(raw) {
					continue
				}
				records = append(records, measure.ToRecord(c.UUID(), pc.AnalysisUUID, m, raw))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := pc.Stores.Measures.InsertMeasures(records); err != nil {
		return err
	}
	pc.Logger.Debug("measures persisted", "count", len(records))
	return nil
}

func isEmpty(m measure.Measure) bool {
	if m.ValueType() != measure.ValueNoValue {
		return false
	}
	_, hasVariation := m.Variation()
	_, hasData := m.Data()
	_, hasStatus := m.QualityGateStatus()
	return !hasVariation && !hasData && !hasStatus
}

// PersistAnalysisPropertiesStep records the report's context properties.
type PersistAnalysisPropertiesStep struct{}

func (s *PersistAnalysisPropertiesStep) Name() string { return "Persist analysis properties" }

func (s *PersistAnalysisPropertiesStep) Execute(ctx context.Context, pc *Context) error {
	if pc.persistenceDisabled(s.Name()) {
		return nil
	}
	createdAt := pc.Report.Metadata().AnalysisDate.UnixMilli()
	props := pc.Report.ContextProperties()
	rows := make([]*storage.AnalysisProperty, 0, len(props))
	for _, p := range props {
		rows = append(rows, &storage.AnalysisProperty{
			UUID:         uuid.New().String(),
			AnalysisUUID: pc.AnalysisUUID,
			Key:          p.Key,
			Value:        p.Value,
			CreatedAt:    createdAt,
		})
	}
	return pc.Stores.Properties.InsertProperties(rows)
}

// EnableAnalysisStep marks the analysis processed and last, making it visible
// as a baseline to later analyses.
type EnableAnalysisStep struct{}

func (s *EnableAnalysisStep) Name() string { return "Enable analysis" }

func (s *EnableAnalysisStep) Execute(ctx context.Context, pc *Context) error {
	if pc.persistenceDisabled(s.Name()) {
		return nil
	}
	tree, err := pc.tree()
	if err != nil {
		return err
	}
	return pc.Stores.Snapshots.MarkProcessedAndLast(tree.Root().UUID(), pc.AnalysisUUID)
}
