// Package engine runs the computation steps of an analysis over a report.
package engine

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/duplication"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/period"
	"github.com/mvp-joe/project-gauge/internal/qualitygate"
	"github.com/mvp-joe/project-gauge/internal/report"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

// ErrTreeNotBuilt is returned by steps that need the component tree when it
// has not been built yet.
var ErrTreeNotBuilt = errors.New("component tree has not been built")

// ConditionSetting is a quality gate condition as configured, before its
// metric is resolved.
type ConditionSetting struct {
	Metric  string
	Op      string
	Error   string
	Warning string
	OnLeak  bool
}

// Settings are the analysis parameters that do not come from the report.
type Settings struct {
	// LeakPeriod is the default leak period; the report's sonar.leak.period
	// context property overrides it.
	LeakPeriod string

	DuplicationExclusions []string
	DuplicationWorkers    int

	Conditions          []ConditionSetting
	SmallChangesetLines int
	// NewCoverageMetrics lists the metrics relaxed on small changesets. Nil
	// uses the default new coverage family.
	NewCoverageMetrics []string
}

// Stores gives access to the analysis history. All fields may be nil, in which
// case there is no history and nothing is persisted.
type Stores struct {
	Components *storage.ComponentStore
	Snapshots  *storage.SnapshotStore
	Measures   *storage.MeasureStore
	Properties *storage.PropertyStore
}

// NewStores opens every store on the same database.
func NewStores(db *sql.DB) Stores {
	return Stores{
		Components: storage.NewComponentStore(db),
		Snapshots:  storage.NewSnapshotStore(db),
		Measures:   storage.NewMeasureStore(db),
		Properties: storage.NewPropertyStore(db),
	}
}

// Enabled reports whether every store is present.
func (s Stores) Enabled() bool {
	return s.Components != nil && s.Snapshots != nil && s.Measures != nil && s.Properties != nil
}

// Context carries the state shared by the steps of one analysis. It is owned
// by the Runner invocation and never shared between analyses.
type Context struct {
	AnalysisUUID string
	Report       report.Reader
	Metrics      metric.Repository
	Settings     Settings
	Stores       Stores
	Logger       hclog.Logger

	Tree         *component.Tree
	Measures     measure.Repository
	Duplications duplication.Repository
	Period       period.Holder
	GateStatus   *qualitygate.Status
}

// Options configures NewContext.
type Options struct {
	Report   report.Reader
	Metrics  metric.Repository
	Settings Settings
	Stores   Stores
	Logger   hclog.Logger
	// AnalysisUUID identifies the analysis. A random uuid is used when empty.
	AnalysisUUID string
}

// NewContext prepares the shared state of an analysis.
func NewContext(opts Options) (*Context, error) {
	if opts.Report == nil || opts.Metrics == nil {
		return nil, errors.New("engine: report and metrics are required")
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.AnalysisUUID == "" {
		opts.AnalysisUUID = uuid.New().String()
	}

	var baseStore measure.BaseMeasureStore
	if opts.Stores.Measures != nil {
		baseStore = opts.Stores.Measures
	}
	measures, err := measure.NewRepository(measure.Options{
		Reader:  opts.Report,
		Metrics: opts.Metrics,
		Store:   baseStore,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create measure repository: %w", err)
	}

	return &Context{
		AnalysisUUID: opts.AnalysisUUID,
		Report:       opts.Report,
		Metrics:      opts.Metrics,
		Settings:     opts.Settings,
		Stores:       opts.Stores,
		Logger:       opts.Logger,
		Measures:     measures,
		Duplications: duplication.NewRepository(),
	}, nil
}

func (c *Context) tree() (*component.Tree, error) {
	if c.Tree == nil {
		return nil, ErrTreeNotBuilt
	}
	return c.Tree, nil
}
