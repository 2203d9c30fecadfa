package measure

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/maypok86/otter"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/report"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

var (
	// ErrMeasureExists is returned when a raw measure is added twice for one key.
	ErrMeasureExists = errors.New("measure already exists")
	// ErrMeasureNotFound is returned when updating a measure that was never added.
	ErrMeasureNotFound = errors.New("measure not found")
	// ErrValueTypeMismatch is returned when a measure's value type contradicts its metric.
	ErrValueTypeMismatch = errors.New("measure value type does not match metric")
)

// BaseMeasureStore reads measures persisted by previous analyses.
type BaseMeasureStore interface {
	SelectLastMeasure(componentUUID string, metricID int) (*storage.MeasureRecord, error)
	SelectMeasure(componentUUID, analysisUUID string, metricID int, ruleID, characteristicID *int) (*storage.MeasureRecord, error)
}

// Repository holds the measures of one analysis.
//
// Raw measures are written once per (component, metric, dimension). Measures
// carried by the report act as a default layer below explicitly added ones.
// Every method panics when given a nil component or metric.
type Repository interface {
	// GetBaseMeasure returns the measure persisted with the last analysis of the component.
	GetBaseMeasure(c *component.Component, m *metric.Metric) (Measure, bool, error)
	// GetBaseMeasureAt returns the measure persisted with the given analysis.
	GetBaseMeasureAt(c *component.Component, m *metric.Metric, analysisUUID string, d Dimension) (Measure, bool, error)

	GetRawMeasure(c *component.Component, m *metric.Metric) (Measure, bool)
	GetRawMeasureFor(c *component.Component, m *metric.Metric, d Dimension) (Measure, bool)
	// GetRawMeasures returns every dimension of the metric for the component.
	GetRawMeasures(c *component.Component, m *metric.Metric) []Measure
	// GetRawMeasuresByMetric groups all raw measures of the component by metric key.
	GetRawMeasuresByMetric(c *component.Component) map[string][]Measure

	Add(c *component.Component, m *metric.Metric, measure Measure) error
	Update(c *component.Component, m *metric.Metric, measure Measure) error
}

type storeKey struct {
	ref int
	key Key
}

type baseEntry struct {
	measure Measure
	found   bool
}

type repository struct {
	reader  report.Reader
	metrics metric.Repository
	store   BaseMeasureStore
	logger  hclog.Logger

	raw        *xsync.MapOf[storeKey, Measure]
	fromReport *xsync.MapOf[int, map[Key]Measure]
	base       otter.Cache[string, baseEntry]
}

// Options configures NewRepository. Store may be nil when no history is available.
type Options struct {
	Reader  report.Reader
	Metrics metric.Repository
	Store   BaseMeasureStore
	Logger  hclog.Logger
	// BaseCacheSize bounds the number of cached base measures.
	BaseCacheSize int
}

// NewRepository creates an empty measure repository for one analysis.
func NewRepository(opts Options) (Repository, error) {
	if opts.Reader == nil || opts.Metrics == nil {
		return nil, errors.New("measure repository: reader and metrics are required")
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.BaseCacheSize <= 0 {
		opts.BaseCacheSize = 10_000
	}

	cache, err := otter.MustBuilder[string, baseEntry](opts.BaseCacheSize).
		WithTTL(time.Hour).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create base measure cache: %w", err)
	}

	return &repository{
		reader:     opts.Reader,
		metrics:    opts.Metrics,
		store:      opts.Store,
		logger:     opts.Logger.Named("measures"),
		raw:        xsync.NewMapOf[storeKey, Measure](),
		fromReport: xsync.NewMapOf[int, map[Key]Measure](),
		base:       cache,
	}, nil
}

func checkArgs(c *component.Component, m *metric.Metric) {
	if c == nil {
		panic("measure repository: component can not be nil")
	}
	if m == nil {
		panic("measure repository: metric can not be nil")
	}
}

func (r *repository) GetBaseMeasure(c *component.Component, m *metric.Metric) (Measure, bool, error) {
	checkArgs(c, m)
	return r.loadBase(c, m, "", NoDimension)
}

func (r *repository) GetBaseMeasureAt(c *component.Component, m *metric.Metric, analysisUUID string, d Dimension) (Measure, bool, error) {
	checkArgs(c, m)
	if analysisUUID == "" {
		return Measure{}, false, errors.New("measure repository: analysis uuid can not be empty")
	}
	return r.loadBase(c, m, analysisUUID, d)
}

// loadBase reads through the cache. An empty analysisUUID means the analysis flagged last.
func (r *repository) loadBase(c *component.Component, m *metric.Metric, analysisUUID string, d Dimension) (Measure, bool, error) {
	if r.store == nil || c.UUID() == "" {
		return Measure{}, false, nil
	}
	if _, isDev := d.Developer(); isDev {
		return Measure{}, false, nil
	}

	cacheKey := fmt.Sprintf("%s|%s|%d|%s", c.UUID(), analysisUUID, m.ID, d)
	if entry, ok := r.base.Get(cacheKey); ok {
		return entry.measure, entry.found, nil
	}

	var (
		rec *storage.MeasureRecord
		err error
	)
	if analysisUUID == "" {
		rec, err = r.store.SelectLastMeasure(c.UUID(), m.ID)
	} else {
		var ruleID, characteristicID *int
		if id, ok := d.RuleID(); ok {
			ruleID = &id
		}
		if id, ok := d.CharacteristicID(); ok {
			characteristicID = &id
		}
		rec, err = r.store.SelectMeasure(c.UUID(), analysisUUID, m.ID, ruleID, characteristicID)
	}
	if err != nil {
		return Measure{}, false, fmt.Errorf("failed to load base measure %s of %s: %w", m.Key, c, err)
	}

	entry := baseEntry{}
	if rec != nil {
		entry = baseEntry{measure: FromRecord(m, rec), found: true}
	}
	r.base.Set(cacheKey, entry)
	return entry.measure, entry.found, nil
}

func (r *repository) GetRawMeasure(c *component.Component, m *metric.Metric) (Measure, bool) {
	return r.GetRawMeasureFor(c, m, NoDimension)
}

func (r *repository) GetRawMeasureFor(c *component.Component, m *metric.Metric, d Dimension) (Measure, bool) {
	checkArgs(c, m)
	key := Key{MetricKey: m.Key, Dimension: d}
	if measure, ok := r.raw.Load(storeKey{ref: c.Ref(), key: key}); ok {
		return measure, true
	}
	measure, ok := r.reportMeasures(c)[key]
	return measure, ok
}

func (r *repository) GetRawMeasures(c *component.Component, m *metric.Metric) []Measure {
	checkArgs(c, m)
	return r.GetRawMeasuresByMetric(c)[m.Key]
}

func (r *repository) GetRawMeasuresByMetric(c *component.Component) map[string][]Measure {
	if c == nil {
		panic("measure repository: component can not be nil")
	}

	merged := make(map[Key]Measure)
	for key, measure := range r.reportMeasures(c) {
		merged[key] = measure
	}
	r.raw.Range(func(k storeKey, measure Measure) bool {
		if k.ref == c.Ref() {
			merged[k.key] = measure
		}
		return true
	})

	result := make(map[string][]Measure)
	for key, measure := range merged {
		result[key.MetricKey] = append(result[key.MetricKey], measure)
	}
	return result
}

func (r *repository) Add(c *component.Component, m *metric.Metric, measure Measure) error {
	checkArgs(c, m)
	if err := checkValueType(m, measure); err != nil {
		return err
	}

	k := storeKey{ref: c.Ref(), key: KeyOf(m.Key, measure)}
	if _, loaded := r.raw.LoadOrStore(k, measure); loaded {
		return fmt.Errorf("%w: %s for %s, use Update to change it", ErrMeasureExists, k.key, c)
	}
	return nil
}

func (r *repository) Update(c *component.Component, m *metric.Metric, measure Measure) error {
	checkArgs(c, m)
	if err := checkValueType(m, measure); err != nil {
		return err
	}

	key := KeyOf(m.Key, measure)
	_, inReport := r.reportMeasures(c)[key]

	var missing bool
	r.raw.Compute(storeKey{ref: c.Ref(), key: key}, func(_ Measure, loaded bool) (Measure, bool) {
		if !loaded && !inReport {
			missing = true
			return Measure{}, true
		}
		return measure, false
	})
	if missing {
		return fmt.Errorf("%w: %s for %s, use Add to create it", ErrMeasureNotFound, key, c)
	}
	return nil
}

// reportMeasures converts and caches the report measures of c. Measures of
// unregistered metrics are dropped.
func (r *repository) reportMeasures(c *component.Component) map[Key]Measure {
	measures, _ := r.fromReport.LoadOrCompute(c.Ref(), func() map[Key]Measure {
		loaded := make(map[Key]Measure)
		for _, rm := range r.reader.Measures(c.Ref()) {
			m, err := r.metrics.ByKey(rm.MetricKey)
			if err != nil {
				r.logger.Debug("ignoring report measure of unknown metric", "metric", rm.MetricKey, "component", c.Key())
				continue
			}
			loaded[NewKey(m.Key)] = FromReport(m, rm)
		}
		return loaded
	})
	return measures
}

func checkValueType(m *metric.Metric, measure Measure) error {
	if measure.ValueType() == ValueNoValue {
		return nil
	}
	if want := ValueTypeOf(m.Type); measure.ValueType() != want {
		return fmt.Errorf("%w: metric %s expects %s, got %s", ErrValueTypeMismatch, m.Key, want, measure.ValueType())
	}
	return nil
}
