package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

const dateLayout = "2006-01-02"

// SnapshotStore reads the analysis history of a root component.
type SnapshotStore interface {
	SelectSnapshots(componentUUID string) ([]*storage.Snapshot, error)
	// SelectVersionEvents returns Version events, most recent first.
	SelectVersionEvents(componentUUID string) ([]*storage.Event, error)
}

// Request describes the analysis a period is resolved for.
type Request struct {
	// Setting is the leak period definition. Empty means no period.
	Setting      string
	Root         *component.Component
	AnalysisDate time.Time
}

// Resolver selects the baseline analysis of a root component.
type Resolver struct {
	store  SnapshotStore
	logger hclog.Logger
}

// NewResolver creates a Resolver. A nil store means there is no history, so
// no period ever resolves.
func NewResolver(store SnapshotStore, logger hclog.Logger) *Resolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{store: store, logger: logger.Named("period")}
}

// Resolve interprets the setting, in order, as a date (yyyy-MM-dd), a number
// of days, the previous_version keyword, or a version label. It returns nil
// when no analysis matches.
func (r *Resolver) Resolve(req Request) (*Period, error) {
	setting := strings.TrimSpace(req.Setting)
	if setting == "" || req.Root == nil || req.Root.UUID() == "" || r.store == nil {
		return nil, nil
	}

	if date, err := time.ParseInLocation(dateLayout, setting, time.UTC); err == nil {
		return r.byDate(req, setting, date)
	}
	if days, err := strconv.Atoi(setting); err == nil {
		if days < 0 {
			return nil, fmt.Errorf("%w: %q days must not be negative", ErrInvalidLeakPeriod, setting)
		}
		return r.byDays(req, setting, days)
	}
	if setting == string(ModePreviousVersion) {
		if req.Root.Type().IsViewsType() {
			return nil, nil
		}
		return r.byPreviousVersion(req)
	}
	return r.byVersion(req, setting)
}

// processed returns the processed analyses not newer than the analysis
// being computed, oldest first.
func (r *Resolver) processed(req Request) ([]*storage.Snapshot, error) {
	all, err := r.store.SelectSnapshots(req.Root.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to load analyses of %s: %w", req.Root.Key(), err)
	}
	limit := req.AnalysisDate.UnixMilli()
	out := make([]*storage.Snapshot, 0, len(all))
	for _, s := range all {
		if !s.IsProcessed() {
			continue
		}
		if !req.AnalysisDate.IsZero() && s.CreatedAt > limit {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// nearestAfter returns the oldest analysis created at or after the date.
func (r *Resolver) nearestAfter(req Request, date time.Time) (*storage.Snapshot, error) {
	snapshots, err := r.processed(req)
	if err != nil {
		return nil, err
	}
	from := date.UnixMilli()
	var best *storage.Snapshot
	for _, s := range snapshots {
		if s.CreatedAt < from {
			continue
		}
		if best == nil || s.CreatedAt < best.CreatedAt {
			best = s
		}
	}
	return best, nil
}

func (r *Resolver) byDate(req Request, setting string, date time.Time) (*Period, error) {
	s, err := r.nearestAfter(req, date)
	if err != nil || s == nil {
		return nil, err
	}
	r.logger.Debug(fmt.Sprintf("Compare to date %s (analysis of %s)", setting, formatMillis(s.CreatedAt)))
	return newPeriod(ModeDate, &setting, s), nil
}

func (r *Resolver) byDays(req Request, setting string, days int) (*Period, error) {
	target := req.AnalysisDate.AddDate(0, 0, -days)
	s, err := r.nearestAfter(req, target)
	if err != nil || s == nil {
		return nil, err
	}
	r.logger.Debug(fmt.Sprintf("Compare over %d days (%s, analysis of %s)", days, target.UTC().Format(dateLayout), formatMillis(s.CreatedAt)))
	return newPeriod(ModeDays, &setting, s), nil
}

// byPreviousVersion skips the event of the current version when it is the
// most recent one. Without usable version history the first analysis is the
// baseline.
func (r *Resolver) byPreviousVersion(req Request) (*Period, error) {
	events, err := r.store.SelectVersionEvents(req.Root.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to load version events of %s: %w", req.Root.Key(), err)
	}
	snapshots, err := r.processed(req)
	if err != nil {
		return nil, err
	}
	byUUID := make(map[string]*storage.Snapshot, len(snapshots))
	for _, s := range snapshots {
		byUUID[s.UUID] = s
	}

	// Events of unprocessed analyses are ignored.
	usable := make([]*storage.Event, 0, len(events))
	for _, e := range events {
		if _, ok := byUUID[e.AnalysisUUID]; ok {
			usable = append(usable, e)
		}
	}

	var previous *storage.Event
	switch {
	case len(usable) == 0:
	case usable[0].Name != req.Root.Version():
		previous = usable[0]
	case len(usable) > 1:
		previous = usable[1]
	}

	if previous == nil {
		if len(snapshots) == 0 {
			return nil, nil
		}
		first := snapshots[0]
		r.logger.Debug(fmt.Sprintf("Compare to first analysis (%s)", formatMillis(first.CreatedAt)))
		return newPeriod(ModePreviousVersion, nil, first), nil
	}

	s := byUUID[previous.AnalysisUUID]
	name := previous.Name
	r.logger.Debug(fmt.Sprintf("Compare to previous version (%s, analysis of %s)", name, formatMillis(s.CreatedAt)))
	return newPeriod(ModePreviousVersion, &name, s), nil
}

func (r *Resolver) byVersion(req Request, version string) (*Period, error) {
	events, err := r.store.SelectVersionEvents(req.Root.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to load version events of %s: %w", req.Root.Key(), err)
	}
	snapshots, err := r.processed(req)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		if e.Name != version {
			continue
		}
		for _, s := range snapshots {
			if s.UUID == e.AnalysisUUID {
				r.logger.Debug(fmt.Sprintf("Compare to version (%s) (%s)", version, formatMillis(s.CreatedAt)))
				return newPeriod(ModeVersion, &version, s), nil
			}
		}
	}
	return nil, nil
}

func newPeriod(mode Mode, param *string, s *storage.Snapshot) *Period {
	return &Period{
		Mode:          mode,
		ModeParameter: param,
		SnapshotDate:  s.CreatedAt,
		AnalysisUUID:  s.UUID,
	}
}
