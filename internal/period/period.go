// Package period resolves the baseline analysis that variations are computed against.
package period

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Mode is the way a period was selected.
type Mode string

const (
	ModeDate            Mode = "date"
	ModeDays            Mode = "days"
	ModePreviousVersion Mode = "previous_version"
	ModeVersion         Mode = "version"
)

// SettingKey is the setting holding the leak period definition.
const SettingKey = "sonar.leak.period"

var (
	// ErrInvalidLeakPeriod is returned for a setting that can never resolve, such as a negative number of days.
	ErrInvalidLeakPeriod = errors.New("invalid leak period")
	// ErrPeriodAlreadySet is returned when a Holder is set twice.
	ErrPeriodAlreadySet = errors.New("period has already been set")
	// ErrPeriodNotSet is returned when a Holder is read before being set.
	ErrPeriodNotSet = errors.New("period has not been set yet")
)

// Period is the baseline analysis selected for an analysis.
type Period struct {
	Mode Mode
	// ModeParameter is the setting value that selected the period, or the
	// version label for previous_version. Nil when previous_version fell back
	// to the first analysis.
	ModeParameter *string
	SnapshotDate  int64 // epoch millis
	AnalysisUUID  string
}

func (p *Period) String() string {
	param := "<none>"
	if p.ModeParameter != nil {
		param = *p.ModeParameter
	}
	return fmt.Sprintf("%s(%s) analysis %s of %s", p.Mode, param, p.AnalysisUUID, formatMillis(p.SnapshotDate))
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// Holder stores the period of the running analysis. It is set exactly once;
// setting nil records that there is no period.
type Holder struct {
	mu     sync.RWMutex
	set    bool
	period *Period
}

func (h *Holder) Set(p *Period) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.set {
		return ErrPeriodAlreadySet
	}
	h.set = true
	h.period = p
	return nil
}

// Period returns the period, nil when there is none.
func (h *Holder) Period() (*Period, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.set {
		return nil, ErrPeriodNotSet
	}
	return h.period, nil
}

func (h *Holder) IsSet() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.set
}
