package qualitygate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mvp-joe/project-gauge/internal/component"
	"github.com/mvp-joe/project-gauge/internal/measure"
	"github.com/mvp-joe/project-gauge/internal/metric"
)

// Status is the outcome of a quality gate on a component.
type Status struct {
	Level   measure.Level
	Results []Result
	// IgnoredConditions is set when the small changeset rule downgraded a result.
	IgnoredConditions bool
}

// Text lists the failing conditions, worst first.
func (s Status) Text() string {
	var parts []string
	for _, level := range []measure.Level{measure.LevelError, measure.LevelWarn} {
		for _, r := range s.Results {
			if r.Level == level {
				parts = append(parts, alertText(r))
			}
		}
	}
	return strings.Join(parts, ", ")
}

func alertText(r Result) string {
	c := r.Condition
	threshold := c.ErrorThreshold
	if r.Level == measure.LevelWarn {
		threshold = c.WarningThreshold
	}
	name := c.Metric.Name
	if c.OnLeak {
		name += " since leak period"
	}
	return fmt.Sprintf("%s %s %s", name, operatorSymbol(c.Operator), threshold)
}

func operatorSymbol(o Operator) string {
	switch o {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "!="
	case OpGreaterThan:
		return ">"
	case OpLessThan:
		return "<"
	}
	return string(o)
}

// Evaluator runs a quality gate on the root of an analysis and records its
// outcome as measures.
type Evaluator struct {
	conditions []Condition
	filter     *SmallChangesetFilter
	measures   measure.Repository
	metrics    metric.Repository
	logger     hclog.Logger
}

// NewEvaluator creates an Evaluator. A nil filter disables the small changeset rule.
func NewEvaluator(conditions []Condition, filter *SmallChangesetFilter, measures measure.Repository, metrics metric.Repository, logger hclog.Logger) *Evaluator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Evaluator{
		conditions: conditions,
		filter:     filter,
		measures:   measures,
		metrics:    metrics,
		logger:     logger.Named("qualitygate"),
	}
}

// Evaluate computes the gate status of a component without recording it.
func (e *Evaluator) Evaluate(c *component.Component) (Status, error) {
	results := make([]Result, 0, len(e.conditions))
	for _, cond := range e.conditions {
		var m *measure.Measure
		if raw, ok := e.measures.GetRawMeasure(c, cond.Metric); ok {
			m = &raw
		}
		results = append(results, Evaluate(cond, m))
	}

	status := Status{Level: measure.LevelOK}
	if e.filter != nil {
		newLinesMetric, err := e.metrics.ByKey(metric.KeyNewLines)
		if err != nil {
			return Status{}, err
		}
		var newLines *measure.Measure
		if raw, ok := e.measures.GetRawMeasure(c, newLinesMetric); ok {
			newLines = &raw
		}
		results, status.IgnoredConditions = e.filter.Filter(results, newLines)
	}

	status.Results = results
	for _, r := range results {
		if r.Level > status.Level {
			status.Level = r.Level
		}
	}
	return status, nil
}

// Apply evaluates the gate on the component and records alert_status,
// quality_gate_details, and the status of every measure a condition applies to.
// Without conditions nothing is recorded.
func (e *Evaluator) Apply(c *component.Component) (Status, error) {
	if len(e.conditions) == 0 {
		return Status{Level: measure.LevelOK}, nil
	}

	status, err := e.Evaluate(c)
	if err != nil {
		return Status{}, err
	}

	if err := e.updateConditionMeasures(c, status.Results); err != nil {
		return Status{}, err
	}

	alertMetric, err := e.metrics.ByKey(metric.KeyAlertStatus)
	if err != nil {
		return Status{}, err
	}
	alert := measure.NewBuilder().
		QualityGateStatus(measure.QualityGateStatus{Level: status.Level, Text: status.Text()}).
		CreateLevel(status.Level)
	if err := e.measures.Add(c, alertMetric, alert); err != nil {
		return Status{}, err
	}

	detailsMetric, err := e.metrics.ByKey(metric.KeyQualityGateDetails)
	if err != nil {
		return Status{}, err
	}
	details, err := Details(status)
	if err != nil {
		return Status{}, err
	}
	if err := e.measures.Add(c, detailsMetric, measure.NewBuilder().CreateString(details)); err != nil {
		return Status{}, err
	}

	e.logger.Debug("quality gate evaluated", "component", c.Key(), "level", status.Level, "conditions", len(status.Results), "ignored_conditions", status.IgnoredConditions)
	return status, nil
}

// updateConditionMeasures attaches the worst result of each metric to its measure.
func (e *Evaluator) updateConditionMeasures(c *component.Component, results []Result) error {
	worst := make(map[string]Status)
	var order []*metric.Metric
	for _, r := range results {
		key := r.Condition.Metric.Key
		s, seen := worst[key]
		if !seen {
			order = append(order, r.Condition.Metric)
			s.Level = measure.LevelOK
		}
		s.Results = append(s.Results, r)
		if r.Level > s.Level {
			s.Level = r.Level
		}
		worst[key] = s
	}

	for _, m := range order {
		raw, ok := e.measures.GetRawMeasure(c, m)
		if !ok {
			continue
		}
		if _, set := raw.QualityGateStatus(); set {
			continue
		}
		s := worst[m.Key]
		updated := measure.UpdateFrom(raw).
			QualityGateStatus(measure.QualityGateStatus{Level: s.Level, Text: s.Text()}).
			Create()
		if err := e.measures.Update(c, m, updated); err != nil {
			return err
		}
	}
	return nil
}

type conditionDetails struct {
	Metric  string `json:"metric"`
	Op      string `json:"op"`
	Error   string `json:"error"`
	Warning string `json:"warning,omitempty"`
	Period  *int   `json:"period,omitempty"`
	Actual  string `json:"actual,omitempty"`
	Level   string `json:"level"`
}

type gateDetails struct {
	Level             string             `json:"level"`
	Conditions        []conditionDetails `json:"conditions"`
	IgnoredConditions bool               `json:"ignoredConditions"`
}

// Details renders a status as the JSON stored in quality_gate_details.
func Details(s Status) (string, error) {
	d := gateDetails{
		Level:             s.Level.String(),
		Conditions:        make([]conditionDetails, 0, len(s.Results)),
		IgnoredConditions: s.IgnoredConditions,
	}
	for _, r := range s.Results {
		cd := conditionDetails{
			Metric:  r.Condition.Metric.Key,
			Op:      string(r.Condition.Operator),
			Error:   r.Condition.ErrorThreshold,
			Warning: r.Condition.WarningThreshold,
			Level:   r.Level.String(),
		}
		if r.Condition.OnLeak {
			period := 1
			cd.Period = &period
		}
		if r.Value != nil {
			cd.Actual = *r.Value
		}
		d.Conditions = append(d.Conditions, cd)
	}
	out, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to encode quality gate details: %w", err)
	}
	return string(out), nil
}
