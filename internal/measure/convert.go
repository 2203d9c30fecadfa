package measure

import (
	"github.com/mvp-joe/project-gauge/internal/metric"
	"github.com/mvp-joe/project-gauge/internal/report"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

// ValueTypeOf returns the measure tag used for values of a metric type.
func ValueTypeOf(t metric.Type) ValueType {
	switch t {
	case metric.TypeInt, metric.TypeRating:
		return ValueInt
	case metric.TypeLong, metric.TypeMillisec, metric.TypeWorkDuration:
		return ValueLong
	case metric.TypeFloat, metric.TypePercent:
		return ValueDouble
	case metric.TypeBool:
		return ValueBoolean
	case metric.TypeString, metric.TypeData, metric.TypeDistribution:
		return ValueString
	case metric.TypeLevel:
		return ValueLevel
	}
	return ValueNoValue
}

// FromReport converts a scanner measure. A missing value for the metric's
// type yields a NO_VALUE measure.
func FromReport(m *metric.Metric, rm report.Measure) Measure {
	b := NewBuilder()
	if rm.Variation != nil {
		b.Variation(*rm.Variation)
	}

	switch ValueTypeOf(m.Type) {
	case ValueInt:
		if rm.IntValue != nil {
			return b.CreateInt(*rm.IntValue)
		}
	case ValueLong:
		if rm.LongValue != nil {
			return b.CreateLong(*rm.LongValue)
		}
		if rm.IntValue != nil {
			return b.CreateLong(int64(*rm.IntValue))
		}
	case ValueDouble:
		if rm.DoubleValue != nil {
			return b.CreateDouble(*rm.DoubleValue)
		}
	case ValueBoolean:
		if rm.BooleanValue != nil {
			return b.CreateBool(*rm.BooleanValue)
		}
	case ValueString:
		if rm.StringValue != nil {
			return b.CreateString(*rm.StringValue)
		}
	case ValueLevel:
		if rm.StringValue != nil {
			if level, err := ParseLevel(*rm.StringValue); err == nil {
				return b.CreateLevel(level)
			}
		}
	}
	return b.CreateNoValue()
}

// FromRecord converts a persisted measure.
func FromRecord(m *metric.Metric, rec *storage.MeasureRecord) Measure {
	b := NewBuilder()
	switch {
	case rec.RuleID != nil:
		b.ForRule(*rec.RuleID)
	case rec.CharacteristicID != nil:
		b.ForCharacteristic(*rec.CharacteristicID)
	case rec.Developer != nil:
		b.ForDeveloper(*rec.Developer)
	}
	if rec.Variation != nil {
		b.Variation(*rec.Variation)
	}
	if rec.Data != nil {
		b.Data(*rec.Data)
	}
	if rec.AlertStatus != nil {
		if level, err := ParseLevel(*rec.AlertStatus); err == nil {
			text := ""
			if rec.AlertText != nil {
				text = *rec.AlertText
			}
			b.QualityGateStatus(QualityGateStatus{Level: level, Text: text})
		}
	}

	switch ValueTypeOf(m.Type) {
	case ValueInt:
		if rec.Value != nil {
			return b.CreateInt(int(*rec.Value))
		}
	case ValueLong:
		if rec.Value != nil {
			return b.CreateLong(int64(*rec.Value))
		}
	case ValueDouble:
		if rec.Value != nil {
			return b.CreateDouble(*rec.Value)
		}
	case ValueBoolean:
		if rec.Value != nil {
			return b.CreateBool(*rec.Value == 1.0)
		}
	case ValueString:
		if rec.TextValue != nil {
			return b.CreateString(*rec.TextValue)
		}
	case ValueLevel:
		if rec.TextValue != nil {
			if level, err := ParseLevel(*rec.TextValue); err == nil {
				return b.CreateLevel(level)
			}
		}
	}
	return b.CreateNoValue()
}

// ToRecord converts a measure for persistence.
func ToRecord(componentUUID, analysisUUID string, m *metric.Metric, measure Measure) *storage.MeasureRecord {
	rec := &storage.MeasureRecord{
		ComponentUUID: componentUUID,
		AnalysisUUID:  analysisUUID,
		MetricID:      m.ID,
	}

	switch measure.ValueType() {
	case ValueInt, ValueLong, ValueDouble, ValueBoolean:
		v, _ := measure.NumericValue()
		rec.Value = &v
	case ValueString, ValueLevel:
		s := measure.FormattedValue()
		rec.TextValue = &s
	}

	if v, ok := measure.Variation(); ok {
		rec.Variation = &v
	}
	if data, ok := measure.Data(); ok {
		rec.Data = &data
	}
	if qg, ok := measure.QualityGateStatus(); ok {
		status := qg.Level.String()
		text := qg.Text
		rec.AlertStatus = &status
		rec.AlertText = &text
	}

	d := measure.Dimension()
	if id, ok := d.RuleID(); ok {
		rec.RuleID = &id
	}
	if id, ok := d.CharacteristicID(); ok {
		rec.CharacteristicID = &id
	}
	if dev, ok := d.Developer(); ok {
		rec.Developer = &dev
	}
	return rec
}
