package storage

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.

// Snapshot status values stored in snapshots.status.
const (
	SnapshotStatusProcessed   = "P"
	SnapshotStatusUnprocessed = "U"
)

// EventCategoryVersion is the category of events recording a project version.
const EventCategoryVersion = "Version"

// Component represents a persisted component identity.
// Maps to the components table.
type Component struct {
	UUID     string // uuid: stable identity across analyses
	Key      string // kee: unique component key
	Name     string // name: display name
	Type     string // qualifier: PROJECT, MODULE, DIRECTORY, FILE, VIEW, ...
	Path     string // path: relative path (directories and files only)
	RootUUID string // root_uuid: uuid of the analysed project or view
}

// Snapshot represents one analysis of a root component.
// Maps to the snapshots table.
type Snapshot struct {
	UUID          string  // uuid: analysis uuid
	ComponentUUID string  // component_uuid: FK to components
	CreatedAt     int64   // created_at: analysis date in epoch millis
	Version       *string // version: project version (nullable)
	Status        string  // status: P (processed) or U (unprocessed)
	IsLast        bool    // islast: most recent processed analysis
}

// IsProcessed reports whether the analysis finished successfully.
func (s *Snapshot) IsProcessed() bool {
	return s.Status == SnapshotStatusProcessed
}

// Event represents an event attached to an analysis, such as a version change.
// Maps to the events table.
type Event struct {
	UUID          string // uuid
	AnalysisUUID  string // analysis_uuid: FK to snapshots
	ComponentUUID string // component_uuid: FK to components
	Name          string // name: version label for Version events
	Category      string // category: Version, Alert, ...
	Date          int64  // event_date: epoch millis
}

// MeasureRecord represents a persisted measure.
// Maps to the project_measures table.
type MeasureRecord struct {
	ID               int64    // id: autoincrement
	ComponentUUID    string   // component_uuid: FK to components
	AnalysisUUID     string   // analysis_uuid: FK to snapshots
	MetricID         int      // metric_id: FK to metrics
	Value            *float64 // value: numeric value (nullable)
	TextValue        *string  // text_value: string and level values (nullable)
	Variation        *float64 // variation_value_1: delta against the leak period (nullable)
	AlertStatus      *string  // alert_status: OK, WARN, ERROR (nullable)
	AlertText        *string  // alert_text (nullable)
	RuleID           *int     // rule_id (nullable)
	CharacteristicID *int     // characteristic_id (nullable)
	Developer        *string  // developer (nullable)
	Data             *string  // measure_data (nullable)
}

// AnalysisProperty represents a scanner context property recorded with an analysis.
// Maps to the analysis_properties table.
type AnalysisProperty struct {
	UUID         string // uuid
	AnalysisUUID string // analysis_uuid: FK to snapshots
	Key          string // kee
	Value        string // value
	CreatedAt    int64  // created_at: epoch millis
}
