package engine

import "time"

// ProgressReporter is notified as the pipeline runs.
type ProgressReporter interface {
	// OnPipelineStart is called once with the number of steps.
	OnPipelineStart(totalSteps int)

	// OnStepStart is called before each step.
	OnStepStart(name string)

	// OnStepComplete is called after each successful step.
	OnStepComplete(name string, duration time.Duration)

	// OnPipelineComplete is called when every step succeeded.
	OnPipelineComplete(duration time.Duration)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnPipelineStart(totalSteps int)                     {}
func (n *NoOpProgressReporter) OnStepStart(name string)                            {}
func (n *NoOpProgressReporter) OnStepComplete(name string, duration time.Duration) {}
func (n *NoOpProgressReporter) OnPipelineComplete(duration time.Duration)          {}
