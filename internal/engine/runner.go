package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Step is one stage of the computation. Steps run one at a time in a fixed
// order and communicate only through the Context.
type Step interface {
	Name() string
	Execute(ctx context.Context, pc *Context) error
}

// StepError reports which step failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %q failed: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes steps sequentially. The first failing step aborts the run.
type Runner struct {
	steps    []Step
	progress ProgressReporter
	logger   hclog.Logger
}

// NewRunner creates a Runner. A nil progress reporter disables reporting.
func NewRunner(steps []Step, progress ProgressReporter, logger hclog.Logger) *Runner {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{steps: steps, progress: progress, logger: logger.Named("engine")}
}

// Run executes every step against pc. Cancellation is checked between steps.
func (r *Runner) Run(ctx context.Context, pc *Context) error {
	start := time.Now()
	r.progress.OnPipelineStart(len(r.steps))

	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.progress.OnStepStart(step.Name())
		stepStart := time.Now()
		if err := step.Execute(ctx, pc); err != nil {
			return &StepError{Step: step.Name(), Err: err}
		}
		elapsed := time.Since(stepStart)
		r.logger.Debug("step complete", "step", step.Name(), "duration", elapsed)
		r.progress.OnStepComplete(step.Name(), elapsed)
	}

	r.progress.OnPipelineComplete(time.Since(start))
	return nil
}

// DefaultSteps returns the steps of a full analysis in execution order.
func DefaultSteps() []Step {
	return []Step{
		&BuildComponentTreeStep{},
		&LoadPeriodStep{},
		&LoadDuplicationsStep{},
		&AggregateSizeMeasuresStep{},
		&DuplicationDataStep{},
		&DuplicationMeasuresStep{},
		&ComputeVariationsStep{},
		&QualityGateStep{},
		&PersistComponentsStep{},
		&PersistAnalysisStep{},
		&PersistMeasuresStep{},
		&PersistAnalysisPropertiesStep{},
		&EnableAnalysisStep{},
	}
}
