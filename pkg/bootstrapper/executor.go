package bootstrapper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
)

// Executor is a single provisioning step.
type Executor interface {
	// Execute runs the step to completion or returns a fatal error.
	Execute(ctx context.Context) error

	// GetName returns the step name for logging and reporting.
	GetName() string

	// IsCompleted reports whether the step's outcome is already in place, in
	// which case execution is skipped.
	IsCompleted(ctx context.Context) bool
}

// Validator is implemented by steps that can check preconditions before
// execution.
type Validator interface {
	Validate(ctx context.Context) error
}

// StepStatus describes the outcome of one step.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

// StepResult records the outcome of a single step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Err      error
}

// ExecutionResult summarizes a sequential run of steps.
type ExecutionResult struct {
	Operation string
	Steps     []StepResult
	Duration  time.Duration

	// SoftFailures collects non-fatal problems, such as the pod convergence
	// check expiring. They are reported but do not fail the run.
	SoftFailures []error
}

// Failed returns the first failed step result, if any.
func (r *ExecutionResult) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// BaseExecutor runs steps strictly sequentially, stopping at the first
// failure. There are no retries: every step is attempted exactly once.
type BaseExecutor struct {
	config *config.Config
	logger *logrus.Logger
}

// NewBaseExecutor creates a BaseExecutor.
func NewBaseExecutor(cfg *config.Config, logger *logrus.Logger) *BaseExecutor {
	return &BaseExecutor{
		config: cfg,
		logger: logger,
	}
}

// ExecuteSteps runs the given steps in order and returns the aggregated
// result. The returned error names the step that failed.
func (b *BaseExecutor) ExecuteSteps(ctx context.Context, steps []Executor, operation string) (*ExecutionResult, error) {
	result := &ExecutionResult{Operation: operation}
	started := time.Now()

	for _, step := range steps {
		stepStarted := time.Now()

		if step.IsCompleted(ctx) {
			b.logger.Infof("Skipping completed step: %s", step.GetName())
			result.Steps = append(result.Steps, StepResult{
				Name:   step.GetName(),
				Status: StepSkipped,
			})
			continue
		}

		b.logger.Infof("Executing step: %s", step.GetName())

		err := b.executeStep(ctx, step)
		stepResult := StepResult{
			Name:     step.GetName(),
			Duration: time.Since(stepStarted),
			Err:      err,
		}

		if err != nil {
			stepResult.Status = StepFailed
			result.Steps = append(result.Steps, stepResult)
			result.Duration = time.Since(started)
			return result, fmt.Errorf("%s step %q failed: %w", operation, step.GetName(), err)
		}

		stepResult.Status = StepCompleted
		result.Steps = append(result.Steps, stepResult)
		b.logger.Infof("Step %s completed in %v", step.GetName(), stepResult.Duration.Round(time.Millisecond))
	}

	result.Duration = time.Since(started)
	return result, nil
}

func (b *BaseExecutor) executeStep(ctx context.Context, step Executor) error {
	if validator, ok := step.(Validator); ok {
		if err := validator.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	return step.Execute(ctx)
}
