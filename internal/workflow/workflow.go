package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Step is a single named stage of a workflow.
type Step struct {
	Name    string
	Execute func(ctx context.Context) error
}

// StepError reports which step stopped a workflow.
type StepError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow '%s' failed at step '%s': %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Workflow runs its steps strictly in the order they were added. A step
// starts only after the previous one returned, and the first error stops
// the run.
type Workflow struct {
	name   string
	steps  []Step
	tracer trace.Tracer
	logger *zap.Logger
}

// New creates a new workflow.
func New(name string, logger *zap.Logger) *Workflow {
	return &Workflow{
		name:   name,
		steps:  make([]Step, 0, 4),
		tracer: otel.Tracer("workflow"),
		logger: logger,
	}
}

// AddStep appends a step to the workflow.
func (w *Workflow) AddStep(step Step) {
	w.steps = append(w.steps, step)
}

// Execute runs all steps in order, each inside its own span.
func (w *Workflow) Execute(ctx context.Context) error {
	start := time.Now()

	for _, step := range w.steps {
		w.logger.Debug("executing workflow step",
			zap.String("workflow", w.name),
			zap.String("step", step.Name),
		)

		if err := w.run(ctx, step); err != nil {
			w.logger.Debug("workflow step failed",
				zap.String("workflow", w.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return &StepError{Workflow: w.name, Step: step.Name, Err: err}
		}
	}

	w.logger.Debug("workflow completed",
		zap.String("workflow", w.name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (w *Workflow) run(ctx context.Context, step Step) error {
	ctx, span := w.tracer.Start(ctx, w.name+"."+step.Name)
	defer span.End()

	if err := step.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
