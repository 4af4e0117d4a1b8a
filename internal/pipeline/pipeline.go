package pipeline

import (
	"context"
	"log/slog"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one receiving the dashboard built so far.
type Step interface {
	// Do executes the step. An error stops the render unless the pipeline
	// was built WithContinueOnError.
	Do(ctx context.Context, d *Dashboard) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after a step fails. The first error is still recorded in the dashboard.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence against d.
// Cancellation is checked before each step.
//
// It returns the first error when continueOnError is false. The error is
// also stored in d.Err.
func (p *Pipeline) Execute(ctx context.Context, d *Dashboard) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("render cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			if d.Err == nil {
				d.Err = ctx.Err()
			}
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", d.Source,
		)

		if err := step.Do(ctx, d); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", d.Source,
				"error", err,
			)
			if d.Err == nil {
				d.Err = err
			}
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"source", d.Source,
			)
		}

		d.PerformedSteps = append(d.PerformedSteps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
