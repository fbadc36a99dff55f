package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/or1un/mosaic/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// report from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the report to modify.
	// Returns an error if the step fails critically; non-critical errors
	// should be recorded in the report and return nil.
	Do(ctx context.Context, report *model.ProfileReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// ConcurrentStep marks a step as safe to run alongside its neighbors.
// Consecutive concurrent steps form a stage that Execute runs in
// parallel when step concurrency is enabled. A concurrent step must only
// touch its own slice of the report; shared report mutation goes through
// the report's synchronized methods.
type ConcurrentStep interface {
	Step

	// Concurrent reports whether the step may run in parallel with
	// adjacent concurrent steps.
	Concurrent() bool
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool

	// stepConcurrency limits how many concurrent steps of a stage run at
	// once. Values below 2 keep execution strictly sequential.
	stepConcurrency int
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and their errors
// are recorded in the report, but subsequent steps still execute.
//
// Design decision: This option exists because a failure on one platform
// (rate limit, missing credentials) shouldn't prevent collecting the
// remaining platforms. However, the default is to stop on error because
// early failures often indicate fundamental problems (e.g., no network).
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithStepConcurrency sets how many concurrent steps may run at once
// within a stage of adjacent ConcurrentStep steps. Platform collection
// steps are independent of each other, so running them in parallel
// shortens multi-platform runs without reordering the report.
func WithStepConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.stepConcurrency = n
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	// Apply options
	for _, opt := range opts {
		opt(p)
	}

	// Set default logger if not provided
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the pipeline steps, grouping consecutive ConcurrentStep
// steps into stages that run in parallel when step concurrency is
// enabled. Report bookkeeping always happens in declared step order, so
// PerformedCollections reads the same regardless of concurrency.
//
// Design decision: We check context.Done() before each stage rather than
// during, because steps should handle their own timeouts. This allows
// graceful cleanup between stages while still respecting cancellation.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded in report).
func (p *Pipeline) Execute(ctx context.Context, report *model.ProfileReport) error {
	for i := 0; i < len(p.steps); {
		// Check for cancellation before starting each stage
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", p.steps[i].Name(),
				"subject", report.Subject,
				"reason", ctx.Err(),
			)
			report.TimedOut = true
			return ctx.Err()
		default:
			// Continue with execution
		}

		size := p.stageSize(i)
		errs := p.runStage(ctx, report, i, size)

		for j := 0; j < size; j++ {
			step := p.steps[i+j]
			if err := errs[j]; err != nil {
				p.logger.Error("step failed",
					"step", step.Name(),
					"subject", report.Subject,
					"error", err,
				)

				// Record the error in the report
				report.Error = err
				report.ErrorMessage = err.Error()

				// Stop or continue based on configuration
				if !p.continueOnError {
					return err
				}
			} else {
				p.logger.Debug("step completed",
					"step", step.Name(),
					"subject", report.Subject,
				)
			}

			// Track which steps were performed
			report.PerformedCollections = append(report.PerformedCollections, step.Name())
		}

		i += size
	}

	return nil
}

// stageSize returns how many steps starting at index i run as one stage.
// With concurrency disabled, or for steps that are not concurrent, the
// stage is a single step.
func (p *Pipeline) stageSize(i int) int {
	if p.stepConcurrency < 2 {
		return 1
	}
	n := 0
	for i+n < len(p.steps) {
		cs, ok := p.steps[i+n].(ConcurrentStep)
		if !ok || !cs.Concurrent() {
			break
		}
		n++
	}
	if n < 2 {
		return 1
	}
	return n
}

// runStage executes size steps starting at index start and returns their
// errors in step order. Multi-step stages run under an errgroup bounded
// by the configured concurrency; errors are collected per step rather
// than short-circuiting, so bookkeeping can replay them in order.
func (p *Pipeline) runStage(ctx context.Context, report *model.ProfileReport, start, size int) []error {
	errs := make([]error, size)

	if size == 1 {
		step := p.steps[start]
		p.logger.Info("executing step",
			"step", step.Name(),
			"subject", report.Subject,
		)
		errs[0] = step.Do(ctx, report)
		return errs
	}

	var g errgroup.Group
	g.SetLimit(p.stepConcurrency)
	for j := 0; j < size; j++ {
		step := p.steps[start+j]
		idx := j
		p.logger.Info("executing step",
			"step", step.Name(),
			"subject", report.Subject,
		)
		g.Go(func() error {
			errs[idx] = step.Do(ctx, report)
			return nil
		})
	}
	_ = g.Wait()

	return errs
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
