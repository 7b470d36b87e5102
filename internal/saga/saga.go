// Package saga runs a fixed, ordered list of remote writes with explicit
// compensating actions, standing in for a transaction the store does not
// offer to clients.
//
// Steps run one after another. When a step fails, the compensations of the
// steps that already succeeded run once each in reverse order and the step
// error is returned. Compensation failures are logged and counted; they never
// replace the original error and are never retried.
//
// Once the first step has run, the rest of the saga (including compensation)
// runs on a context detached from the caller's cancellation, so a dropped
// request cannot strand a half-built aggregate.
package saga

import (
	"context"
	"fmt"

	"site-admin-backend/internal/logger"
	"site-admin-backend/internal/metrics"
)

// Func is one remote action or its compensation.
type Func func(ctx context.Context) error

type Step struct {
	Name       string
	Action     Func
	Compensate Func
}

// StepError reports which step failed.
type StepError struct {
	Saga string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type Runner struct {
	name  string
	log   *logger.Logger
	steps []Step
}

func New(name string, log *logger.Logger) *Runner {
	return &Runner{
		name: name,
		log:  logger.OrNop(log).With("saga", name),
	}
}

// Step appends a step. compensate may be nil when the step needs no undo,
// for example because a later compensation cascades over it.
func (r *Runner) Step(name string, action, compensate Func) *Runner {
	r.steps = append(r.steps, Step{Name: name, Action: action, Compensate: compensate})
	return r
}

// Steps returns the registered step names in order.
func (r *Runner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name
	}
	return names
}

func (r *Runner) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, step := range r.steps {
		err := step.Action(ctx)
		if i == 0 {
			ctx = context.WithoutCancel(ctx)
		}
		if err != nil {
			r.log.Warn("saga step failed", "step", step.Name, "err", err)
			r.compensate(ctx, i)
			metrics.SagaRunsTotal.WithLabelValues(r.name, "compensated").Inc()
			return &StepError{Saga: r.name, Step: step.Name, Err: err}
		}
	}

	metrics.SagaRunsTotal.WithLabelValues(r.name, "succeeded").Inc()
	return nil
}

// compensate undoes steps [0, failed) in reverse order.
func (r *Runner) compensate(ctx context.Context, failed int) {
	for j := failed - 1; j >= 0; j-- {
		step := r.steps[j]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			metrics.SagaCompensationsTotal.WithLabelValues(r.name, step.Name, "failed").Inc()
			r.log.Error("saga compensation failed", "step", step.Name, "err", err)
			continue
		}
		metrics.SagaCompensationsTotal.WithLabelValues(r.name, step.Name, "done").Inc()
		r.log.Info("saga step compensated", "step", step.Name)
	}
}
