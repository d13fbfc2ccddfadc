package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/logger"
)

// Status is the terminal state of a workflow run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is the mutable state of one workflow execution. Steps share data
// through it and append to its log.
type Run struct {
	ID         string
	Name       string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Data       map[string]any
	Logs       []LogEntry
	Err        error
}

type LogEntry struct {
	Time    time.Time
	Step    string
	Level   string
	Message string
}

// Result is what a step execution produces. Skip terminates the workflow
// early as a normal outcome; Err aborts it unless the step is optional.
type Result struct {
	Output  any
	Skip    bool
	Message string
	Err     error
}

// Step is one unit of a workflow. Execute receives the previous step's
// output as input. Retries are attempted with a linearly growing delay.
// Optional steps log their failure and pass their input through unchanged.
type Step struct {
	Name       string
	Execute    func(ctx context.Context, input any, run *Run) Result
	Retries    int
	RetryDelay time.Duration
	Optional   bool
}

// Definition is an ordered set of steps executed as one workflow.
type Definition struct {
	Name  string
	Steps []Step
}

// Engine executes workflow definitions.
type Engine struct {
	log zerolog.Logger
}

func NewEngine() *Engine {
	return &Engine{log: logger.With("workflow")}
}

// Execute runs all steps in order. The returned Run carries the final
// status; the error mirrors Run.Err for failed runs.
func (e *Engine) Execute(ctx context.Context, def Definition, input any) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Name:      def.Name,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
		Data:      make(map[string]any),
	}

	e.log.Info().Str("workflow", def.Name).Str("run_id", run.ID).Msg("Workflow started")

	current := input
	for _, step := range def.Steps {
		result := e.runStep(ctx, step, current, run)

		if result.Err != nil {
			if step.Optional {
				run.log(step.Name, "warn", fmt.Sprintf("optional step failed: %v", result.Err))
				e.log.Warn().Str("workflow", def.Name).Str("step", step.Name).
					Err(result.Err).Msg("Optional step failed, continuing")
				continue
			}
			run.Status = StatusFailed
			run.Err = fmt.Errorf("step %s: %w", step.Name, result.Err)
			run.FinishedAt = time.Now().UTC()
			e.log.Error().Str("workflow", def.Name).Str("step", step.Name).
				Err(result.Err).Msg("Workflow failed")
			return run, run.Err
		}

		if result.Skip {
			run.Status = StatusSkipped
			run.FinishedAt = time.Now().UTC()
			run.log(step.Name, "info", "workflow skipped: "+result.Message)
			e.log.Info().Str("workflow", def.Name).Str("step", step.Name).
				Str("reason", result.Message).Msg("Workflow skipped")
			return run, nil
		}

		if result.Output != nil {
			current = result.Output
		}
	}

	run.Status = StatusCompleted
	run.FinishedAt = time.Now().UTC()
	e.log.Info().Str("workflow", def.Name).Str("run_id", run.ID).
		Dur("duration", run.FinishedAt.Sub(run.StartedAt)).Msg("Workflow completed")
	return run, nil
}

func (e *Engine) runStep(ctx context.Context, step Step, input any, run *Run) Result {
	attempts := step.Retries + 1
	var result Result

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{Err: err}
		}

		result = e.attempt(ctx, step, input, run)
		if result.Err == nil {
			run.log(step.Name, "info", "step completed")
			return result
		}

		run.log(step.Name, "error", fmt.Sprintf("attempt %d/%d failed: %v", attempt, attempts, result.Err))
		if attempt < attempts {
			delay := step.RetryDelay * time.Duration(attempt)
			e.log.Warn().Str("step", step.Name).Int("attempt", attempt).
				Dur("delay", delay).Err(result.Err).Msg("Step failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Result{Err: ctx.Err()}
			}
		}
	}

	return result
}

// attempt isolates panic recovery so a crashing step fails its run
// instead of the process.
func (e *Engine) attempt(ctx context.Context, step Step, input any, run *Run) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Err: fmt.Errorf("step panicked: %v", r)}
		}
	}()
	return step.Execute(ctx, input, run)
}

func (r *Run) log(step, level, message string) {
	r.Logs = append(r.Logs, LogEntry{
		Time:    time.Now().UTC(),
		Step:    step,
		Level:   level,
		Message: message,
	})
}
