package workflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func passStep(name string, out any) Step {
	return Step{
		Name: name,
		Execute: func(ctx context.Context, input any, run *Run) Result {
			return Result{Output: out}
		},
	}
}

func TestExecuteCompletes(t *testing.T) {
	engine := NewEngine()

	def := Definition{
		Name: "three-steps",
		Steps: []Step{
			passStep("one", 1),
			{
				Name: "two",
				Execute: func(ctx context.Context, input any, run *Run) Result {
					if input.(int) != 1 {
						t.Errorf("step two input = %v, want 1", input)
					}
					return Result{Output: 2}
				},
			},
			passStep("three", 3),
		},
	}

	run, err := engine.Execute(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Status != StatusCompleted {
		t.Errorf("Status = %s", run.Status)
	}
	if run.ID == "" || run.FinishedAt.IsZero() {
		t.Errorf("run metadata incomplete: %+v", run)
	}
}

func TestSkipShortCircuits(t *testing.T) {
	engine := NewEngine()
	thirdRan := false

	def := Definition{
		Name: "skippy",
		Steps: []Step{
			passStep("one", nil),
			{
				Name: "two",
				Execute: func(ctx context.Context, input any, run *Run) Result {
					return Result{Skip: true, Message: "nothing to do"}
				},
			},
			{
				Name: "three",
				Execute: func(ctx context.Context, input any, run *Run) Result {
					thirdRan = true
					return Result{}
				},
			},
		},
	}

	run, err := engine.Execute(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("skip should not be an error, got %v", err)
	}
	if run.Status != StatusSkipped {
		t.Errorf("Status = %s, want skipped", run.Status)
	}
	if thirdRan {
		t.Error("step after skip still ran")
	}
}

func TestRequiredStepFailure(t *testing.T) {
	engine := NewEngine()
	boom := errors.New("boom")

	def := Definition{
		Name: "failing",
		Steps: []Step{
			{
				Name: "bad",
				Execute: func(ctx context.Context, input any, run *Run) Result {
					return Result{Err: boom}
				},
			},
			passStep("never", nil),
		},
	}

	run, err := engine.Execute(context.Background(), def, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if run.Status != StatusFailed {
		t.Errorf("Status = %s", run.Status)
	}
}

func TestOptionalStepFailureContinues(t *testing.T) {
	engine := NewEngine()

	def := Definition{
		Name: "tolerant",
		Steps: []Step{
			passStep("one", "carried"),
			{
				Name:     "flaky",
				Optional: true,
				Execute: func(ctx context.Context, input any, run *Run) Result {
					return Result{Err: errors.New("nope")}
				},
			},
			{
				Name: "three",
				Execute: func(ctx context.Context, input any, run *Run) Result {
					if input != "carried" {
						t.Errorf("input = %v, optional failure should pass input through", input)
					}
					return Result{}
				},
			},
		},
	}

	run, err := engine.Execute(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Status != StatusCompleted {
		t.Errorf("Status = %s", run.Status)
	}
}

func TestRetries(t *testing.T) {
	engine := NewEngine()
	attempts := 0

	def := Definition{
		Name: "retrying",
		Steps: []Step{
			{
				Name:       "flaky",
				Retries:    2,
				RetryDelay: time.Millisecond,
				Execute: func(ctx context.Context, input any, run *Run) Result {
					attempts++
					if attempts < 3 {
						return Result{Err: errors.New("transient")}
					}
					return Result{}
				},
			},
		},
	}

	run, err := engine.Execute(context.Background(), def, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if run.Status != StatusCompleted {
		t.Errorf("Status = %s", run.Status)
	}
}

func TestPanicRecovery(t *testing.T) {
	engine := NewEngine()

	def := Definition{
		Name: "panicky",
		Steps: []Step{
			{
				Name: "crash",
				Execute: func(ctx context.Context, input any, run *Run) Result {
					panic("kaboom")
				},
			},
		},
	}

	run, err := engine.Execute(context.Background(), def, nil)
	if err == nil {
		t.Fatal("expected error from panicking step")
	}
	if run.Status != StatusFailed {
		t.Errorf("Status = %s", run.Status)
	}
}

func TestCancelledContext(t *testing.T) {
	engine := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	def := Definition{
		Name:  "cancelled",
		Steps: []Step{passStep("one", nil)},
	}

	run, err := engine.Execute(ctx, def, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if run.Status != StatusFailed {
		t.Errorf("Status = %s", run.Status)
	}
}
