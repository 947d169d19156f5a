package bootstrapper

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kubeprep/kubeprep/pkg/config"
)

type fakeStep struct {
	name        string
	completed   bool
	executeErr  error
	validateErr error

	executed  bool
	validated bool
}

func (f *fakeStep) Execute(context.Context) error {
	f.executed = true
	return f.executeErr
}

func (f *fakeStep) GetName() string { return f.name }

func (f *fakeStep) IsCompleted(context.Context) bool { return f.completed }

func (f *fakeStep) Validate(context.Context) error {
	f.validated = true
	return f.validateErr
}

func newTestExecutor() *BaseExecutor {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewBaseExecutor(config.New(config.RoleWorker, false), logger)
}

func TestExecuteStepsRunsInOrder(t *testing.T) {
	t.Parallel()

	first := &fakeStep{name: "first"}
	second := &fakeStep{name: "second"}

	result, err := newTestExecutor().ExecuteSteps(context.Background(), []Executor{first, second}, "bootstrap")
	if err != nil {
		t.Fatalf("ExecuteSteps() err=%v", err)
	}

	if !first.executed || !second.executed {
		t.Fatal("not all steps were executed")
	}
	if len(result.Steps) != 2 {
		t.Fatalf("result has %d steps, want 2", len(result.Steps))
	}
	for _, step := range result.Steps {
		if step.Status != StepCompleted {
			t.Fatalf("step %s status=%s, want completed", step.Name, step.Status)
		}
	}
}

func TestExecuteStepsSkipsCompletedSteps(t *testing.T) {
	t.Parallel()

	done := &fakeStep{name: "done", completed: true}
	pending := &fakeStep{name: "pending"}

	result, err := newTestExecutor().ExecuteSteps(context.Background(), []Executor{done, pending}, "bootstrap")
	if err != nil {
		t.Fatalf("ExecuteSteps() err=%v", err)
	}

	if done.executed {
		t.Fatal("completed step was executed")
	}
	if result.Steps[0].Status != StepSkipped {
		t.Fatalf("completed step status=%s, want skipped", result.Steps[0].Status)
	}
	if !pending.executed {
		t.Fatal("pending step was not executed")
	}
}

func TestExecuteStepsStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	bootErr := errors.New("boom")
	failing := &fakeStep{name: "failing", executeErr: bootErr}
	after := &fakeStep{name: "after"}

	result, err := newTestExecutor().ExecuteSteps(context.Background(), []Executor{failing, after}, "bootstrap")
	if !errors.Is(err, bootErr) {
		t.Fatalf("ExecuteSteps() err=%v, want wrapped boom", err)
	}
	if after.executed {
		t.Fatal("step after the failure was executed")
	}

	failed := result.Failed()
	if failed == nil || failed.Name != "failing" {
		t.Fatalf("Failed()=%v, want the failing step", failed)
	}
}

func TestExecuteStepsRunsValidationFirst(t *testing.T) {
	t.Parallel()

	invalid := &fakeStep{name: "invalid", validateErr: errors.New("precondition missing")}

	_, err := newTestExecutor().ExecuteSteps(context.Background(), []Executor{invalid}, "bootstrap")
	if err == nil {
		t.Fatal("ExecuteSteps() ignored validation failure")
	}
	if invalid.executed {
		t.Fatal("step was executed despite failed validation")
	}
	if !invalid.validated {
		t.Fatal("Validate was not called")
	}
}
