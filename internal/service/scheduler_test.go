package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func newTestScheduler(mode string) (*Scheduler, *AgentState) {
	_, state, _, metrics := testDeps(mode)
	orch := NewOrchestrator(state, nil, metrics, nil, testLogger())
	return NewScheduler(state, orch, testLogger()), state
}

func TestSchedulerDue(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first pass is always due", func(t *testing.T) {
		s, _ := newTestScheduler("AUTO")
		if !s.due(now) {
			t.Fatal("expected a pass before any run")
		}
	})

	t.Run("interval gates subsequent passes", func(t *testing.T) {
		s, state := newTestScheduler("AUTO")
		state.MarkRun(now)
		if s.due(now.Add(10 * time.Second)) {
			t.Fatal("pass triggered before interval elapsed")
		}
		if !s.due(now.Add(30 * time.Second)) {
			t.Fatal("pass not triggered after interval elapsed")
		}
	})

	t.Run("master switch blocks passes", func(t *testing.T) {
		s, state := newTestScheduler("AUTO")
		state.SetEnabled(false)
		if s.due(now) {
			t.Fatal("disabled agent must not trigger passes")
		}
	})

	t.Run("polling switch blocks passes", func(t *testing.T) {
		s, state := newTestScheduler("AUTO")
		state.SetPollingEnabled(false)
		if s.due(now) {
			t.Fatal("disabled polling must not trigger passes")
		}
	})
}

// flagWorkflow counts Process calls and optionally fails or panics.
type flagWorkflow struct {
	name  string
	calls atomic.Int64
	fail  bool
	panic bool
}

func (f *flagWorkflow) Name() string { return f.name }

func (f *flagWorkflow) Process(context.Context) error {
	f.calls.Add(1)
	if f.panic {
		panic("worker exploded")
	}
	if f.fail {
		return errors.New("backend unavailable")
	}
	return nil
}

func TestOrchestratorRunsAllWorkflows(t *testing.T) {
	_, state, _, metrics := testDeps("AUTO")
	first := &flagWorkflow{name: "kyc"}
	second := &flagWorkflow{name: "loans"}
	orch := NewOrchestrator(state, []Workflow{first, second}, metrics, nil, testLogger())

	orch.RunNow(context.Background())
	if first.calls.Load() != 1 || second.calls.Load() != 1 {
		t.Fatalf("workflow calls: %d, %d", first.calls.Load(), second.calls.Load())
	}
	if _, ran := state.LastRun(); !ran {
		t.Fatal("pass must mark the run time")
	}
}

func TestOrchestratorIsolatesPanics(t *testing.T) {
	_, state, _, metrics := testDeps("AUTO")
	bad := &flagWorkflow{name: "cards", panic: true}
	after := &flagWorkflow{name: "salary"}
	orch := NewOrchestrator(state, []Workflow{bad, after}, metrics, nil, testLogger())

	orch.RunNow(context.Background())
	if after.calls.Load() != 1 {
		t.Fatal("panic in one queue must not stop the pass")
	}
	if metrics.Snapshot()["cards"].Errors != 1 {
		t.Fatal("panicking queue must count an error")
	}
}

func TestOrchestratorToleratesWorkflowErrors(t *testing.T) {
	_, state, _, metrics := testDeps("AUTO")
	failing := &flagWorkflow{name: "kyc", fail: true}
	after := &flagWorkflow{name: "loans"}
	orch := NewOrchestrator(state, []Workflow{failing, after}, metrics, nil, testLogger())

	orch.RunNow(context.Background())
	if after.calls.Load() != 1 {
		t.Fatal("error in one queue must not stop the pass")
	}
}
