package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/omnibank/reviewd/internal/adapter/otel"
)

// Orchestrator runs one review pass across all registered workflow queues.
// Workflows execute sequentially so a pass never hammers every backend
// service at once, and a panic in one queue never reaches the others.
type Orchestrator struct {
	state     *AgentState
	workflows []Workflow
	metrics   *QueueMetrics
	otel      *otel.Metrics
	logger    *slog.Logger
}

// NewOrchestrator creates the pass coordinator.
func NewOrchestrator(state *AgentState, workflows []Workflow, metrics *QueueMetrics, m *otel.Metrics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		state:     state,
		workflows: workflows,
		metrics:   metrics,
		otel:      m,
		logger:    logger,
	}
}

// RunNow executes a full review pass immediately, regardless of the polling
// schedule. The pass still honors the master switch, mode and per-queue
// flags.
func (o *Orchestrator) RunNow(ctx context.Context) {
	passID := uuid.NewString()
	started := time.Now()
	o.state.MarkRun(started)

	o.logger.Info("review pass started", "pass_id", passID, "mode", o.state.Mode())

	for _, wf := range o.workflows {
		o.runWorkflow(ctx, passID, wf)
	}

	elapsed := time.Since(started)
	if o.otel != nil {
		o.otel.PassDuration.Record(ctx, elapsed.Seconds())
	}
	o.logger.Info("review pass finished",
		"pass_id", passID, "duration_ms", elapsed.Milliseconds())
}

func (o *Orchestrator) runWorkflow(ctx context.Context, passID string, wf Workflow) {
	defer func() {
		if r := recover(); r != nil {
			o.metrics.RecordError(ctx, wf.Name())
			o.logger.Error("workflow panicked",
				"pass_id", passID, "workflow", wf.Name(), "panic", r)
		}
	}()

	if err := wf.Process(ctx); err != nil {
		o.logger.Error("workflow failed",
			"pass_id", passID, "workflow", wf.Name(), "error", err)
	}
}

// QueueSnapshot returns the per-queue counters for the control API.
func (o *Orchestrator) QueueSnapshot() map[string]QueueCounters {
	return o.metrics.Snapshot()
}
