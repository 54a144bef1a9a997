package service

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omnibank/reviewd/internal/adapter/otel"
	"github.com/omnibank/reviewd/internal/domain/review"
)

// QueueCounters aggregates per-queue outcomes across review passes.
type QueueCounters struct {
	Pending    int64 `json:"pending"`
	Approved   int64 `json:"approved"`
	Rejected   int64 `json:"rejected"`
	Skipped    int64 `json:"skipped"`
	Duplicates int64 `json:"duplicates"`
	Errors     int64 `json:"errors"`
}

// QueueMetrics keeps in-memory counters per workflow queue and mirrors them
// to the OpenTelemetry instruments when those are wired.
type QueueMetrics struct {
	mu       sync.Mutex
	counters map[string]*QueueCounters
	otel     *otel.Metrics
}

// NewQueueMetrics creates counters for every known queue.
func NewQueueMetrics(m *otel.Metrics) *QueueMetrics {
	q := &QueueMetrics{
		counters: make(map[string]*QueueCounters),
		otel:     m,
	}
	for _, wf := range review.Workflows() {
		q.counters[wf] = &QueueCounters{}
	}
	return q
}

func (q *QueueMetrics) queue(workflow string) *QueueCounters {
	c, ok := q.counters[workflow]
	if !ok {
		c = &QueueCounters{}
		q.counters[workflow] = c
	}
	return c
}

// ObserveDepth records the pending count a pass saw in a queue, overwriting
// the previous observation.
func (q *QueueMetrics) ObserveDepth(ctx context.Context, workflow string, depth int) {
	if depth < 0 {
		depth = 0
	}
	q.mu.Lock()
	q.queue(workflow).Pending = int64(depth)
	q.mu.Unlock()

	if q.otel != nil {
		q.otel.QueueDepth.Record(ctx, int64(depth),
			metric.WithAttributes(attribute.String("workflow", workflow)))
	}
}

// RecordDecision counts a decision outcome for a queue.
func (q *QueueMetrics) RecordDecision(ctx context.Context, workflow string, action review.Action) {
	q.mu.Lock()
	c := q.queue(workflow)
	switch action {
	case review.ActionApprove:
		c.Approved++
	case review.ActionReject:
		c.Rejected++
	case review.ActionSkip:
		c.Skipped++
	}
	q.mu.Unlock()

	if q.otel == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("workflow", workflow))
	switch action {
	case review.ActionApprove:
		q.otel.DecisionsApproved.Add(ctx, 1, attrs)
	case review.ActionReject:
		q.otel.DecisionsRejected.Add(ctx, 1, attrs)
	case review.ActionSkip:
		q.otel.DecisionsSkipped.Add(ctx, 1, attrs)
	}
}

// RecordDuplicate counts an item skipped because it was already decided.
func (q *QueueMetrics) RecordDuplicate(workflow string) {
	q.mu.Lock()
	q.queue(workflow).Duplicates++
	q.mu.Unlock()
}

// RecordError counts a processing failure in a queue.
func (q *QueueMetrics) RecordError(ctx context.Context, workflow string) {
	q.mu.Lock()
	q.queue(workflow).Errors++
	q.mu.Unlock()

	if q.otel != nil {
		q.otel.ReviewFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("workflow", workflow)))
	}
}

// RecordReviewCall counts a review call actually sent to a backend service.
func (q *QueueMetrics) RecordReviewCall(ctx context.Context, workflow string) {
	if q.otel != nil {
		q.otel.ReviewCalls.Add(ctx, 1,
			metric.WithAttributes(attribute.String("workflow", workflow)))
	}
}

// Snapshot returns a copy of all per-queue counters.
func (q *QueueMetrics) Snapshot() map[string]QueueCounters {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make(map[string]QueueCounters, len(q.counters))
	for wf, c := range q.counters {
		out[wf] = *c
	}
	return out
}
