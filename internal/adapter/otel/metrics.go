package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "reviewd"

// Metrics holds all review agent metric instruments. Workflow and decision
// attributes are attached at record time.
type Metrics struct {
	DecisionsApproved metric.Int64Counter
	DecisionsRejected metric.Int64Counter
	DecisionsSkipped  metric.Int64Counter
	ReviewCalls       metric.Int64Counter
	ReviewFailures    metric.Int64Counter
	PassDuration      metric.Float64Histogram
	QueueDepth        metric.Int64Gauge
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.DecisionsApproved, err = meter.Int64Counter("reviewd.decisions.approved",
		metric.WithDescription("Number of approve decisions"))
	if err != nil {
		return nil, err
	}

	m.DecisionsRejected, err = meter.Int64Counter("reviewd.decisions.rejected",
		metric.WithDescription("Number of reject decisions"))
	if err != nil {
		return nil, err
	}

	m.DecisionsSkipped, err = meter.Int64Counter("reviewd.decisions.skipped",
		metric.WithDescription("Number of skipped or deferred items"))
	if err != nil {
		return nil, err
	}

	m.ReviewCalls, err = meter.Int64Counter("reviewd.review.calls",
		metric.WithDescription("Number of review calls sent to backend services"))
	if err != nil {
		return nil, err
	}

	m.ReviewFailures, err = meter.Int64Counter("reviewd.review.failures",
		metric.WithDescription("Number of failed review calls"))
	if err != nil {
		return nil, err
	}

	m.PassDuration, err = meter.Float64Histogram("reviewd.pass.duration_seconds",
		metric.WithDescription("Review pass duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.QueueDepth, err = meter.Int64Gauge("reviewd.queue.depth",
		metric.WithDescription("Pending items observed per queue"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
