package service

import (
	"context"
	"log/slog"
	"time"
)

// tickInterval is the fixed scheduler heartbeat; the configured polling
// interval gates how often a tick actually triggers a pass.
const tickInterval = 5 * time.Second

// Scheduler periodically triggers review passes while the agent and polling
// are both enabled.
type Scheduler struct {
	state        *AgentState
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewScheduler creates the pass scheduler.
func NewScheduler(state *AgentState, orch *Orchestrator, logger *slog.Logger) *Scheduler {
	return &Scheduler{state: state, orchestrator: orch, logger: logger}
}

// Start runs the scheduling loop until the context is cancelled. It is meant
// to be launched in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "tick", tickInterval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			if s.due(time.Now()) {
				s.orchestrator.RunNow(ctx)
			}
		}
	}
}

// due reports whether a pass should trigger at the given instant: the agent
// and polling must be on, and either no pass has ever run or the configured
// interval has elapsed since the last one.
func (s *Scheduler) due(now time.Time) bool {
	if !s.state.Enabled() || !s.state.PollingEnabled() {
		return false
	}
	last, ran := s.state.LastRun()
	if !ran {
		return true
	}
	return now.Sub(last) >= s.state.PollingInterval()
}
