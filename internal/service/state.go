package service

import (
	"sync"
	"time"

	"github.com/omnibank/reviewd/internal/config"
	"github.com/omnibank/reviewd/internal/domain/review"
)

// AgentState holds the live operating state of the review agent: the master
// switch, the execution mode and the per-queue enablement flags. It is
// mutated from the control API while the scheduler reads it, so all access
// goes through the mutex.
type AgentState struct {
	mu              sync.RWMutex
	enabled         bool
	mode            review.Mode
	workflows       map[string]bool
	pollingEnabled  bool
	pollingInterval time.Duration
	lastRun         time.Time
	hasRun          bool
}

// NewAgentState seeds the state from configuration.
func NewAgentState(cfg config.Agent) *AgentState {
	return &AgentState{
		enabled: cfg.Enabled,
		mode:    review.ParseMode(cfg.Mode),
		workflows: map[string]bool{
			review.WorkflowKYC:         cfg.Workflows.KYC,
			review.WorkflowLoans:       cfg.Workflows.Loans,
			review.WorkflowCards:       cfg.Workflows.Cards,
			review.WorkflowSalary:      cfg.Workflows.Salary,
			review.WorkflowSelfService: cfg.Workflows.SelfService,
		},
		pollingEnabled:  cfg.Polling.Enabled,
		pollingInterval: cfg.Polling.Interval,
	}
}

// Enabled reports the master switch.
func (s *AgentState) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled flips the master switch.
func (s *AgentState) SetEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = v
}

// Mode returns the current execution mode.
func (s *AgentState) Mode() review.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode updates the execution mode. Unknown values clamp to OFF.
func (s *AgentState) SetMode(raw string) review.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = review.ParseMode(raw)
	return s.mode
}

// WorkflowEnabled reports whether a named queue is enabled.
func (s *AgentState) WorkflowEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workflows[name]
}

// SetWorkflowEnabled flips a single queue. Unknown names are ignored.
func (s *AgentState) SetWorkflowEnabled(name string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[name]; ok {
		s.workflows[name] = v
	}
}

// PollingEnabled reports whether the scheduler should trigger passes.
func (s *AgentState) PollingEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pollingEnabled
}

// SetPollingEnabled flips scheduler triggering.
func (s *AgentState) SetPollingEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollingEnabled = v
}

// PollingInterval returns the minimum gap between scheduled passes.
func (s *AgentState) PollingInterval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pollingInterval
}

// SetPollingInterval updates the pass interval. Non-positive values are
// ignored.
func (s *AgentState) SetPollingInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollingInterval = d
}

// MarkRun records the start of a review pass.
func (s *AgentState) MarkRun(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = at
	s.hasRun = true
}

// LastRun returns the start time of the most recent pass, if any.
func (s *AgentState) LastRun() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.hasRun
}

// Snapshot is a point-in-time copy of the agent state for the control API.
type Snapshot struct {
	Enabled         bool            `json:"enabled"`
	Mode            review.Mode     `json:"mode"`
	Workflows       map[string]bool `json:"workflows"`
	PollingEnabled  bool            `json:"pollingEnabled"`
	PollingInterval int64           `json:"pollingIntervalMs"`
	LastRun         *time.Time      `json:"lastRunAt,omitempty"`
}

// Snapshot returns a copy of the full state.
func (s *AgentState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf := make(map[string]bool, len(s.workflows))
	for k, v := range s.workflows {
		wf[k] = v
	}
	snap := Snapshot{
		Enabled:         s.enabled,
		Mode:            s.mode,
		Workflows:       wf,
		PollingEnabled:  s.pollingEnabled,
		PollingInterval: s.pollingInterval.Milliseconds(),
	}
	if s.hasRun {
		t := s.lastRun
		snap.LastRun = &t
	}
	return snap
}
