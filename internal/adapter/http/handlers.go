package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/service"
)

// runNowTimeout bounds a manually triggered pass.
const runNowTimeout = 5 * time.Minute

// healthCheckTimeout bounds each dependency probe on /health.
const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency's availability.
type HealthCheck func(ctx context.Context) error

// Handlers holds the control API dependencies.
type Handlers struct {
	state        *service.AgentState
	orchestrator *service.Orchestrator
	ledger       *service.AuditLedger
	logger       *slog.Logger
	checks       map[string]HealthCheck
}

// NewHandlers creates the control API handlers.
func NewHandlers(state *service.AgentState, orch *service.Orchestrator, ledger *service.AuditLedger, logger *slog.Logger) *Handlers {
	return &Handlers{
		state:        state,
		orchestrator: orch,
		ledger:       ledger,
		logger:       logger,
		checks:       make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a named dependency probe for the health endpoint.
func (h *Handlers) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// statusResponse is the full operator view of the agent.
type statusResponse struct {
	service.Snapshot
	Queues      map[string]service.QueueCounters `json:"queues"`
	AuditSize   int                              `json:"auditSize"`
	GeneratedAt time.Time                        `json:"generatedAt"`
}

// AgentStatus returns the live agent state and per-queue counters.
func (h *Handlers) AgentStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Snapshot:    h.state.Snapshot(),
		Queues:      h.orchestrator.QueueSnapshot(),
		AuditSize:   h.ledger.Size(),
		GeneratedAt: time.Now().UTC(),
	})
}

// toggleRequest is a partial update: only the fields present in the body are
// applied.
type toggleRequest struct {
	Enabled           *bool           `json:"enabled,omitempty"`
	Mode              *string         `json:"mode,omitempty"`
	Workflows         map[string]bool `json:"workflows,omitempty"`
	PollingEnabled    *bool           `json:"pollingEnabled,omitempty"`
	PollingIntervalMs *int64          `json:"pollingIntervalMs,omitempty"`
}

// AgentToggle applies a partial update to the agent state and returns the
// resulting snapshot.
func (h *Handlers) AgentToggle(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[toggleRequest](w, r)
	if !ok {
		return
	}

	if req.Enabled != nil {
		h.state.SetEnabled(*req.Enabled)
	}
	if req.Mode != nil {
		applied := h.state.SetMode(*req.Mode)
		if string(applied) != *req.Mode {
			h.logger.Warn("unknown agent mode clamped to OFF", "requested", *req.Mode)
		}
	}
	for name, enabled := range req.Workflows {
		if !validWorkflow(name) {
			writeError(w, http.StatusBadRequest, "unknown workflow: "+name)
			return
		}
		h.state.SetWorkflowEnabled(name, enabled)
	}
	if req.PollingEnabled != nil {
		h.state.SetPollingEnabled(*req.PollingEnabled)
	}
	if req.PollingIntervalMs != nil {
		if *req.PollingIntervalMs <= 0 {
			writeError(w, http.StatusBadRequest, "pollingIntervalMs must be positive")
			return
		}
		h.state.SetPollingInterval(time.Duration(*req.PollingIntervalMs) * time.Millisecond)
	}

	h.logger.Info("agent state updated",
		"enabled", h.state.Enabled(), "mode", h.state.Mode())
	writeJSON(w, http.StatusOK, h.state.Snapshot())
}

// AgentRunNow triggers a review pass asynchronously and returns 202.
func (h *Handlers) AgentRunNow(w http.ResponseWriter, _ *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runNowTimeout)
		defer cancel()
		h.orchestrator.RunNow(ctx)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

// AgentAudit returns recent decisions, newest first.
func (h *Handlers) AgentAudit(w http.ResponseWriter, _ *http.Request) {
	entries := h.ledger.Entries()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// Health reports service liveness plus the state of registered dependencies.
// A degraded dependency does not fail the endpoint; the agent keeps running
// and individual passes absorb backend failures.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
		} else {
			deps[name] = "ok"
		}
		cancel()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       status,
		"dependencies": deps,
	})
}

func validWorkflow(name string) bool {
	for _, wf := range review.Workflows() {
		if wf == name {
			return true
		}
	}
	return false
}
