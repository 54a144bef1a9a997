package service

import (
	"context"
	"math"

	"github.com/omnibank/reviewd/internal/port/bankapi"
)

// Workflow is one queue reviewer. Process drains the queue's pending items
// once, deciding each according to the current mode.
type Workflow interface {
	Name() string
	Process(ctx context.Context) error
}

// maxReasonerDocText caps the document text forwarded to the reasoner.
const maxReasonerDocText = 4000

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// joinedBalance sums a user's balances, rounding each account to whole units
// the way downstream statements do.
func joinedBalance(accounts []bankapi.Account) float64 {
	var total float64
	for _, a := range accounts {
		total += math.Round(a.Balance)
	}
	return total
}

func hasPayrollAccount(accounts []bankapi.Account) bool {
	for _, a := range accounts {
		if a.AccountType == bankapi.AccountTypePayroll {
			return true
		}
	}
	return false
}

// Deps bundles the collaborators every workflow shares.
type Deps struct {
	state   *AgentState
	ledger  *AuditLedger
	metrics *QueueMetrics
}

// NewDeps creates the shared workflow dependencies.
func NewDeps(state *AgentState, ledger *AuditLedger, metrics *QueueMetrics) Deps {
	return Deps{state: state, ledger: ledger, metrics: metrics}
}

// processable reports whether a pass should touch this queue at all.
func (d *Deps) processable(workflow string) bool {
	return d.state.Enabled() && d.state.WorkflowEnabled(workflow)
}
