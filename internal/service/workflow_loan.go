package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
)

// Loan eligibility caps keyed on the applicant's balance profile.
const (
	loanCorporateBalanceFloor = 200_000
	loanCorporateCap          = 8_000_000
	loanMidBalanceFloor       = 50_000
	loanMidCap                = 2_000_000
	loanBaseCap               = 300_000
)

// LoanWorkflow reviews pending loan applications against balance-derived
// eligibility caps. The loan service has no status filter on its list
// endpoint, so pending items are filtered client-side.
type LoanWorkflow struct {
	Deps
	admin    bankapi.LoanAdmin
	accounts bankapi.AccountReader
	logger   *slog.Logger
}

// NewLoanWorkflow wires the loan queue reviewer.
func NewLoanWorkflow(d Deps, admin bankapi.LoanAdmin, accounts bankapi.AccountReader, logger *slog.Logger) *LoanWorkflow {
	return &LoanWorkflow{Deps: d, admin: admin, accounts: accounts, logger: logger}
}

// Name implements Workflow.
func (w *LoanWorkflow) Name() string { return review.WorkflowLoans }

// Process implements Workflow.
func (w *LoanWorkflow) Process(ctx context.Context) error {
	if !w.processable(w.Name()) {
		return nil
	}
	mode := w.state.Mode()

	loans, err := w.admin.List(ctx)
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		return fmt.Errorf("list loans: %w", err)
	}

	var pending []bankapi.Loan
	for _, l := range loans {
		if l.Status == bankapi.StatusPending {
			pending = append(pending, l)
		}
	}
	w.metrics.ObserveDepth(ctx, w.Name(), len(pending))

	if mode == review.ModeOff {
		return nil
	}
	for _, loan := range pending {
		w.processOne(ctx, loan, mode)
	}
	return nil
}

func (w *LoanWorkflow) processOne(ctx context.Context, loan bankapi.Loan, mode review.Mode) {
	fp := review.Fingerprint(map[string]any{
		"loanId": loan.LoanID,
		"userId": loan.UserID,
		"amount": loan.Amount,
		"status": loan.Status,
	})
	if w.ledger.IsDuplicate(w.Name(), loan.LoanID, fp) {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	decision := w.evaluate(ctx, loan)

	if mode == review.ModeDryRun {
		w.ledger.Record(ctx, w.Name(), loan.LoanID, loan.UserID, fp, decision, mode)
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		return
	}

	fresh, err := w.admin.Get(ctx, loan.LoanID)
	if err != nil || fresh.Status != bankapi.StatusPending {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	w.metrics.RecordReviewCall(ctx, w.Name())
	switch decision.Action {
	case review.ActionApprove:
		err = w.admin.Approve(ctx, loan.LoanID)
	case review.ActionReject:
		err = w.admin.Reject(ctx, loan.LoanID, decision.Reason)
	}
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		w.logger.Error("loan review call failed",
			"loan_id", loan.LoanID, "action", decision.Action, "error", err)
		return
	}

	w.ledger.Record(ctx, w.Name(), loan.LoanID, loan.UserID, fp, decision, mode)
	w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
}

func (w *LoanWorkflow) evaluate(ctx context.Context, loan bankapi.Loan) review.Decision {
	accounts, err := w.accounts.AccountsForUser(ctx, loan.UserID)
	if err != nil {
		// Without the balance profile there is no basis to lend.
		w.logger.Warn("loan account lookup failed", "loan_id", loan.LoanID, "error", err)
		return review.Reject("Could not verify account profile; rejected conservatively.")
	}

	balance := joinedBalance(accounts)
	corporate := hasPayrollAccount(accounts)

	var eligibleCap float64
	switch {
	case corporate && balance > loanCorporateBalanceFloor:
		eligibleCap = loanCorporateCap
	case !corporate && balance >= loanMidBalanceFloor:
		eligibleCap = loanMidCap
	case !corporate:
		eligibleCap = loanBaseCap
	default:
		// Corporate account but balance too low for the corporate tier.
		return review.Reject("Profile does not meet approval criteria.")
	}

	if loan.Amount > eligibleCap {
		return review.Reject(fmt.Sprintf(
			"Requested amount %.2f exceeds eligible cap %.2f for joint balance %.2f.",
			loan.Amount, eligibleCap, balance))
	}
	return review.Approve(fmt.Sprintf(
		"Requested amount %.2f within eligible cap %.2f.", loan.Amount, eligibleCap))
}
