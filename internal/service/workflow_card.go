package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/port/reasoner"
)

// Credit limit policy thresholds.
const (
	cardCreditBalanceFloor = 50_000
	cardHighBalanceFloor   = 200_000
	cardHighLimit          = 100_000
	cardModestBalanceCeil  = 100_000
	cardModestLimit        = 50_000
)

// CardWorkflow reviews pending card applications. Debit cards approve
// unconditionally; credit cards get a limit derived from the applicant's
// balance profile, with the reasoner supplying advisory commentary on
// borderline rejections.
type CardWorkflow struct {
	Deps
	admin    bankapi.CardAdmin
	accounts bankapi.AccountReader
	reasoner reasoner.Reasoner
	logger   *slog.Logger
}

// NewCardWorkflow wires the card queue reviewer.
func NewCardWorkflow(d Deps, admin bankapi.CardAdmin, accounts bankapi.AccountReader, r reasoner.Reasoner, logger *slog.Logger) *CardWorkflow {
	return &CardWorkflow{Deps: d, admin: admin, accounts: accounts, reasoner: r, logger: logger}
}

// Name implements Workflow.
func (w *CardWorkflow) Name() string { return review.WorkflowCards }

// Process implements Workflow.
func (w *CardWorkflow) Process(ctx context.Context) error {
	if !w.processable(w.Name()) {
		return nil
	}
	mode := w.state.Mode()

	apps, err := w.admin.ListPending(ctx)
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		return fmt.Errorf("list card applications: %w", err)
	}
	w.metrics.ObserveDepth(ctx, w.Name(), len(apps))

	if mode == review.ModeOff {
		return nil
	}
	for _, app := range apps {
		w.processOne(ctx, app, mode)
	}
	return nil
}

func (w *CardWorkflow) processOne(ctx context.Context, app bankapi.CardApplication, mode review.Mode) {
	fp := review.Fingerprint(map[string]any{
		"applicationId": app.ApplicationID,
		"userId":        app.UserID,
		"type":          app.Type,
		"status":        app.Status,
	})
	if w.ledger.IsDuplicate(w.Name(), app.ApplicationID, fp) {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	decision := w.evaluate(ctx, app)

	if mode == review.ModeDryRun {
		w.ledger.Record(ctx, w.Name(), app.ApplicationID, app.UserID, fp, decision, mode)
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		return
	}

	fresh, err := w.admin.Get(ctx, app.ApplicationID)
	if err != nil || fresh.Status != bankapi.StatusSubmitted {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	body := bankapi.CardReview{
		AdminComment: decision.Reason,
		ReviewerID:   bankapi.ReviewerID,
	}
	switch decision.Action {
	case review.ActionApprove:
		body.Decision = "APPROVED"
		body.ApprovedLimit = decision.Limit
	case review.ActionReject:
		body.Decision = "REJECTED"
	}

	w.metrics.RecordReviewCall(ctx, w.Name())
	if err := w.admin.Review(ctx, app.ApplicationID, body); err != nil {
		w.metrics.RecordError(ctx, w.Name())
		w.logger.Error("card review call failed",
			"application_id", app.ApplicationID, "action", decision.Action, "error", err)
		return
	}

	w.ledger.Record(ctx, w.Name(), app.ApplicationID, app.UserID, fp, decision, mode)
	w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
}

func (w *CardWorkflow) evaluate(ctx context.Context, app bankapi.CardApplication) review.Decision {
	switch app.Type {
	case "DEBIT":
		return review.Approve("Debit card carries no credit exposure.")
	case "CREDIT":
		return w.evaluateCredit(ctx, app)
	default:
		return review.Reject(fmt.Sprintf("Unsupported card type %q.", app.Type))
	}
}

func (w *CardWorkflow) evaluateCredit(ctx context.Context, app bankapi.CardApplication) review.Decision {
	accounts, err := w.accounts.AccountsForUser(ctx, app.UserID)
	if err != nil {
		w.logger.Warn("card account lookup failed", "application_id", app.ApplicationID, "error", err)
		return review.Reject("Could not verify account profile; rejected conservatively.")
	}

	balance := joinedBalance(accounts)
	payroll := hasPayrollAccount(accounts)

	if balance < cardCreditBalanceFloor {
		reason := fmt.Sprintf("Joint balance %.2f below minimum %.2f for credit issuance.",
			balance, float64(cardCreditBalanceFloor))
		// Advisory commentary only; the balance floor already decided this.
		result := w.reasoner.Evaluate(ctx, "CARD_CREDIT_LIMIT_POLICY", map[string]any{
			"type":           app.Type,
			"jointBalance":   balance,
			"payrollAccount": payroll,
		})
		if result.Reason != "" && result.Verdict != reasoner.VerdictInconclusive {
			reason += " " + result.Reason
		}
		return review.Reject(reason)
	}

	switch {
	case payroll && balance > cardHighBalanceFloor:
		return review.ApproveWithLimit(cardHighLimit,
			fmt.Sprintf("Payroll profile with joint balance %.2f.", balance))
	case !payroll && balance < cardModestBalanceCeil:
		return review.ApproveWithLimit(cardModestLimit,
			fmt.Sprintf("Standard profile with joint balance %.2f.", balance))
	default:
		return review.ApproveWithLimit(cardModestLimit,
			fmt.Sprintf("Conservative default limit for joint balance %.2f.", balance))
	}
}
