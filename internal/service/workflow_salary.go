package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omnibank/reviewd/internal/domain/match"
	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/port/reasoner"
)

// fuzzyDomainThreshold is the minimum similarity for an OCR-mangled employer
// domain to count as corroboration.
const fuzzyDomainThreshold = 0.75

// SalaryWorkflow reviews pending payroll-account applications by checking
// that the uploaded employment documents mention the applicant's corporate
// email domain.
type SalaryWorkflow struct {
	Deps
	admin    bankapi.SalaryAdmin
	evidence *Evidence
	reasoner reasoner.Reasoner
	logger   *slog.Logger
}

// NewSalaryWorkflow wires the payroll queue reviewer.
func NewSalaryWorkflow(d Deps, admin bankapi.SalaryAdmin, ev *Evidence, r reasoner.Reasoner, logger *slog.Logger) *SalaryWorkflow {
	return &SalaryWorkflow{Deps: d, admin: admin, evidence: ev, reasoner: r, logger: logger}
}

// Name implements Workflow.
func (w *SalaryWorkflow) Name() string { return review.WorkflowSalary }

// Process implements Workflow.
func (w *SalaryWorkflow) Process(ctx context.Context) error {
	if !w.processable(w.Name()) {
		return nil
	}
	mode := w.state.Mode()

	apps, err := w.admin.ListPending(ctx)
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		return fmt.Errorf("list salary applications: %w", err)
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

func (w *SalaryWorkflow) processOne(ctx context.Context, app bankapi.SalaryApplication, mode review.Mode) {
	fp := review.Fingerprint(map[string]any{
		"applicationId":  app.ApplicationID,
		"userId":         app.UserID,
		"corporateEmail": app.CorporateEmail,
		"status":         app.Status,
		"documents":      app.Documents,
	})
	if w.ledger.IsDuplicate(w.Name(), app.ApplicationID, fp) {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	decision := w.evaluate(ctx, app)
	if decision.Action == review.ActionSkip {
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		w.logger.Info("salary application deferred",
			"application_id", app.ApplicationID, "reason", decision.Reason)
		return
	}

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

	verdict := "REJECTED"
	if decision.Action == review.ActionApprove {
		verdict = "APPROVED"
	}

	w.metrics.RecordReviewCall(ctx, w.Name())
	if err := w.admin.Review(ctx, app.ApplicationID, verdict, decision.Reason, bankapi.ReviewerID); err != nil {
		w.metrics.RecordError(ctx, w.Name())
		w.logger.Error("salary review call failed",
			"application_id", app.ApplicationID, "action", decision.Action, "error", err)
		return
	}

	w.ledger.Record(ctx, w.Name(), app.ApplicationID, app.UserID, fp, decision, mode)
	w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
}

func (w *SalaryWorkflow) evaluate(ctx context.Context, app bankapi.SalaryApplication) review.Decision {
	email := strings.ToLower(strings.TrimSpace(app.CorporateEmail))
	at := strings.Index(email, "@")
	if at < 0 || at == len(email)-1 {
		return review.Reject("Corporate email is missing or malformed.")
	}
	if len(app.Documents) == 0 {
		return review.Reject("No employment documents uploaded.")
	}

	docText, hadErrors := w.evidence.GatherText(ctx, w.Name(), app.ApplicationID, app.Documents, w.admin.Download)
	if hadErrors && docText == "" {
		return review.Skip("documents could not be retrieved")
	}

	domain := email[at+1:]
	if w.corroborates(docText, domain) {
		return review.Approve(fmt.Sprintf("Employer domain %s corroborated by documents.", domain))
	}

	result := w.reasoner.Evaluate(ctx, "SALARY_EMPLOYMENT_CHECK", map[string]any{
		"corporateEmail": email,
		"employerDomain": domain,
		"docText":        truncateText(docText, maxReasonerDocText),
	})
	switch result.Verdict {
	case reasoner.VerdictApprove:
		return review.Approve(result.Reason)
	case reasoner.VerdictReject:
		return review.Reject(result.Reason)
	default:
		return review.Reject("Documents do not mention the employer; please upload an employment letter or payslip naming the employer.")
	}
}

// corroborates accepts the literal domain, a punctuation-normalized form of
// it, the registrable organization token as a whole word, or a close fuzzy
// match that survives OCR noise.
func (w *SalaryWorkflow) corroborates(docText, domain string) bool {
	if docText == "" {
		return false
	}
	if strings.Contains(docText, domain) {
		return true
	}
	normalized := match.NormalizeAlnum(docText)
	if strings.Contains(normalized, match.NormalizeAlnum(domain)) {
		return true
	}
	token := match.DomainToken(domain)
	if token != "" && match.ContainsWord(docText, token) {
		return true
	}
	return match.BestSimilarity(token, docText) >= fuzzyDomainThreshold
}
