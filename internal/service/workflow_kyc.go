package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/omnibank/reviewd/internal/domain/match"
	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/port/reasoner"
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{12}$`)
	taxIDPattern      = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
)

// KYCWorkflow reviews pending identity verification applications. Structural
// checks run first; applications that pass are corroborated against the text
// extracted from their uploaded documents, with the reasoner as tiebreaker.
type KYCWorkflow struct {
	Deps
	admin    bankapi.KYCAdmin
	evidence *Evidence
	reasoner reasoner.Reasoner
	logger   *slog.Logger
}

// NewKYCWorkflow wires the KYC queue reviewer.
func NewKYCWorkflow(d Deps, admin bankapi.KYCAdmin, ev *Evidence, r reasoner.Reasoner, logger *slog.Logger) *KYCWorkflow {
	return &KYCWorkflow{Deps: d, admin: admin, evidence: ev, reasoner: r, logger: logger}
}

// Name implements Workflow.
func (w *KYCWorkflow) Name() string { return review.WorkflowKYC }

// Process implements Workflow.
func (w *KYCWorkflow) Process(ctx context.Context) error {
	if !w.processable(w.Name()) {
		return nil
	}
	mode := w.state.Mode()

	apps, err := w.admin.ListPending(ctx)
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		return fmt.Errorf("list kyc applications: %w", err)
	}
	w.metrics.ObserveDepth(ctx, w.Name(), len(apps))

	// OFF still reports queue depth; it only suppresses decisioning.
	if mode == review.ModeOff {
		return nil
	}
	for _, app := range apps {
		w.processOne(ctx, app, mode)
	}
	return nil
}

func (w *KYCWorkflow) processOne(ctx context.Context, app bankapi.KYCApplication, mode review.Mode) {
	fp := review.Fingerprint(map[string]any{
		"applicationId": app.ApplicationID,
		"userId":        app.UserID,
		"nationalId":    app.NationalID,
		"taxId":         app.TaxID,
		"addressLine1":  app.AddressLine1,
		"city":          app.City,
		"state":         app.State,
		"postalCode":    app.PostalCode,
		"status":        app.Status,
		"documentPaths": app.DocumentPaths,
	})
	if w.ledger.IsDuplicate(w.Name(), app.ApplicationID, fp) {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	decision := w.evaluate(ctx, app)
	if decision.Action == review.ActionSkip {
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		w.logger.Info("kyc application deferred",
			"application_id", app.ApplicationID, "reason", decision.Reason)
		return
	}

	if mode == review.ModeDryRun {
		w.ledger.Record(ctx, w.Name(), app.ApplicationID, app.UserID, fp, decision, mode)
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		return
	}

	// A human may have decided this application while the pass ran.
	fresh, err := w.admin.Get(ctx, app.ApplicationID)
	if err != nil || fresh.Status != bankapi.StatusSubmitted {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	w.metrics.RecordReviewCall(ctx, w.Name())
	switch decision.Action {
	case review.ActionApprove:
		err = w.admin.Approve(ctx, app.ApplicationID, decision.Reason)
	case review.ActionReject:
		err = w.admin.Reject(ctx, app.ApplicationID, decision.Reason)
	}
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		w.logger.Error("kyc review call failed",
			"application_id", app.ApplicationID, "action", decision.Action, "error", err)
		return
	}

	w.ledger.Record(ctx, w.Name(), app.ApplicationID, app.UserID, fp, decision, mode)
	w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
}

func (w *KYCWorkflow) evaluate(ctx context.Context, app bankapi.KYCApplication) review.Decision {
	var problems []string
	if !nationalIDPattern.MatchString(app.NationalID) {
		problems = append(problems, "national ID must be 12 digits")
	}
	if !taxIDPattern.MatchString(app.TaxID) {
		problems = append(problems, "tax ID format is invalid")
	}
	if app.AddressLine1 == "" || app.City == "" || app.State == "" || app.PostalCode == "" {
		problems = append(problems, "address is incomplete")
	}
	if len(app.DocumentPaths) == 0 {
		problems = append(problems, "no identity documents uploaded")
	}
	if len(problems) > 0 {
		return review.Reject("Application failed validation: " + strings.Join(problems, "; "))
	}

	docText, hadErrors := w.evidence.GatherText(ctx, w.Name(), app.ApplicationID, app.DocumentPaths, w.admin.Download)
	if hadErrors && docText == "" {
		return review.Skip("documents could not be retrieved")
	}

	if w.corroborates(docText, app) {
		return review.Approve("Documents corroborate application details.")
	}

	result := w.reasoner.Evaluate(ctx, "KYC_VALIDATION", map[string]any{
		"nationalId":   app.NationalID,
		"taxId":        app.TaxID,
		"addressLine1": app.AddressLine1,
		"city":         app.City,
		"state":        app.State,
		"postalCode":   app.PostalCode,
		"docText":      truncateText(docText, maxReasonerDocText),
	})
	switch result.Verdict {
	case reasoner.VerdictApprove:
		return review.Approve(result.Reason)
	case reasoner.VerdictReject:
		return review.Reject(result.Reason)
	default:
		return review.Reject("Documents do not corroborate application details.")
	}
}

// corroborates looks for the tax ID, the national ID tail or a usable part of
// the declared address in the extracted document text.
func (w *KYCWorkflow) corroborates(docText string, app bankapi.KYCApplication) bool {
	if docText == "" {
		return false
	}
	if match.ContainsFold(docText, app.TaxID) {
		return true
	}
	if len(app.NationalID) >= 4 && strings.Contains(docText, app.NationalID[len(app.NationalID)-4:]) {
		return true
	}
	return match.ContainsFold(docText, app.AddressLine1) ||
		match.ContainsFold(docText, app.City) ||
		match.ContainsFold(docText, app.PostalCode)
}
