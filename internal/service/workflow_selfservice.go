package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omnibank/reviewd/internal/domain/match"
	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/port/reasoner"
)

// Profile change request types.
const (
	changeTypeName    = "NAME_CHANGE"
	changeTypeDOB     = "DOB_CHANGE"
	changeTypeAddress = "ADDRESS_CHANGE"
)

// SelfServiceWorkflow reviews pending profile change requests by comparing
// the requested values against the current profile and corroborating them
// with the uploaded documents.
type SelfServiceWorkflow struct {
	Deps
	admin    bankapi.SelfServiceAdmin
	profiles bankapi.ProfileReader
	evidence *Evidence
	reasoner reasoner.Reasoner
	logger   *slog.Logger
}

// NewSelfServiceWorkflow wires the profile-change queue reviewer.
func NewSelfServiceWorkflow(d Deps, admin bankapi.SelfServiceAdmin, profiles bankapi.ProfileReader, ev *Evidence, r reasoner.Reasoner, logger *slog.Logger) *SelfServiceWorkflow {
	return &SelfServiceWorkflow{Deps: d, admin: admin, profiles: profiles, evidence: ev, reasoner: r, logger: logger}
}

// Name implements Workflow.
func (w *SelfServiceWorkflow) Name() string { return review.WorkflowSelfService }

// Process implements Workflow.
func (w *SelfServiceWorkflow) Process(ctx context.Context) error {
	if !w.processable(w.Name()) {
		return nil
	}
	mode := w.state.Mode()

	reqs, err := w.admin.ListPending(ctx)
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		return fmt.Errorf("list change requests: %w", err)
	}
	w.metrics.ObserveDepth(ctx, w.Name(), len(reqs))

	if mode == review.ModeOff {
		return nil
	}
	for _, req := range reqs {
		w.processOne(ctx, req, mode)
	}
	return nil
}

func (w *SelfServiceWorkflow) processOne(ctx context.Context, req bankapi.ChangeRequest, mode review.Mode) {
	fp := review.Fingerprint(map[string]any{
		"requestId":   req.RequestID,
		"userId":      req.UserID,
		"type":        req.Type,
		"status":      req.Status,
		"payloadJson": req.PayloadJSON,
		"documents":   req.Documents,
	})
	if w.ledger.IsDuplicate(w.Name(), req.RequestID, fp) {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	decision := w.evaluate(ctx, req)
	if decision.Action == review.ActionSkip {
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		w.logger.Warn("change request deferred",
			"request_id", req.RequestID, "user_id", req.UserID, "reason", decision.Reason)
		return
	}

	if mode == review.ModeDryRun {
		w.ledger.Record(ctx, w.Name(), req.RequestID, req.UserID, fp, decision, mode)
		w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
		return
	}

	fresh, err := w.admin.Get(ctx, req.RequestID)
	if err != nil || fresh.Status != bankapi.StatusSubmitted {
		w.metrics.RecordDuplicate(w.Name())
		return
	}

	w.metrics.RecordReviewCall(ctx, w.Name())
	switch decision.Action {
	case review.ActionApprove:
		err = w.admin.Approve(ctx, req.RequestID, decision.Reason)
	case review.ActionReject:
		err = w.admin.Reject(ctx, req.RequestID, decision.Reason)
	}
	if err != nil {
		w.metrics.RecordError(ctx, w.Name())
		w.logger.Error("change request review call failed",
			"request_id", req.RequestID, "action", decision.Action, "error", err)
		return
	}

	w.ledger.Record(ctx, w.Name(), req.RequestID, req.UserID, fp, decision, mode)
	w.metrics.RecordDecision(ctx, w.Name(), decision.Action)
}

func (w *SelfServiceWorkflow) evaluate(ctx context.Context, req bankapi.ChangeRequest) review.Decision {
	if len(req.Documents) == 0 {
		return review.Reject("No supporting documents uploaded for requested change.")
	}

	var payload map[string]any
	if strings.TrimSpace(req.PayloadJSON) != "" {
		if err := json.Unmarshal([]byte(req.PayloadJSON), &payload); err != nil {
			return review.Reject("Invalid payload JSON. " + err.Error())
		}
	}
	if len(payload) == 0 {
		return review.Reject("Empty or missing payload for requested change.")
	}

	profile, err := w.profiles.ProfileForUser(ctx, req.UserID)
	if err != nil {
		return review.Skip("unable to fetch current profile for comparison: " + err.Error())
	}

	docText, _ := w.evidence.GatherText(ctx, w.Name(), req.RequestID, req.Documents, w.admin.Download)

	switch strings.ToUpper(req.Type) {
	case changeTypeName:
		return w.evaluateName(ctx, payload, profile, docText)
	case changeTypeDOB:
		return w.evaluateDOB(ctx, payload, profile, docText)
	case changeTypeAddress:
		return w.evaluateAddress(ctx, payload, profile, docText)
	default:
		return review.Reject("Unknown request type: " + req.Type)
	}
}

func (w *SelfServiceWorkflow) evaluateName(ctx context.Context, payload map[string]any, profile bankapi.Profile, docText string) review.Decision {
	// The payload carries either a nested "name" object or flat fields.
	source := payload
	if nested, ok := payload["name"].(map[string]any); ok {
		source = nested
	}
	newFirst := payloadString(source, "firstName")
	newMiddle := payloadString(source, "middleName")
	newLast := payloadString(source, "lastName")

	if newFirst == "" && newLast == "" {
		return review.Reject("Name change payload must include firstName and/or lastName.")
	}
	changed := newFirst != profile.FirstName ||
		newMiddle != profile.MiddleName ||
		newLast != profile.LastName
	if !changed {
		return review.Reject("Requested name is identical to current record.")
	}

	nameInDocs := (newFirst != "" && match.ContainsFold(docText, newFirst)) ||
		(newLast != "" && match.ContainsFold(docText, newLast))
	if nameInDocs {
		return review.Approve(fmt.Sprintf(
			"Auto-approved name change to '%s %s %s' based on provided documents.",
			newFirst, newMiddle, newLast))
	}

	result := w.reasoner.Evaluate(ctx, "SELF_SERVICE_NAME_CHECK", map[string]any{
		"type":          changeTypeName,
		"currentFirst":  profile.FirstName,
		"currentMiddle": profile.MiddleName,
		"currentLast":   profile.LastName,
		"newFirst":      newFirst,
		"newMiddle":     newMiddle,
		"newLast":       newLast,
		"docText":       truncateText(docText, maxReasonerDocText),
	})
	switch result.Verdict {
	case reasoner.VerdictApprove:
		return review.Approve("AI-approved name change. " + result.Reason)
	case reasoner.VerdictReject:
		return review.Reject(result.Reason)
	default:
		return review.Reject("Documents do not appear to contain the requested name.")
	}
}

func (w *SelfServiceWorkflow) evaluateDOB(ctx context.Context, payload map[string]any, profile bankapi.Profile, docText string) review.Decision {
	dobStr := payloadString(payload, "dateOfBirth")
	if dobStr == "" {
		dobStr = payloadString(payload, "dob")
	}
	if dobStr == "" {
		return review.Reject("DOB change payload must include 'dateOfBirth' (YYYY-MM-DD).")
	}
	newDOB, err := time.Parse("2006-01-02", dobStr)
	if err != nil {
		return review.Reject("Invalid dateOfBirth format. Expected YYYY-MM-DD.")
	}
	if profile.DateOfBirth == newDOB.Format("2006-01-02") {
		return review.Reject("Requested dateOfBirth matches current record.")
	}

	if docHasDate(docText, newDOB) {
		return review.Approve(fmt.Sprintf(
			"Auto-approved DOB change to %s based on provided documents.",
			newDOB.Format("2006-01-02")))
	}

	result := w.reasoner.Evaluate(ctx, "SELF_SERVICE_DOB_CHECK", map[string]any{
		"type":       changeTypeDOB,
		"currentDob": profile.DateOfBirth,
		"newDob":     newDOB.Format("2006-01-02"),
		"docText":    truncateText(docText, maxReasonerDocText),
	})
	switch result.Verdict {
	case reasoner.VerdictApprove:
		return review.Approve("AI-approved DOB change. " + result.Reason)
	case reasoner.VerdictReject:
		return review.Reject(result.Reason)
	default:
		return review.Reject("Documents do not appear to contain the requested date of birth.")
	}
}

func (w *SelfServiceWorkflow) evaluateAddress(ctx context.Context, payload map[string]any, profile bankapi.Profile, docText string) review.Decision {
	newAddr := payloadString(payload, "address")
	if newAddr == "" {
		newAddr = payloadString(payload, "fullAddress")
	}
	if newAddr == "" {
		return review.Reject("Address change payload must include 'address'.")
	}
	if newAddr == profile.Address {
		return review.Reject("Requested address matches current record.")
	}

	if match.ContainsFold(docText, newAddr) {
		return review.Approve("Auto-approved address change based on provided documents.")
	}

	result := w.reasoner.Evaluate(ctx, "SELF_SERVICE_ADDRESS_CHECK", map[string]any{
		"type":           changeTypeAddress,
		"currentAddress": profile.Address,
		"newAddress":     newAddr,
		"docText":        truncateText(docText, maxReasonerDocText),
	})
	switch result.Verdict {
	case reasoner.VerdictApprove:
		return review.Approve("AI-approved address change. " + result.Reason)
	case reasoner.VerdictReject:
		return review.Reject(result.Reason)
	default:
		return review.Reject("Documents do not appear to contain the requested address.")
	}
}

// docHasDate checks the common renderings of a date in extracted text.
func docHasDate(text string, date time.Time) bool {
	if text == "" {
		return false
	}
	for _, form := range match.DateForms(date) {
		if strings.Contains(text, strings.ToLower(form)) {
			return true
		}
	}
	return false
}

func payloadString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
