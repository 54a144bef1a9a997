// Package reasoner defines the AI-reasoning port consulted when deterministic
// rules and document evidence are inconclusive.
package reasoner

import (
	"context"
	"strings"
)

// Verdict is the reasoner's conclusion about one task.
type Verdict string

const (
	VerdictApprove      Verdict = "APPROVE"
	VerdictReject       Verdict = "REJECT"
	VerdictInconclusive Verdict = "INCONCLUSIVE"
)

// ParseVerdict maps a string to a Verdict. Unknown values report ok=false;
// callers treat them as inconclusive.
func ParseVerdict(s string) (Verdict, bool) {
	switch Verdict(strings.ToUpper(strings.TrimSpace(s))) {
	case VerdictApprove:
		return VerdictApprove, true
	case VerdictReject:
		return VerdictReject, true
	case VerdictInconclusive:
		return VerdictInconclusive, true
	default:
		return VerdictInconclusive, false
	}
}

// Result is a verdict with a short human-readable justification.
type Result struct {
	Verdict Verdict `json:"decision"`
	Reason  string  `json:"reason"`
}

// Reasoner evaluates a named task over a structured input bag.
//
// Implementations never return an error and never panic toward the caller:
// any internal failure degrades to VerdictInconclusive with a diagnostic
// reason. The reasoner is advisory; workflows remain the source of truth.
type Reasoner interface {
	Evaluate(ctx context.Context, task string, inputs map[string]any) Result
}
