// Package noop provides inert reasoner and extractor implementations for
// environments without an LLM proxy or OCR support. With these wired, every
// workflow falls through to its conservative default.
package noop

import (
	"context"

	"github.com/omnibank/reviewd/internal/port/reasoner"
)

// Reasoner always answers INCONCLUSIVE.
type Reasoner struct{}

// Evaluate implements reasoner.Reasoner.
func (Reasoner) Evaluate(context.Context, string, map[string]any) reasoner.Result {
	return reasoner.Result{
		Verdict: reasoner.VerdictInconclusive,
		Reason:  "no reasoner configured",
	}
}

// Extractor returns no text for any document.
type Extractor struct{}

// ExtractTextFromBytes implements extractor.Extractor.
func (Extractor) ExtractTextFromBytes(_ context.Context, docs map[string][]byte) map[string]string {
	out := make(map[string]string, len(docs))
	for name := range docs {
		out[name] = ""
	}
	return out
}

// QualityScores implements extractor.Extractor.
func (Extractor) QualityScores(_ context.Context, docs map[string][]byte) map[string]float64 {
	out := make(map[string]float64, len(docs))
	for name := range docs {
		out[name] = 1.0
	}
	return out
}
