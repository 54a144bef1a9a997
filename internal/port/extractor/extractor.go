// Package extractor defines the document text extraction port (OCR).
package extractor

import "context"

// Extractor converts raw document bytes into plain text.
//
// Both methods take documents keyed by a label (typically the storage path)
// and return results under the same keys. A document that cannot be parsed
// yields an empty string for its key; one bad document must not blank out
// the others.
type Extractor interface {
	// ExtractTextFromBytes returns whitespace-collapsed plain text per document.
	ExtractTextFromBytes(ctx context.Context, docs map[string][]byte) map[string]string

	// QualityScores returns a [0,1] extraction confidence per document.
	QualityScores(ctx context.Context, docs map[string][]byte) map[string]float64
}
