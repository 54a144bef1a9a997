// Package textract extracts plain text from uploaded evidence documents.
// PDFs go through a real PDF text extractor; anything else is treated as
// plain text when it decodes as printable UTF-8.
package textract

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls text out of raw document bytes.
type Extractor struct {
	logger *slog.Logger
}

// New creates a content extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractTextFromBytes extracts text per document. A document that cannot be
// parsed yields an empty string rather than failing the batch.
func (e *Extractor) ExtractTextFromBytes(ctx context.Context, docs map[string][]byte) map[string]string {
	out := make(map[string]string, len(docs))
	for name, data := range docs {
		if ctx.Err() != nil {
			out[name] = ""
			continue
		}
		out[name] = e.extractOne(name, data)
	}
	return out
}

// QualityScores rates extraction confidence per document: 1.0 when text came
// out, 0.0 when nothing usable was found.
func (e *Extractor) QualityScores(ctx context.Context, docs map[string][]byte) map[string]float64 {
	texts := e.ExtractTextFromBytes(ctx, docs)
	out := make(map[string]float64, len(texts))
	for name, text := range texts {
		if strings.TrimSpace(text) != "" {
			out[name] = 1.0
		} else {
			out[name] = 0.0
		}
	}
	return out
}

func (e *Extractor) extractOne(name string, data []byte) (text string) {
	// The PDF library panics on some malformed files; one bad upload must
	// not take down the whole review pass.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("document extraction panicked", "document", name, "panic", r)
			text = ""
		}
	}()

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return collapseWhitespace(extractPDF(data))
	}
	if isPrintableText(data) {
		return collapseWhitespace(string(data))
	}
	return ""
}

func extractPDF(data []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return ""
	}
	return sb.String()
}

// isPrintableText accepts valid UTF-8 with a dominant share of printable
// runes, so scanned binaries and images are not mistaken for text.
func isPrintableText(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}
	printable, total := 0, 0
	for _, r := range string(data) {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return total > 0 && printable*100/total >= 95
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
