package textract_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/omnibank/reviewd/internal/adapter/textract"
)

func newExtractor() *textract.Extractor {
	return textract.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractPlainText(t *testing.T) {
	e := newExtractor()
	docs := map[string][]byte{
		"letter.txt": []byte("Employment  letter\n\nACME   Corp Ltd"),
	}

	out := e.ExtractTextFromBytes(context.Background(), docs)
	if got := out["letter.txt"]; got != "Employment letter ACME Corp Ltd" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractBinaryYieldsEmpty(t *testing.T) {
	e := newExtractor()
	docs := map[string][]byte{
		"photo.jpg": {0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46},
	}

	out := e.ExtractTextFromBytes(context.Background(), docs)
	if out["photo.jpg"] != "" {
		t.Fatalf("expected empty text for binary, got %q", out["photo.jpg"])
	}
}

func TestExtractMalformedPDFYieldsEmpty(t *testing.T) {
	e := newExtractor()
	docs := map[string][]byte{
		"broken.pdf": []byte("%PDF-1.7 this is not a real pdf body"),
	}

	out := e.ExtractTextFromBytes(context.Background(), docs)
	if out["broken.pdf"] != "" {
		t.Fatalf("expected empty text for malformed pdf, got %q", out["broken.pdf"])
	}
}

func TestQualityScores(t *testing.T) {
	e := newExtractor()
	docs := map[string][]byte{
		"letter.txt": []byte("payslip from ACME"),
		"photo.jpg":  {0xFF, 0xD8, 0xFF, 0xE0},
	}

	scores := e.QualityScores(context.Background(), docs)
	if scores["letter.txt"] != 1.0 {
		t.Fatalf("expected 1.0 for text doc, got %v", scores["letter.txt"])
	}
	if scores["photo.jpg"] != 0.0 {
		t.Fatalf("expected 0.0 for binary doc, got %v", scores["photo.jpg"])
	}
}
