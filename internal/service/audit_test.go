package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/omnibank/reviewd/internal/domain/review"
)

func TestLedgerIdempotency(t *testing.T) {
	ledger := NewAuditLedger(testLogger(), nil)
	ctx := context.Background()

	if ledger.IsDuplicate("kyc", "app-1", "fp-a") {
		t.Fatal("empty ledger reported a duplicate")
	}
	ledger.Record(ctx, "kyc", "app-1", "u1", "fp-a", review.Approve("ok"), review.ModeAuto)

	if !ledger.IsDuplicate("kyc", "app-1", "fp-a") {
		t.Fatal("recorded decision not detected as duplicate")
	}
	// A new fingerprint means the item changed and is decidable again.
	if ledger.IsDuplicate("kyc", "app-1", "fp-b") {
		t.Fatal("changed fingerprint must not be a duplicate")
	}
	// Same item key in another queue is independent.
	if ledger.IsDuplicate("loans", "app-1", "fp-a") {
		t.Fatal("queues must not share ledger keys")
	}
}

func TestLedgerDryRunDoesNotBlockExecution(t *testing.T) {
	ledger := NewAuditLedger(testLogger(), nil)
	ctx := context.Background()

	ledger.Record(ctx, "loans", "loan-1", "u1", "fp", review.Approve("ok"), review.ModeDryRun)
	if ledger.IsDuplicate("loans", "loan-1", "fp") {
		t.Fatal("dry-run preview must not count as a duplicate")
	}

	ledger.Record(ctx, "loans", "loan-1", "u1", "fp", review.Approve("ok"), review.ModeAuto)
	if !ledger.IsDuplicate("loans", "loan-1", "fp") {
		t.Fatal("executed decision must count as a duplicate")
	}
	if ledger.Size() != 1 {
		t.Fatalf("executed decision should supersede the preview, size %d", ledger.Size())
	}
}

func TestLedgerPublishesDecisionEvents(t *testing.T) {
	pub := &capturePublisher{}
	ledger := NewAuditLedger(testLogger(), pub)

	limit := 50000.0
	entry := ledger.Record(context.Background(), "cards", "card-9", "u2", "fp",
		review.ApproveWithLimit(limit, "standard tier"), review.ModeAuto)

	if len(pub.subjects) != 1 || pub.subjects[0] != "reviews.decision.cards" {
		t.Fatalf("unexpected subjects: %v", pub.subjects)
	}
	var got AuditEntry
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("event payload not valid JSON: %v", err)
	}
	if got.ID != entry.ID || got.Action != review.ActionApprove || got.Limit == nil || *got.Limit != limit {
		t.Fatalf("event payload mismatch: %+v", got)
	}
}

func TestLedgerEntriesNewestFirstAndCapped(t *testing.T) {
	ledger := NewAuditLedger(testLogger(), nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	ledger.nowFunc = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Second)
	}

	ctx := context.Background()
	for n := 0; n < maxAuditEntries+25; n++ {
		ledger.Record(ctx, "kyc", fmt.Sprintf("app-%d", n), "u1",
			fmt.Sprintf("fp-%d", n), review.Reject("no"), review.ModeDryRun)
	}

	entries := ledger.Entries()
	if len(entries) != maxAuditEntries {
		t.Fatalf("expected cap of %d entries, got %d", maxAuditEntries, len(entries))
	}
	for j := 1; j < len(entries); j++ {
		if entries[j].DecidedAt.After(entries[j-1].DecidedAt) {
			t.Fatalf("entries not newest first at index %d", j)
		}
	}
	if ledger.Size() != maxAuditEntries+25 {
		t.Fatalf("cap must not drop ledger state, size %d", ledger.Size())
	}
}
