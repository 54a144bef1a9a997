package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/events"
)

// maxAuditEntries bounds what the audit endpoint returns in one call.
const maxAuditEntries = 500

// AuditEntry records one decision the agent took, or would have taken in
// dry-run mode.
type AuditEntry struct {
	ID          string        `json:"id"`
	Workflow    string        `json:"workflow"`
	ItemID      string        `json:"itemId"`
	UserID      string        `json:"userId,omitempty"`
	Fingerprint string        `json:"fingerprint"`
	Action      review.Action `json:"action"`
	Limit       *float64      `json:"limit,omitempty"`
	Reason      string        `json:"reason"`
	Mode        review.Mode   `json:"mode"`
	DecidedAt   time.Time     `json:"decidedAt"`
}

// AuditLedger is the in-memory decision ledger. It doubles as the idempotency
// store: an item whose evidence fingerprint was already decided is not
// reconsidered until its inputs change.
type AuditLedger struct {
	mu      sync.RWMutex
	byKey   map[string]AuditEntry
	logger  *slog.Logger
	events  events.Publisher
	nowFunc func() time.Time
}

// NewAuditLedger creates an empty ledger. Decisions are additionally
// published as events; publish failures are logged and swallowed because the
// ledger, not the stream, is the source of truth.
func NewAuditLedger(logger *slog.Logger, pub events.Publisher) *AuditLedger {
	if pub == nil {
		pub = events.Discard{}
	}
	return &AuditLedger{
		byKey:   make(map[string]AuditEntry),
		logger:  logger,
		events:  pub,
		nowFunc: time.Now,
	}
}

func ledgerKey(workflow, itemID, fingerprint string) string {
	return workflow + "::" + itemID + "::" + fingerprint
}

// IsDuplicate reports whether this exact item state was already decided by a
// side-effecting pass. Dry-run entries are previews: they stay visible in the
// audit listing but must never block a later AUTO pass from acting, so they
// do not count as duplicates.
func (l *AuditLedger) IsDuplicate(workflow, itemID, fingerprint string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.byKey[ledgerKey(workflow, itemID, fingerprint)]
	return ok && entry.Mode != review.ModeDryRun
}

// Record stores a decision and publishes it to the decision stream. Entries
// are recorded in DRY_RUN as well so operators can audit what the agent
// would have done.
func (l *AuditLedger) Record(ctx context.Context, workflow, itemID, userID, fingerprint string, d review.Decision, mode review.Mode) AuditEntry {
	entry := AuditEntry{
		ID:          uuid.NewString(),
		Workflow:    workflow,
		ItemID:      itemID,
		UserID:      userID,
		Fingerprint: fingerprint,
		Action:      d.Action,
		Limit:       d.Limit,
		Reason:      d.Reason,
		Mode:        mode,
		DecidedAt:   l.nowFunc().UTC(),
	}

	l.mu.Lock()
	l.byKey[ledgerKey(workflow, itemID, fingerprint)] = entry
	l.mu.Unlock()

	l.logger.Info("decision recorded",
		"workflow", workflow,
		"item_id", itemID,
		"action", d.Action,
		"mode", mode,
		"reason", d.Reason)

	if data, err := json.Marshal(entry); err == nil {
		if err := l.events.Publish(ctx, "reviews.decision."+workflow, data); err != nil {
			l.logger.Warn("decision event publish failed", "workflow", workflow, "error", err)
		}
	}
	return entry
}

// Entries returns decisions newest first, capped at maxAuditEntries.
func (l *AuditLedger) Entries() []AuditEntry {
	l.mu.RLock()
	out := make([]AuditEntry, 0, len(l.byKey))
	for _, e := range l.byKey {
		out = append(out, e)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].DecidedAt.Equal(out[j].DecidedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].DecidedAt.After(out[j].DecidedAt)
	})
	if len(out) > maxAuditEntries {
		out = out[:maxAuditEntries]
	}
	return out
}

// Size returns the number of recorded decisions.
func (l *AuditLedger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byKey)
}
