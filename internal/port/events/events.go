// Package events defines the port for publishing decision events.
package events

import "context"

// Publisher delivers serialized decision events to a broker. Publishing is
// best-effort from the orchestrator's perspective; a failed publish must
// never fail the decision that produced it.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Discard is a Publisher used when no broker is configured.
type Discard struct{}

// Publish drops the event.
func (Discard) Publish(context.Context, string, []byte) error { return nil }

// Close is a no-op.
func (Discard) Close() error { return nil }
