// Package cache defines the port interface for the document-text cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-valued key-value cache with per-entry TTL. The orchestrator
// uses it to keep extracted document text across polling passes so a re-polled
// item does not re-download and re-OCR unchanged documents.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
