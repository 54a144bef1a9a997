package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omnibank/reviewd/internal/port/cache"
	"github.com/omnibank/reviewd/internal/port/extractor"
)

// maxConcurrentDownloads bounds parallel document fetches per item.
const maxConcurrentDownloads = 4

// DocumentSource downloads one stored document for an item.
type DocumentSource func(ctx context.Context, itemID, path string) ([]byte, error)

// Evidence gathers and extracts document text for corroboration checks.
// Extracted text is cached per document path so repeated passes over an item
// that is still pending do not re-download or re-extract anything.
type Evidence struct {
	extractor extractor.Extractor
	cache     cache.Cache
	ttl       time.Duration
	logger    *slog.Logger
}

// NewEvidence creates the evidence gatherer. The cache may be nil.
func NewEvidence(ex extractor.Extractor, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Evidence {
	return &Evidence{extractor: ex, cache: c, ttl: ttl, logger: logger}
}

// GatherText downloads and extracts all documents of an item and returns the
// combined lowercased text plus a flag for whether any document failed to
// download. Extraction failures yield empty text, not errors; only transport
// failures count as errors here.
func (e *Evidence) GatherText(ctx context.Context, workflow, itemID string, paths []string, src DocumentSource) (string, bool) {
	type fetched struct {
		path string
		data []byte
	}

	var (
		mu       sync.Mutex
		texts    = make(map[string]string, len(paths))
		toFetch  []string
		hadError bool
	)

	for _, p := range paths {
		key := cacheKey(workflow, itemID, p)
		if e.cache != nil {
			if val, ok, err := e.cache.Get(ctx, key); err == nil && ok {
				texts[p] = string(val)
				continue
			}
		}
		toFetch = append(toFetch, p)
	}

	var pending []fetched
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for _, p := range toFetch {
		g.Go(func() error {
			data, err := src(gctx, itemID, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("document download failed",
					"workflow", workflow, "item_id", itemID, "path", p, "error", err)
				hadError = true
				return nil
			}
			pending = append(pending, fetched{path: p, data: data})
			return nil
		})
	}
	_ = g.Wait()

	if len(pending) > 0 {
		docs := make(map[string][]byte, len(pending))
		for _, f := range pending {
			docs[f.path] = f.data
		}
		extracted := e.extractor.ExtractTextFromBytes(ctx, docs)
		for p, text := range extracted {
			texts[p] = text
			if e.cache != nil {
				_ = e.cache.Set(ctx, cacheKey(workflow, itemID, p), []byte(text), e.ttl)
			}
		}
	}

	// Concatenate in declared document order regardless of fetch order.
	ordered := make([]string, 0, len(paths))
	for _, p := range paths {
		if t := texts[p]; t != "" {
			ordered = append(ordered, t)
		}
	}

	return strings.ToLower(strings.Join(ordered, " ")), hadError
}

func cacheKey(workflow, itemID, path string) string {
	return workflow + "/" + itemID + "/" + path
}
