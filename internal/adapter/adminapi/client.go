// Package adminapi provides HTTP clients for the admin endpoints of the
// backend banking services (identity, loan, card, account, self-service).
// All clients share the same request plumbing and optional circuit breaker.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

type client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

func newClient(baseURL string) client {
	return client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *client) setBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// doRequest performs an HTTP call through the breaker (when attached) and
// returns the raw response body. A 404 maps to bankapi.ErrNotFound so callers
// can tell a vanished item from a transport failure.
func (c *client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			return bankapi.ErrNotFound
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("admin API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}

// getJSON fetches path and decodes the response into out.
func (c *client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
