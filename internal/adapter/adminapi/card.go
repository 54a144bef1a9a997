package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

// CardClient talks to the card service's admin endpoints.
type CardClient struct {
	client
}

// NewCardClient creates a card admin client against the given base URL.
func NewCardClient(baseURL string) *CardClient {
	return &CardClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *CardClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// ListPending returns card applications awaiting review.
func (c *CardClient) ListPending(ctx context.Context) ([]bankapi.CardApplication, error) {
	var apps []bankapi.CardApplication
	if err := c.getJSON(ctx, "/cards/applications?status="+bankapi.StatusSubmitted, &apps); err != nil {
		return nil, fmt.Errorf("list card applications: %w", err)
	}
	return apps, nil
}

// Get fetches a single card application by ID.
func (c *CardClient) Get(ctx context.Context, applicationID string) (bankapi.CardApplication, error) {
	var app bankapi.CardApplication
	if err := c.getJSON(ctx, "/cards/applications/"+url.PathEscape(applicationID), &app); err != nil {
		return bankapi.CardApplication{}, fmt.Errorf("get card application: %w", err)
	}
	return app, nil
}

// Review submits a decision for a card application.
func (c *CardClient) Review(ctx context.Context, applicationID string, review bankapi.CardReview) error {
	body, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal card review: %w", err)
	}
	path := "/cards/applications/" + url.PathEscape(applicationID) + "/review"
	if _, err := c.doRequest(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("review card application: %w", err)
	}
	return nil
}
