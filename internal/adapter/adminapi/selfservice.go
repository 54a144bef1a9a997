package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

// SelfServiceClient talks to the self-service admin endpoints for profile
// change requests.
type SelfServiceClient struct {
	client
}

// NewSelfServiceClient creates a self-service admin client.
func NewSelfServiceClient(baseURL string) *SelfServiceClient {
	return &SelfServiceClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *SelfServiceClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// ListPending returns change requests awaiting review.
func (c *SelfServiceClient) ListPending(ctx context.Context) ([]bankapi.ChangeRequest, error) {
	var reqs []bankapi.ChangeRequest
	if err := c.getJSON(ctx, "/self-service/admin/requests?status="+bankapi.StatusSubmitted, &reqs); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return reqs, nil
}

// Get fetches a single change request by ID.
func (c *SelfServiceClient) Get(ctx context.Context, requestID string) (bankapi.ChangeRequest, error) {
	var req bankapi.ChangeRequest
	if err := c.getJSON(ctx, "/self-service/admin/requests/"+url.PathEscape(requestID), &req); err != nil {
		return bankapi.ChangeRequest{}, fmt.Errorf("get change request: %w", err)
	}
	return req, nil
}

// Approve marks a change request approved.
func (c *SelfServiceClient) Approve(ctx context.Context, requestID, comment string) error {
	return c.decide(ctx, requestID, "approve", comment)
}

// Reject marks a change request rejected.
func (c *SelfServiceClient) Reject(ctx context.Context, requestID, comment string) error {
	return c.decide(ctx, requestID, "reject", comment)
}

func (c *SelfServiceClient) decide(ctx context.Context, requestID, verb, comment string) error {
	body, err := json.Marshal(map[string]string{
		"adminComment": comment,
		"reviewerId":   bankapi.ReviewerID,
	})
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	path := "/self-service/admin/requests/" + url.PathEscape(requestID) + "/" + verb
	if _, err := c.doRequest(ctx, http.MethodPost, path, body); err != nil {
		return fmt.Errorf("%s change request: %w", verb, err)
	}
	return nil
}

// Download fetches a stored document. The relative path segments are escaped
// individually so nested storage paths survive the round trip.
func (c *SelfServiceClient) Download(ctx context.Context, requestID, path string) ([]byte, error) {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	reqPath := "/self-service/admin/requests/" + url.PathEscape(requestID) + "/documents/" + strings.Join(parts, "/")
	data, err := c.doRequest(ctx, http.MethodGet, reqPath, nil)
	if err != nil {
		return nil, fmt.Errorf("download change request document: %w", err)
	}
	return data, nil
}
