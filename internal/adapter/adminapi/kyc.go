package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

// KYCClient talks to the identity service's KYC admin endpoints.
type KYCClient struct {
	client
}

// NewKYCClient creates a KYC admin client against the given base URL.
func NewKYCClient(baseURL string) *KYCClient {
	return &KYCClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *KYCClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// ListPending returns applications awaiting review.
func (c *KYCClient) ListPending(ctx context.Context) ([]bankapi.KYCApplication, error) {
	var apps []bankapi.KYCApplication
	if err := c.getJSON(ctx, "/auth/kyc/applications?status="+bankapi.StatusSubmitted, &apps); err != nil {
		return nil, fmt.Errorf("list kyc applications: %w", err)
	}
	return apps, nil
}

// Get fetches a single application by ID.
func (c *KYCClient) Get(ctx context.Context, applicationID string) (bankapi.KYCApplication, error) {
	var app bankapi.KYCApplication
	if err := c.getJSON(ctx, "/auth/kyc/applications/"+url.PathEscape(applicationID), &app); err != nil {
		return bankapi.KYCApplication{}, fmt.Errorf("get kyc application: %w", err)
	}
	return app, nil
}

// Approve marks an application approved.
func (c *KYCClient) Approve(ctx context.Context, applicationID, comment string) error {
	return c.review(ctx, applicationID, "APPROVED", comment)
}

// Reject marks an application rejected.
func (c *KYCClient) Reject(ctx context.Context, applicationID, comment string) error {
	return c.review(ctx, applicationID, "REJECTED", comment)
}

func (c *KYCClient) review(ctx context.Context, applicationID, decision, comment string) error {
	q := url.Values{}
	q.Set("decision", decision)
	if comment != "" {
		q.Set("adminComment", comment)
	}
	path := "/auth/kyc/applications/" + url.PathEscape(applicationID) + "/review?" + q.Encode()
	if _, err := c.doRequest(ctx, http.MethodPut, path, nil); err != nil {
		return fmt.Errorf("review kyc application: %w", err)
	}
	return nil
}

// Download fetches the raw bytes of a stored document.
func (c *KYCClient) Download(ctx context.Context, applicationID, path string) ([]byte, error) {
	q := url.Values{}
	q.Set("path", path)
	reqPath := "/auth/kyc/applications/" + url.PathEscape(applicationID) + "/documents?" + q.Encode()
	data, err := c.doRequest(ctx, http.MethodGet, reqPath, nil)
	if err != nil {
		return nil, fmt.Errorf("download kyc document: %w", err)
	}
	return data, nil
}
