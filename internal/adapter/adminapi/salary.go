package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

// SalaryClient talks to the account service's payroll-application admin
// endpoints.
type SalaryClient struct {
	client
}

// NewSalaryClient creates a payroll-application admin client.
func NewSalaryClient(baseURL string) *SalaryClient {
	return &SalaryClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *SalaryClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// ListPending returns payroll-account applications awaiting review.
func (c *SalaryClient) ListPending(ctx context.Context) ([]bankapi.SalaryApplication, error) {
	var apps []bankapi.SalaryApplication
	if err := c.getJSON(ctx, "/accounts/salary/applications?status="+bankapi.StatusSubmitted, &apps); err != nil {
		return nil, fmt.Errorf("list salary applications: %w", err)
	}
	return apps, nil
}

// Get fetches a single application by ID.
func (c *SalaryClient) Get(ctx context.Context, applicationID string) (bankapi.SalaryApplication, error) {
	var app bankapi.SalaryApplication
	if err := c.getJSON(ctx, "/accounts/salary/applications/"+url.PathEscape(applicationID), &app); err != nil {
		return bankapi.SalaryApplication{}, fmt.Errorf("get salary application: %w", err)
	}
	return app, nil
}

// Review submits a decision for a payroll-account application.
func (c *SalaryClient) Review(ctx context.Context, applicationID, decision, comment, reviewerID string) error {
	q := url.Values{}
	q.Set("decision", decision)
	if comment != "" {
		q.Set("adminComment", comment)
	}
	if reviewerID != "" {
		q.Set("reviewerId", reviewerID)
	}
	path := "/accounts/salary/applications/" + url.PathEscape(applicationID) + "/review?" + q.Encode()
	if _, err := c.doRequest(ctx, http.MethodPut, path, nil); err != nil {
		return fmt.Errorf("review salary application: %w", err)
	}
	return nil
}

// Download fetches the raw bytes of a stored document.
func (c *SalaryClient) Download(ctx context.Context, applicationID, path string) ([]byte, error) {
	q := url.Values{}
	q.Set("path", path)
	reqPath := "/accounts/salary/applications/" + url.PathEscape(applicationID) + "/documents?" + q.Encode()
	data, err := c.doRequest(ctx, http.MethodGet, reqPath, nil)
	if err != nil {
		return nil, fmt.Errorf("download salary document: %w", err)
	}
	return data, nil
}
