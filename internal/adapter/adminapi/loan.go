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

// LoanClient talks to the loan service's admin endpoints.
type LoanClient struct {
	client
}

// NewLoanClient creates a loan admin client against the given base URL.
func NewLoanClient(baseURL string) *LoanClient {
	return &LoanClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *LoanClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// List returns all loan applications regardless of status.
func (c *LoanClient) List(ctx context.Context) ([]bankapi.Loan, error) {
	var loans []bankapi.Loan
	if err := c.getJSON(ctx, "/loans", &loans); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// Get fetches a single loan by ID.
func (c *LoanClient) Get(ctx context.Context, loanID string) (bankapi.Loan, error) {
	var loan bankapi.Loan
	if err := c.getJSON(ctx, "/loans/"+url.PathEscape(loanID), &loan); err != nil {
		return bankapi.Loan{}, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

// Approve marks a loan approved.
func (c *LoanClient) Approve(ctx context.Context, loanID string) error {
	path := "/loans/" + url.PathEscape(loanID) + "/approve"
	if _, err := c.doRequest(ctx, http.MethodPut, path, nil); err != nil {
		return fmt.Errorf("approve loan: %w", err)
	}
	return nil
}

// Reject marks a loan rejected with a reason.
func (c *LoanClient) Reject(ctx context.Context, loanID, reason string) error {
	body, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return fmt.Errorf("marshal loan rejection: %w", err)
	}
	path := "/loans/" + url.PathEscape(loanID) + "/reject"
	if _, err := c.doRequest(ctx, http.MethodPut, path, body); err != nil {
		return fmt.Errorf("reject loan: %w", err)
	}
	return nil
}
