package adminapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

// AccountClient reads account data from the account service.
type AccountClient struct {
	client
}

// NewAccountClient creates an account reader against the given base URL.
func NewAccountClient(baseURL string) *AccountClient {
	return &AccountClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *AccountClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// AccountsForUser returns all accounts held by a user.
func (c *AccountClient) AccountsForUser(ctx context.Context, userID string) ([]bankapi.Account, error) {
	var accounts []bankapi.Account
	if err := c.getJSON(ctx, "/accounts/user/"+url.PathEscape(userID), &accounts); err != nil {
		return nil, fmt.Errorf("accounts for user: %w", err)
	}
	return accounts, nil
}
