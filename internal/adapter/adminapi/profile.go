package adminapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/resilience"
)

// ProfileClient reads customer profiles from the identity service.
type ProfileClient struct {
	client
}

// NewProfileClient creates a profile reader against the given base URL.
func NewProfileClient(baseURL string) *ProfileClient {
	return &ProfileClient{client: newClient(baseURL)}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *ProfileClient) SetBreaker(b *resilience.Breaker) { c.setBreaker(b) }

// ProfileForUser returns the current profile of a user.
func (c *ProfileClient) ProfileForUser(ctx context.Context, userID string) (bankapi.Profile, error) {
	var p bankapi.Profile
	if err := c.getJSON(ctx, "/auth/user/"+url.PathEscape(userID), &p); err != nil {
		return bankapi.Profile{}, fmt.Errorf("profile for user: %w", err)
	}
	return p, nil
}
