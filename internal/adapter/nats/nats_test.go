package nats

import (
	"context"
	"os"
	"testing"
	"time"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Publisher {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	p, err := Connect(context.Background(), url)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return p
}

func TestPublisherPublish(t *testing.T) {
	p := testConnect(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subject := "reviews.decision.test." + t.Name()
	if err := p.Publish(ctx, subject, []byte(`{"workflow":"kyc","action":"APPROVE"}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
