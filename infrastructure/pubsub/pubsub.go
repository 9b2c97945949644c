package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// NewPubSub connects a Google Cloud Pub/Sub client. Callers treat a nil
// client as "events disabled".
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id is empty")
	}
	return pubsub.NewClient(ctx, projectID)
}
