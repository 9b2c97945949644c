package pubsub_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ytpm/domain/repository"
	"ytpm/infrastructure/pubsub"
)

// TestNewActionEventsPublisher tests the creation of a new publisher
func TestNewActionEventsPublisher(t *testing.T) {
	publisher := pubsub.NewActionEventsPublisher(nil, "playlist-actions")
	assert.NotNil(t, publisher)
}

// TestPublishActionFinished_NilClient verifies publishing is a no-op without
// a connected client.
func TestPublishActionFinished_NilClient(t *testing.T) {
	publisher := pubsub.NewActionEventsPublisher(nil, "playlist-actions")
	err := publisher.PublishActionFinished(context.Background(), repository.ActionFinishedEvent{
		ActionID: "act-1",
		UserID:   "42",
	})
	assert.NoError(t, err)
}
