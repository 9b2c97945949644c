package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"

	"ytpm/domain/repository"
	"ytpm/infrastructure/logger"
)

// ActionEventsPublisher emits one message per finished action. Publishing is
// best-effort: a nil client disables it and callers never fail an action on
// a publish error.
type ActionEventsPublisher struct {
	client    *pubsub.Client
	topicName string
}

func NewActionEventsPublisher(client *pubsub.Client, topicName string) repository.IActionEvents {
	return &ActionEventsPublisher{client: client, topicName: topicName}
}

func (p *ActionEventsPublisher) PublishActionFinished(ctx context.Context, event repository.ActionFinishedEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.client.Topic(p.topicName)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		if _, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
			return err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return err
	}

	logger.GetLogger().WithField("server ID", serverID).
		WithField("action_id", event.ActionID).
		Info("Action finished event published")
	return nil
}
