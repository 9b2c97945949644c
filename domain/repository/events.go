package repository

import (
	"context"

	"ytpm/domain/model"
)

// ActionFinishedEvent is published once per action, at finalization.
type ActionFinishedEvent struct {
	ActionID string             `json:"action_id"`
	UserID   string             `json:"user_id"`
	Type     model.ActionType   `json:"type"`
	Status   model.ActionStatus `json:"status"`
	Counts   model.ActionCounts `json:"counts"`
}

// IActionEvents publishes action lifecycle events to interested consumers.
// Implementations must be safe to call with a nil receiver (publishing is
// best-effort and optional).
type IActionEvents interface {
	PublishActionFinished(ctx context.Context, event ActionFinishedEvent) error
}
