package repository

import (
	"context"
	"time"

	"ytpm/domain/model"
)

// CreateActionParams are the fields for a new action row. ID is optional;
// when set it is used verbatim (the idempotency key doubles as the id).
type CreateActionParams struct {
	ID               string
	UserID           string
	Type             model.ActionType
	SourcePlaylistID *string
	TargetPlaylistID *string
	Status           model.ActionStatus
	ParentActionID   *string
}

// NewActionItem is one item row to create under an action.
type NewActionItem struct {
	ActionID             string
	Type                 model.ActionType
	VideoID              *string
	SourcePlaylistID     *string
	TargetPlaylistID     *string
	SourcePlaylistItemID *string
	Position             *int
}

// ActionItemUpdate mutates a single item during execution. Nil fields are
// left untouched; a terminal status is written exactly once per item.
type ActionItemUpdate struct {
	Status               *model.ActionItemStatus
	ErrorCode            *string
	ErrorMessage         *string
	TargetPlaylistItemID *string
}

// IActionLedger is the durable store of actions and their items. Items are
// written by exactly one coordinator; aggregate counts are always computed
// from the item table, never cached on the action row.
type IActionLedger interface {
	CreateAction(ctx context.Context, params CreateActionParams) (*model.Action, error)
	GetAction(ctx context.Context, id string) (*model.Action, error)
	SetActionStatus(ctx context.Context, id string, status model.ActionStatus, finishedAt time.Time) (*model.Action, error)
	ListActions(ctx context.Context, userID string, limit int, cursor string) ([]model.Action, error)

	CreateItems(ctx context.Context, items []NewActionItem) ([]model.ActionItem, error)
	UpdateItem(ctx context.Context, id string, update ActionItemUpdate) (*model.ActionItem, error)
	ListItems(ctx context.Context, actionID string) ([]model.ActionItem, error)
	ListItemsPage(ctx context.Context, actionID string, limit int, cursor string) ([]model.ActionItem, string, error)
	GetCounts(ctx context.Context, actionID string) (model.ActionCounts, error)
}
