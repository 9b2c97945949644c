package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ytpm/domain/dto"
	"ytpm/domain/model"
	"ytpm/domain/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// IActionUseCase reads the durable action log.
type IActionUseCase interface {
	GetAction(ctx context.Context, userID, actionID string) (*dto.ActionSummary, error)
	ListActions(ctx context.Context, userID string, limit int, cursor string) (*dto.ActionListResponse, error)
	ListActionItems(ctx context.Context, userID, actionID string, limit int, cursor string) (*dto.ActionItemsResponse, error)
}

type ActionUseCase struct {
	ledger repository.IActionLedger
}

func NewActionUseCase(ledger repository.IActionLedger) *ActionUseCase {
	return &ActionUseCase{ledger: ledger}
}

// loadOwned fetches an action and verifies it belongs to the caller.
func (u *ActionUseCase) loadOwned(ctx context.Context, userID, actionID string) (*model.Action, error) {
	action, err := u.ledger.GetAction(ctx, actionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActionNotFound
		}
		return nil, fmt.Errorf("failed to load action: %w", err)
	}
	if action.UserID != userID {
		return nil, ErrForbidden
	}
	return action, nil
}

// GetAction returns one action with its counts and full item table.
func (u *ActionUseCase) GetAction(ctx context.Context, userID, actionID string) (*dto.ActionSummary, error) {
	action, err := u.loadOwned(ctx, userID, actionID)
	if err != nil {
		return nil, err
	}
	counts, err := u.ledger.GetCounts(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count action items: %w", err)
	}
	items, err := u.ledger.ListItems(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action items: %w", err)
	}
	return &dto.ActionSummary{Action: action, Counts: counts, Items: items}, nil
}

// ListActions pages the user's actions newest first. One extra row is
// fetched to decide whether a next page exists.
func (u *ActionUseCase) ListActions(ctx context.Context, userID string, limit int, cursor string) (*dto.ActionListResponse, error) {
	limit = clampPageSize(limit)
	actions, err := u.ledger.ListActions(ctx, userID, limit+1, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	resp := &dto.ActionListResponse{Actions: actions}
	if len(actions) > limit {
		resp.Actions = actions[:limit]
		last := resp.Actions[limit-1]
		resp.NextCursor = repository.EncodeCursor(last.CreatedAt, last.ID)
		resp.HasMore = true
	}
	return resp, nil
}

// ListActionItems pages one action's items in creation order.
func (u *ActionUseCase) ListActionItems(ctx context.Context, userID, actionID string, limit int, cursor string) (*dto.ActionItemsResponse, error) {
	if _, err := u.loadOwned(ctx, userID, actionID); err != nil {
		return nil, err
	}
	limit = clampPageSize(limit)
	items, next, err := u.ledger.ListItemsPage(ctx, actionID, limit, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to list action items: %w", err)
	}
	return &dto.ActionItemsResponse{Items: items, NextCursor: next}, nil
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

var _ IActionUseCase = (*ActionUseCase)(nil)
