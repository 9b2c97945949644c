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

// IUndoUseCase derives corrective actions from persisted history. Both
// operations create a brand new action linked to the original through
// parentActionId; the original's rows are never rewritten.
type IUndoUseCase interface {
	Undo(ctx context.Context, userID, actionID, idempotencyKey string) (*dto.OperationResult, error)
	RetryFailed(ctx context.Context, userID, actionID, idempotencyKey string) (*dto.OperationResult, error)
}

// UndoUseCase builds inverse and retry payloads from the ledger and hands
// them to the bulk coordinator for execution.
type UndoUseCase struct {
	ledger repository.IActionLedger
	bulk   *BulkUseCase
}

func NewUndoUseCase(ledger repository.IActionLedger, bulk *BulkUseCase) *UndoUseCase {
	return &UndoUseCase{ledger: ledger, bulk: bulk}
}

// loadFinishedAction fetches the action and enforces ownership and the
// terminal-state guard shared by undo and retry.
func (u *UndoUseCase) loadFinishedAction(ctx context.Context, userID, actionID string) (*model.Action, []model.ActionItem, error) {
	action, err := u.ledger.GetAction(ctx, actionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrActionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load action: %w", err)
	}
	if action.UserID != userID {
		return nil, nil, ErrForbidden
	}
	if !action.Status.Terminal() {
		return nil, nil, ErrActionNotTerminal
	}
	items, err := u.ledger.ListItems(ctx, actionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load action items: %w", err)
	}
	return action, items, nil
}

// Undo reverses the successful items of a finished action. The inverse is
// derived purely from what the ledger recorded at execution time; items
// whose rows lack the fields the inverse needs become pre-failed items in
// the new action rather than silently disappearing.
func (u *UndoUseCase) Undo(ctx context.Context, userID, actionID, idempotencyKey string) (*dto.OperationResult, error) {
	action, items, err := u.loadFinishedAction(ctx, userID, actionID)
	if err != nil {
		return nil, err
	}

	succeeded := make([]model.ActionItem, 0, len(items))
	for _, it := range items {
		if it.Status == model.ActionItemStatusSuccess {
			succeeded = append(succeeded, it)
		}
	}
	if len(succeeded) == 0 {
		return nil, ErrNotUndoable
	}

	spec := runSpec{
		userID:         userID,
		actionType:     model.ActionTypeUndo,
		parentActionID: strPtr(action.ID),
		idempotencyKey: idempotencyKey,
	}

	switch action.Type {
	case model.ActionTypeAdd:
		// Inverse of ADD: remove the playlist items the adds created.
		spec.opType = model.ActionTypeRemove
		spec.sourcePlaylistID = action.TargetPlaylistID
		for _, it := range succeeded {
			spec.items = append(spec.items, repository.NewActionItem{
				SourcePlaylistItemID: it.TargetPlaylistItemID,
				SourcePlaylistID:     it.TargetPlaylistID,
				VideoID:              it.VideoID,
			})
		}
		spec.estimatedQuota = int64(len(spec.items)) * MethodCost[MethodPlaylistItemsDelete]

	case model.ActionTypeRemove:
		// Inverse of REMOVE: add the removed videos back to their playlist.
		// Derivable only when the original recorded video provenance.
		spec.opType = model.ActionTypeAdd
		spec.targetPlaylistID = action.SourcePlaylistID
		for _, it := range succeeded {
			spec.items = append(spec.items, repository.NewActionItem{
				VideoID:          it.VideoID,
				TargetPlaylistID: it.SourcePlaylistID,
			})
		}
		spec.estimatedQuota = int64(len(spec.items)) * MethodCost[MethodPlaylistItemsInsert]

	case model.ActionTypeMove:
		// Inverse of MOVE: move back, source and target swapped. The item to
		// delete is the one the original inserted into its target.
		spec.opType = model.ActionTypeMove
		spec.sourcePlaylistID = action.TargetPlaylistID
		spec.targetPlaylistID = action.SourcePlaylistID
		for _, it := range succeeded {
			spec.items = append(spec.items, repository.NewActionItem{
				VideoID:              it.VideoID,
				SourcePlaylistItemID: it.TargetPlaylistItemID,
				SourcePlaylistID:     it.TargetPlaylistID,
				TargetPlaylistID:     it.SourcePlaylistID,
			})
		}
		perItem := MethodCost[MethodPlaylistItemsInsert] + MethodCost[MethodPlaylistItemsDelete]
		spec.estimatedQuota = int64(len(spec.items)) * perItem

	default:
		// UNDO actions are themselves not undoable; redo is submitting the
		// original payload again.
		return nil, ErrNotUndoable
	}

	return u.bulk.run(ctx, spec)
}

// RetryFailed re-executes only the failed items of a finished action as a
// new action of the same type. Successful items are left alone.
func (u *UndoUseCase) RetryFailed(ctx context.Context, userID, actionID, idempotencyKey string) (*dto.OperationResult, error) {
	action, items, err := u.loadFinishedAction(ctx, userID, actionID)
	if err != nil {
		return nil, err
	}

	failed := make([]model.ActionItem, 0, len(items))
	for _, it := range items {
		if it.Status == model.ActionItemStatusFailed {
			failed = append(failed, it)
		}
	}
	if len(failed) == 0 {
		return nil, ErrNoFailedItems
	}

	opType := action.Type
	if opType == model.ActionTypeUndo && len(failed) > 0 {
		// An UNDO's items all carry the inverse op type.
		opType = failed[0].Type
	}

	spec := runSpec{
		userID:           userID,
		actionType:       action.Type,
		opType:           opType,
		sourcePlaylistID: action.SourcePlaylistID,
		targetPlaylistID: action.TargetPlaylistID,
		parentActionID:   strPtr(action.ID),
		idempotencyKey:   idempotencyKey,
	}
	if spec.actionType == model.ActionTypeUndo {
		spec.sourcePlaylistID = nil
		spec.targetPlaylistID = nil
		for _, it := range failed {
			if it.SourcePlaylistID != nil {
				spec.sourcePlaylistID = it.SourcePlaylistID
			}
			if it.TargetPlaylistID != nil {
				spec.targetPlaylistID = it.TargetPlaylistID
			}
		}
	}

	var perItem int64
	switch opType {
	case model.ActionTypeAdd:
		perItem = MethodCost[MethodPlaylistItemsInsert]
	case model.ActionTypeRemove:
		perItem = MethodCost[MethodPlaylistItemsDelete]
	case model.ActionTypeMove:
		perItem = MethodCost[MethodPlaylistItemsInsert] + MethodCost[MethodPlaylistItemsDelete]
	}
	spec.estimatedQuota = int64(len(failed)) * perItem

	for _, it := range failed {
		spec.items = append(spec.items, repository.NewActionItem{
			VideoID:              it.VideoID,
			SourcePlaylistID:     it.SourcePlaylistID,
			TargetPlaylistID:     it.TargetPlaylistID,
			SourcePlaylistItemID: it.SourcePlaylistItemID,
			Position:             it.Position,
		})
	}

	return u.bulk.run(ctx, spec)
}

var _ IUndoUseCase = (*UndoUseCase)(nil)
