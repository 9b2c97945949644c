package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ytpm/domain/dto"
	"ytpm/domain/model"
	"ytpm/domain/repository"
	"ytpm/infrastructure/clients/youtube"
	"ytpm/infrastructure/logger"
)

// Error codes written to items that cannot be executed because the derived
// payload lacks a required field.
const (
	ErrCodeMissingVideoID        = "MISSING_VIDEO_ID"
	ErrCodeMissingPlaylistItemID = "MISSING_PLAYLIST_ITEM_ID"
	ErrCodeMissingSourceID       = "MISSING_SOURCE_ID"
)

// BulkConfig tunes pacing and retry for one coordinator. Pacing delays keep
// sequential mutations under the remote API's burst ceiling; tests set them
// to zero.
type BulkConfig struct {
	Retry           RetryPolicy
	InsertDelay     time.Duration
	MoveInsertDelay time.Duration
	DeleteDelay     time.Duration
}

func DefaultBulkConfig() BulkConfig {
	return BulkConfig{
		Retry:           DefaultRetryPolicy(),
		InsertDelay:     100 * time.Millisecond,
		MoveInsertDelay: 120 * time.Millisecond,
		DeleteDelay:     80 * time.Millisecond,
	}
}

// IBulkUseCase submits bulk playlist mutations and returns the finalized
// per-item outcome table.
type IBulkUseCase interface {
	BulkAdd(ctx context.Context, userID string, req *dto.BulkAddRequest) (*dto.OperationResult, error)
	BulkRemove(ctx context.Context, userID string, req *dto.BulkRemoveRequest) (*dto.OperationResult, error)
	BulkMove(ctx context.Context, userID string, req *dto.BulkMoveRequest) (*dto.OperationResult, error)
}

// BulkUseCase coordinates one bulk action: idempotency gate, durable item
// rows, sequential paced execution with transient retry, finalization from
// counts, and a finished event.
type BulkUseCase struct {
	ledger  repository.IActionLedger
	keys    repository.IIdempotencyStore
	quota   IQuotaUseCase
	clients repository.IPlaylistClientProvider
	events  repository.IActionEvents
	cfg     BulkConfig
}

func NewBulkUseCase(
	ledger repository.IActionLedger,
	keys repository.IIdempotencyStore,
	quota IQuotaUseCase,
	clients repository.IPlaylistClientProvider,
	events repository.IActionEvents,
	cfg BulkConfig,
) *BulkUseCase {
	return &BulkUseCase{
		ledger:  ledger,
		keys:    keys,
		quota:   quota,
		clients: clients,
		events:  events,
		cfg:     cfg,
	}
}

// runSpec is one prepared bulk run. The undo and retry flows construct these
// directly so derived payloads can carry pre-failed items.
type runSpec struct {
	userID           string
	actionType       model.ActionType
	opType           model.ActionType
	sourcePlaylistID *string
	targetPlaylistID *string
	items            []repository.NewActionItem
	idempotencyKey   string
	parentActionID   *string
	estimatedQuota   int64
}

func (u *BulkUseCase) BulkAdd(ctx context.Context, userID string, req *dto.BulkAddRequest) (*dto.OperationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	videoIDs := dedupStrings(req.VideoIDs)
	items := make([]repository.NewActionItem, 0, len(videoIDs))
	for _, v := range videoIDs {
		items = append(items, repository.NewActionItem{
			VideoID:          strPtr(v),
			TargetPlaylistID: strPtr(req.TargetPlaylistID),
		})
	}
	return u.run(ctx, runSpec{
		userID:           userID,
		actionType:       model.ActionTypeAdd,
		opType:           model.ActionTypeAdd,
		targetPlaylistID: strPtr(req.TargetPlaylistID),
		items:            items,
		idempotencyKey:   req.IdempotencyKey,
		estimatedQuota:   int64(len(videoIDs)) * MethodCost[MethodPlaylistItemsInsert],
	})
}

func (u *BulkUseCase) BulkRemove(ctx context.Context, userID string, req *dto.BulkRemoveRequest) (*dto.OperationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var source *string
	if req.SourcePlaylistID != "" {
		source = strPtr(req.SourcePlaylistID)
	}
	seen := make(map[string]bool, len(req.PlaylistItemIDs))
	items := make([]repository.NewActionItem, 0, len(req.PlaylistItemIDs))
	for i, itemID := range req.PlaylistItemIDs {
		if seen[itemID] {
			continue
		}
		seen[itemID] = true
		item := repository.NewActionItem{
			SourcePlaylistItemID: strPtr(itemID),
			SourcePlaylistID:     source,
		}
		if len(req.VideoIDs) == len(req.PlaylistItemIDs) {
			item.VideoID = strPtr(req.VideoIDs[i])
		}
		items = append(items, item)
	}
	return u.run(ctx, runSpec{
		userID:           userID,
		actionType:       model.ActionTypeRemove,
		opType:           model.ActionTypeRemove,
		sourcePlaylistID: source,
		items:            items,
		idempotencyKey:   req.IdempotencyKey,
		estimatedQuota:   int64(len(items)) * MethodCost[MethodPlaylistItemsDelete],
	})
}

func (u *BulkUseCase) BulkMove(ctx context.Context, userID string, req *dto.BulkMoveRequest) (*dto.OperationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(req.Items))
	items := make([]repository.NewActionItem, 0, len(req.Items))
	for _, mv := range req.Items {
		if seen[mv.PlaylistItemID] {
			continue
		}
		seen[mv.PlaylistItemID] = true
		items = append(items, repository.NewActionItem{
			VideoID:              strPtr(mv.VideoID),
			SourcePlaylistItemID: strPtr(mv.PlaylistItemID),
			SourcePlaylistID:     strPtr(req.SourcePlaylistID),
			TargetPlaylistID:     strPtr(req.TargetPlaylistID),
		})
	}
	perItem := MethodCost[MethodPlaylistItemsInsert] + MethodCost[MethodPlaylistItemsDelete]
	return u.run(ctx, runSpec{
		userID:           userID,
		actionType:       model.ActionTypeMove,
		opType:           model.ActionTypeMove,
		sourcePlaylistID: strPtr(req.SourcePlaylistID),
		targetPlaylistID: strPtr(req.TargetPlaylistID),
		items:            items,
		idempotencyKey:   req.IdempotencyKey,
		estimatedQuota:   int64(len(items)) * perItem,
	})
}

// run executes one prepared bulk action end to end. The idempotency key,
// when present, doubles as the action id, so a replayed submission finds the
// original action by its key.
func (u *BulkUseCase) run(ctx context.Context, spec runSpec) (*dto.OperationResult, error) {
	if replay, ok, err := u.replay(ctx, spec.userID, spec.idempotencyKey, spec.estimatedQuota); err != nil {
		return nil, err
	} else if ok {
		return replay, nil
	}

	client, err := u.clients.ForUser(ctx, spec.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare playlist client: %w", err)
	}

	actionID := spec.idempotencyKey
	if actionID == "" {
		actionID = uuid.NewString()
	}
	action, err := u.ledger.CreateAction(ctx, repository.CreateActionParams{
		ID:               actionID,
		UserID:           spec.userID,
		Type:             spec.actionType,
		SourcePlaylistID: spec.sourcePlaylistID,
		TargetPlaylistID: spec.targetPlaylistID,
		Status:           model.ActionStatusRunning,
		ParentActionID:   spec.parentActionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}
	if spec.idempotencyKey != "" {
		if _, err := u.keys.Register(ctx, spec.idempotencyKey); err != nil {
			logger.GetLogger().WithField("error", err).WithField("action_id", action.ID).
				Warn("Failed to register idempotency key")
		}
	}

	newItems := make([]repository.NewActionItem, len(spec.items))
	copy(newItems, spec.items)
	for i := range newItems {
		newItems[i].ActionID = action.ID
		newItems[i].Type = spec.opType
	}
	items, err := u.ledger.CreateItems(ctx, newItems)
	if err != nil {
		if _, serr := u.ledger.SetActionStatus(ctx, action.ID, model.ActionStatusFailed, time.Now()); serr != nil {
			logger.GetLogger().WithField("error", serr).Error("Failed to mark action failed")
		}
		return nil, fmt.Errorf("failed to create action items: %w", err)
	}

	logger.GetLogger().WithField("action_id", action.ID).
		WithField("type", action.Type).
		WithField("items", len(items)).
		WithField("fallback", client == nil).
		Info("Executing bulk action")

	if client == nil {
		u.executeFallback(ctx, items)
	} else {
		switch spec.opType {
		case model.ActionTypeAdd:
			u.executeAdds(ctx, client, spec.userID, items)
		case model.ActionTypeRemove:
			u.executeRemoves(ctx, client, spec.userID, items)
		case model.ActionTypeMove:
			u.executeMoves(ctx, client, spec.userID, items)
		}
	}

	return u.finalize(ctx, action, spec.estimatedQuota, client == nil)
}

// replay returns the stored outcome for an already-registered idempotency
// key. Ownership is checked so one user cannot read another's action by
// guessing their key.
func (u *BulkUseCase) replay(ctx context.Context, userID, key string, estimated int64) (*dto.OperationResult, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	registered, err := u.keys.Exists(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if !registered {
		return nil, false, nil
	}
	action, err := u.ledger.GetAction(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Key claimed but no action row yet; let the action table's
			// primary key arbitrate the race.
			return nil, false, nil
		}
		return nil, false, err
	}
	if action.UserID != userID {
		return nil, false, ErrForbidden
	}
	items, err := u.ledger.ListItems(ctx, action.ID)
	if err != nil {
		return nil, false, err
	}
	counts, err := u.ledger.GetCounts(ctx, action.ID)
	if err != nil {
		return nil, false, err
	}
	logger.GetLogger().WithField("action_id", action.ID).Info("Replaying idempotent submission")
	return &dto.OperationResult{
		Action:         action,
		Items:          items,
		Counts:         counts,
		EstimatedQuota: estimated,
		Idempotent:     true,
	}, true, nil
}

// executeFallback completes items locally without touching the remote API.
// Inserted ids are synthesized from the video id so MOVE and undo flows stay
// derivable even without a linked account.
func (u *BulkUseCase) executeFallback(ctx context.Context, items []model.ActionItem) {
	for i := range items {
		item := &items[i]
		switch item.Type {
		case model.ActionTypeAdd, model.ActionTypeMove:
			if item.VideoID == nil {
				u.failItemCode(ctx, item, ErrCodeMissingVideoID, "no video id recorded for this item")
				continue
			}
			mockID := "mock-" + *item.VideoID
			u.succeedItem(ctx, item, &mockID)
		case model.ActionTypeRemove:
			if item.SourcePlaylistItemID == nil {
				u.failItemCode(ctx, item, ErrCodeMissingPlaylistItemID, "no playlist item id recorded for this item")
				continue
			}
			u.succeedItem(ctx, item, nil)
		}
	}
}

func (u *BulkUseCase) executeAdds(ctx context.Context, client repository.IPlaylistClient, userID string, items []model.ActionItem) {
	for i := range items {
		item := &items[i]
		if item.VideoID == nil {
			u.failItemCode(ctx, item, ErrCodeMissingVideoID, "no video id recorded for this item")
			continue
		}
		if item.TargetPlaylistID == nil {
			u.failItemCode(ctx, item, ErrCodeMissingSourceID, "no target playlist recorded for this item")
			continue
		}
		targetItemID, err := RetryTransient(ctx, u.cfg.Retry, func() (string, error) {
			return client.InsertPlaylistItem(ctx, *item.TargetPlaylistID, *item.VideoID)
		})
		u.recordQuota(ctx, MethodPlaylistItemsInsert, userID)
		if err != nil {
			u.failItem(ctx, item, err)
		} else {
			u.succeedItem(ctx, item, &targetItemID)
		}
		u.pause(ctx, u.cfg.InsertDelay)
	}
}

func (u *BulkUseCase) executeRemoves(ctx context.Context, client repository.IPlaylistClient, userID string, items []model.ActionItem) {
	for i := range items {
		item := &items[i]
		if item.SourcePlaylistItemID == nil {
			u.failItemCode(ctx, item, ErrCodeMissingPlaylistItemID, "no playlist item id recorded for this item")
			continue
		}
		err := retryTransientErr(ctx, u.cfg.Retry, func() error {
			return client.DeletePlaylistItem(ctx, *item.SourcePlaylistItemID)
		})
		u.recordQuota(ctx, MethodPlaylistItemsDelete, userID)
		if err != nil && youtube.IsNotFound(youtube.ParseAPIError(err)) {
			// Already gone; removal is idempotent.
			err = nil
		}
		if err != nil {
			u.failItem(ctx, item, err)
		} else {
			u.succeedItem(ctx, item, nil)
		}
		u.pause(ctx, u.cfg.DeleteDelay)
	}
}

// executeMoves runs the two-phase move: insert every item into the target
// playlist first, then delete from the source only the items whose insert
// was confirmed. An item is marked success only after its delete; a failed
// delete leaves the video in both playlists and the item failed, with the
// inserted target id retained for inspection.
func (u *BulkUseCase) executeMoves(ctx context.Context, client repository.IPlaylistClient, userID string, items []model.ActionItem) {
	inserted := make([]bool, len(items))
	for i := range items {
		item := &items[i]
		if item.VideoID == nil {
			u.failItemCode(ctx, item, ErrCodeMissingVideoID, "no video id recorded for this item")
			continue
		}
		if item.TargetPlaylistID == nil {
			u.failItemCode(ctx, item, ErrCodeMissingSourceID, "no target playlist recorded for this item")
			continue
		}
		targetItemID, err := RetryTransient(ctx, u.cfg.Retry, func() (string, error) {
			return client.InsertPlaylistItem(ctx, *item.TargetPlaylistID, *item.VideoID)
		})
		u.recordQuota(ctx, MethodPlaylistItemsInsert, userID)
		if err != nil {
			u.failItem(ctx, item, err)
		} else {
			u.updateItem(ctx, item, repository.ActionItemUpdate{TargetPlaylistItemID: &targetItemID})
			inserted[i] = true
		}
		u.pause(ctx, u.cfg.MoveInsertDelay)
	}

	for i := range items {
		if !inserted[i] {
			continue
		}
		item := &items[i]
		if item.SourcePlaylistItemID == nil {
			u.failItemCode(ctx, item, ErrCodeMissingPlaylistItemID, "no source playlist item id recorded for this item")
			continue
		}
		err := retryTransientErr(ctx, u.cfg.Retry, func() error {
			return client.DeletePlaylistItem(ctx, *item.SourcePlaylistItemID)
		})
		u.recordQuota(ctx, MethodPlaylistItemsDelete, userID)
		if err != nil {
			u.failItem(ctx, item, err)
		} else {
			u.succeedItem(ctx, item, nil)
		}
		u.pause(ctx, u.cfg.DeleteDelay)
	}
}

// finalize derives the aggregate status from item counts, stamps the action
// terminal, and publishes the finished event.
func (u *BulkUseCase) finalize(ctx context.Context, action *model.Action, estimated int64, fallback bool) (*dto.OperationResult, error) {
	counts, err := u.ledger.GetCounts(ctx, action.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count action items: %w", err)
	}
	status := model.ActionStatusSuccess
	switch {
	case counts.Total > 0 && counts.Failed == counts.Total:
		status = model.ActionStatusFailed
	case counts.Failed > 0:
		status = model.ActionStatusPartial
	}
	action, err = u.ledger.SetActionStatus(ctx, action.ID, status, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to finalize action: %w", err)
	}
	items, err := u.ledger.ListItems(ctx, action.ID)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("action_id", action.ID).
		WithField("status", action.Status).
		WithField("success", counts.Success).
		WithField("failed", counts.Failed).
		Info("Bulk action finished")

	if u.events != nil {
		if err := u.events.PublishActionFinished(ctx, repository.ActionFinishedEvent{
			ActionID: action.ID,
			UserID:   action.UserID,
			Type:     action.Type,
			Status:   action.Status,
			Counts:   counts,
		}); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to publish action finished event")
		}
	}

	return &dto.OperationResult{
		Action:         action,
		Items:          items,
		Counts:         counts,
		EstimatedQuota: estimated,
		UsingFallback:  fallback,
	}, nil
}

func (u *BulkUseCase) succeedItem(ctx context.Context, item *model.ActionItem, targetItemID *string) {
	status := model.ActionItemStatusSuccess
	u.updateItem(ctx, item, repository.ActionItemUpdate{
		Status:               &status,
		TargetPlaylistItemID: targetItemID,
	})
}

func (u *BulkUseCase) failItem(ctx context.Context, item *model.ActionItem, err error) {
	apiErr := youtube.ParseAPIError(err)
	u.failItemCode(ctx, item, apiErr.Code, apiErr.Message)
}

func (u *BulkUseCase) failItemCode(ctx context.Context, item *model.ActionItem, code, message string) {
	status := model.ActionItemStatusFailed
	u.updateItem(ctx, item, repository.ActionItemUpdate{
		Status:       &status,
		ErrorCode:    &code,
		ErrorMessage: &message,
	})
	logger.GetLogger().WithField("action_id", item.ActionID).
		WithField("item_id", item.ID).
		WithField("code", code).
		Warn("Action item failed")
}

func (u *BulkUseCase) updateItem(ctx context.Context, item *model.ActionItem, update repository.ActionItemUpdate) {
	updated, err := u.ledger.UpdateItem(ctx, item.ID, update)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("item_id", item.ID).
			Error("Failed to persist action item update")
		return
	}
	*item = *updated
}

func (u *BulkUseCase) recordQuota(ctx context.Context, method, userID string) {
	if u.quota == nil {
		return
	}
	if err := u.quota.RecordQuota(ctx, method, userID); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to record quota usage")
	}
}

// pause sleeps between sequential remote mutations, returning early when the
// request context is cancelled.
func (u *BulkUseCase) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func strPtr(s string) *string { return &s }

var _ IBulkUseCase = (*BulkUseCase)(nil)
