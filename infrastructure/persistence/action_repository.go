package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ytpm/domain/model"
	"ytpm/domain/repository"
)

const actionColumns = `id, user_id, type, source_playlist_id, target_playlist_id, status, created_at, finished_at, parent_action_id`

const actionItemColumns = `id, action_id, type, video_id, source_playlist_id, target_playlist_id, source_playlist_item_id, target_playlist_item_id, position, status, error_code, error_message, created_at`

// ActionRepository is the PostgreSQL ledger of actions and their items.
type ActionRepository struct{ db *sql.DB }

func NewActionRepository(db *sql.DB) *ActionRepository { return &ActionRepository{db: db} }

func (r *ActionRepository) CreateAction(ctx context.Context, params repository.CreateActionParams) (*model.Action, error) {
	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	q := `INSERT INTO actions (` + actionColumns + `)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,$8)`
	_, err := r.db.ExecContext(ctx, q, id, params.UserID, params.Type, params.SourcePlaylistID, params.TargetPlaylistID, params.Status, now, params.ParentActionID)
	if err != nil {
		return nil, err
	}
	return &model.Action{
		ID:               id,
		UserID:           params.UserID,
		Type:             params.Type,
		SourcePlaylistID: params.SourcePlaylistID,
		TargetPlaylistID: params.TargetPlaylistID,
		Status:           params.Status,
		CreatedAt:        now,
		ParentActionID:   params.ParentActionID,
	}, nil
}

func (r *ActionRepository) GetAction(ctx context.Context, id string) (*model.Action, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+actionColumns+` FROM actions WHERE id=$1`, id)
	return scanAction(row)
}

func (r *ActionRepository) SetActionStatus(ctx context.Context, id string, status model.ActionStatus, finishedAt time.Time) (*model.Action, error) {
	_, err := r.db.ExecContext(ctx, `UPDATE actions SET status=$1, finished_at=$2 WHERE id=$3`, status, finishedAt.UTC(), id)
	if err != nil {
		return nil, err
	}
	return r.GetAction(ctx, id)
}

func (r *ActionRepository) ListActions(ctx context.Context, userID string, limit int, cursor string) ([]model.Action, error) {
	q := `SELECT ` + actionColumns + ` FROM actions WHERE user_id=$1`
	args := []interface{}{userID}
	if cursor != "" {
		createdAt, lastID, err := repository.DecodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		q += ` AND (created_at, id) < ($2, $3)`
		args = append(args, createdAt.UTC(), lastID)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var actions []model.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, *a)
	}
	return actions, rows.Err()
}

func (r *ActionRepository) CreateItems(ctx context.Context, items []repository.NewActionItem) ([]model.ActionItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	q := `INSERT INTO action_items (` + actionItemColumns + `)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,$8,$9,NULL,NULL,$10)`
	out := make([]model.ActionItem, 0, len(items))
	for _, it := range items {
		created := model.ActionItem{
			ID:                   uuid.NewString(),
			ActionID:             it.ActionID,
			Type:                 it.Type,
			VideoID:              it.VideoID,
			SourcePlaylistID:     it.SourcePlaylistID,
			TargetPlaylistID:     it.TargetPlaylistID,
			SourcePlaylistItemID: it.SourcePlaylistItemID,
			Position:             it.Position,
			Status:               model.ActionItemStatusPending,
			CreatedAt:            time.Now().UTC(),
		}
		if _, err = tx.ExecContext(ctx, q,
			created.ID, created.ActionID, created.Type, created.VideoID,
			created.SourcePlaylistID, created.TargetPlaylistID, created.SourcePlaylistItemID,
			created.Position, created.Status, created.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ActionRepository) UpdateItem(ctx context.Context, id string, update repository.ActionItemUpdate) (*model.ActionItem, error) {
	q := `UPDATE action_items SET
			status = COALESCE($1, status),
			error_code = COALESCE($2, error_code),
			error_message = COALESCE($3, error_message),
			target_playlist_item_id = COALESCE($4, target_playlist_item_id)
		  WHERE id=$5`
	_, err := r.db.ExecContext(ctx, q, update.Status, update.ErrorCode, update.ErrorMessage, update.TargetPlaylistItemID, id)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+actionItemColumns+` FROM action_items WHERE id=$1`, id)
	return scanActionItem(row)
}

func (r *ActionRepository) ListItems(ctx context.Context, actionID string) ([]model.ActionItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+actionItemColumns+` FROM action_items WHERE action_id=$1 ORDER BY created_at ASC, id ASC`, actionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *ActionRepository) ListItemsPage(ctx context.Context, actionID string, limit int, cursor string) ([]model.ActionItem, string, error) {
	q := `SELECT ` + actionItemColumns + ` FROM action_items WHERE action_id=$1`
	args := []interface{}{actionID}
	if cursor != "" {
		createdAt, lastID, err := repository.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		q += ` AND (created_at, id) > ($2, $3)`
		args = append(args, createdAt.UTC(), lastID)
	}
	q += ` ORDER BY created_at ASC, id ASC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	items, err := collectItems(rows)
	if err != nil {
		return nil, "", err
	}
	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[limit-1]
		next = repository.EncodeCursor(last.CreatedAt, last.ID)
	}
	return items, next, nil
}

func (r *ActionRepository) GetCounts(ctx context.Context, actionID string) (model.ActionCounts, error) {
	row := r.db.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status='success'),
			COUNT(*) FILTER (WHERE status='failed')
		FROM action_items WHERE action_id=$1`, actionID)
	var counts model.ActionCounts
	if err := row.Scan(&counts.Total, &counts.Success, &counts.Failed); err != nil {
		return model.ActionCounts{}, err
	}
	return counts, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanAction(row rowScanner) (*model.Action, error) {
	a := &model.Action{}
	var source, target, parent sql.NullString
	var finished sql.NullTime
	if err := row.Scan(&a.ID, &a.UserID, &a.Type, &source, &target, &a.Status, &a.CreatedAt, &finished, &parent); err != nil {
		return nil, err
	}
	if source.Valid {
		a.SourcePlaylistID = &source.String
	}
	if target.Valid {
		a.TargetPlaylistID = &target.String
	}
	if finished.Valid {
		a.FinishedAt = &finished.Time
	}
	if parent.Valid {
		a.ParentActionID = &parent.String
	}
	return a, nil
}

func scanActionItem(row rowScanner) (*model.ActionItem, error) {
	it := &model.ActionItem{}
	var videoID, sourcePl, targetPl, sourceItem, targetItem, errCode, errMsg sql.NullString
	var position sql.NullInt64
	if err := row.Scan(&it.ID, &it.ActionID, &it.Type, &videoID, &sourcePl, &targetPl, &sourceItem, &targetItem, &position, &it.Status, &errCode, &errMsg, &it.CreatedAt); err != nil {
		return nil, err
	}
	if videoID.Valid {
		it.VideoID = &videoID.String
	}
	if sourcePl.Valid {
		it.SourcePlaylistID = &sourcePl.String
	}
	if targetPl.Valid {
		it.TargetPlaylistID = &targetPl.String
	}
	if sourceItem.Valid {
		it.SourcePlaylistItemID = &sourceItem.String
	}
	if targetItem.Valid {
		it.TargetPlaylistItemID = &targetItem.String
	}
	if position.Valid {
		p := int(position.Int64)
		it.Position = &p
	}
	if errCode.Valid {
		it.ErrorCode = &errCode.String
	}
	if errMsg.Valid {
		it.ErrorMessage = &errMsg.String
	}
	return it, nil
}

func collectItems(rows *sql.Rows) ([]model.ActionItem, error) {
	var items []model.ActionItem
	for rows.Next() {
		it, err := scanActionItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

var _ repository.IActionLedger = (*ActionRepository)(nil)
