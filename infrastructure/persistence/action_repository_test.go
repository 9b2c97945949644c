package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"ytpm/domain/model"
	"ytpm/domain/repository"
)

func TestActionRepository_CreateAction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO actions`)).
		WithArgs("bulk-add-2026-001", "42", "ADD", nil, "PLtarget001", "running", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	target := "PLtarget001"
	action, err := repo.CreateAction(context.Background(), repository.CreateActionParams{
		ID:               "bulk-add-2026-001",
		UserID:           "42",
		Type:             model.ActionTypeAdd,
		TargetPlaylistID: &target,
		Status:           model.ActionStatusRunning,
	})

	require.NoError(t, err)
	require.Equal(t, "bulk-add-2026-001", action.ID)
	require.Equal(t, model.ActionStatusRunning, action.Status)
	require.Nil(t, action.FinishedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_CreateAction_GeneratesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO actions`)).
		WithArgs(sqlmock.AnyArg(), "42", "REMOVE", "PLsource001", nil, "running", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	source := "PLsource001"
	action, err := repo.CreateAction(context.Background(), repository.CreateActionParams{
		UserID:           "42",
		Type:             model.ActionTypeRemove,
		SourcePlaylistID: &source,
		Status:           model.ActionStatusRunning,
	})

	require.NoError(t, err)
	require.NotEmpty(t, action.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_GetAction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	finishedAt := createdAt.Add(3 * time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, source_playlist_id, target_playlist_id, status, created_at, finished_at, parent_action_id FROM actions WHERE id=$1`)).
		WithArgs("act-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "source_playlist_id", "target_playlist_id", "status", "created_at", "finished_at", "parent_action_id"}).
			AddRow("act-1", "42", "MOVE", "PLsrc", "PLdst", "partial", createdAt, finishedAt, nil))

	action, err := repo.GetAction(context.Background(), "act-1")

	require.NoError(t, err)
	require.Equal(t, model.ActionTypeMove, action.Type)
	require.Equal(t, model.ActionStatusPartial, action.Status)
	require.Equal(t, "PLsrc", *action.SourcePlaylistID)
	require.Equal(t, "PLdst", *action.TargetPlaylistID)
	require.NotNil(t, action.FinishedAt)
	require.Nil(t, action.ParentActionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_GetCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	mock.ExpectQuery(`SELECT`).
		WithArgs("act-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "success", "failed"}).AddRow(5, 3, 2))

	counts, err := repo.GetCounts(context.Background(), "act-1")

	require.NoError(t, err)
	require.Equal(t, model.ActionCounts{Total: 5, Success: 3, Failed: 2}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_UpdateItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	status := model.ActionItemStatusFailed
	code := "videoNotFound"
	message := "Video not found"

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE action_items SET`)).
		WithArgs("failed", "videoNotFound", "Video not found", nil, "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, action_id, type, video_id, source_playlist_id, target_playlist_id, source_playlist_item_id, target_playlist_item_id, position, status, error_code, error_message, created_at FROM action_items WHERE id=$1`)).
		WithArgs("item-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "action_id", "type", "video_id", "source_playlist_id", "target_playlist_id", "source_playlist_item_id", "target_playlist_item_id", "position", "status", "error_code", "error_message", "created_at"}).
			AddRow("item-1", "act-1", "ADD", "vid01abc", nil, "PLdst", nil, nil, nil, "failed", code, message, createdAt))

	item, err := repo.UpdateItem(context.Background(), "item-1", repository.ActionItemUpdate{
		Status:       &status,
		ErrorCode:    &code,
		ErrorMessage: &message,
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionItemStatusFailed, item.Status)
	require.Equal(t, "videoNotFound", *item.ErrorCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_CreateItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO action_items`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	vid1, vid2 := "vid01abc", "vid02def"
	target := "PLdst"
	items, err := repo.CreateItems(context.Background(), []repository.NewActionItem{
		{ActionID: "act-1", Type: model.ActionTypeAdd, VideoID: &vid1, TargetPlaylistID: &target},
		{ActionID: "act-1", Type: model.ActionTypeAdd, VideoID: &vid2, TargetPlaylistID: &target},
	})

	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, model.ActionItemStatusPending, items[0].Status)
	require.NotEmpty(t, items[0].ID)
	require.NotEqual(t, items[0].ID, items[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActionRepository_ListItemsPage_NextCursor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActionRepository(db)

	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "action_id", "type", "video_id", "source_playlist_id", "target_playlist_id", "source_playlist_item_id", "target_playlist_item_id", "position", "status", "error_code", "error_message", "created_at"})
	for _, id := range []string{"item-1", "item-2", "item-3"} {
		rows.AddRow(id, "act-1", "ADD", "vid01abc", nil, "PLdst", nil, nil, nil, "success", nil, nil, createdAt)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs("act-1", 3).
		WillReturnRows(rows)

	items, next, err := repo.ListItemsPage(context.Background(), "act-1", 2, "")

	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotEmpty(t, next, "a full page plus one extra row should produce a next cursor")
	require.NoError(t, mock.ExpectationsWereMet())
}
