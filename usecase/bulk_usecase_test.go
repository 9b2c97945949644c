package usecase_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ytpm/domain/dto"
	"ytpm/domain/model"
	"ytpm/domain/repository"
	"ytpm/infrastructure/clients/youtube"
	"ytpm/usecase"
)

// fakeLedger is an in-memory IActionLedger so tests can assert on the exact
// rows the coordinator persists.
type fakeLedger struct {
	mu      sync.Mutex
	actions map[string]*model.Action
	items   map[string]*model.ActionItem
	order   []string
	seq     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		actions: make(map[string]*model.Action),
		items:   make(map[string]*model.ActionItem),
	}
}

func (f *fakeLedger) CreateAction(ctx context.Context, params repository.CreateActionParams) (*model.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := params.ID
	if id == "" {
		f.seq++
		id = "action-" + time.Now().Format("150405") + "-" + string(rune('a'+f.seq))
	}
	a := &model.Action{
		ID:               id,
		UserID:           params.UserID,
		Type:             params.Type,
		SourcePlaylistID: params.SourcePlaylistID,
		TargetPlaylistID: params.TargetPlaylistID,
		Status:           params.Status,
		CreatedAt:        time.Now(),
		ParentActionID:   params.ParentActionID,
	}
	f.actions[id] = a
	copied := *a
	return &copied, nil
}

func (f *fakeLedger) GetAction(ctx context.Context, id string) (*model.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[id]
	if !ok {
		return nil, errNoRows()
	}
	copied := *a
	return &copied, nil
}

func (f *fakeLedger) SetActionStatus(ctx context.Context, id string, status model.ActionStatus, finishedAt time.Time) (*model.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.actions[id]
	if !ok {
		return nil, errNoRows()
	}
	a.Status = status
	a.FinishedAt = &finishedAt
	copied := *a
	return &copied, nil
}

func (f *fakeLedger) ListActions(ctx context.Context, userID string, limit int, cursor string) ([]model.Action, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Action
	for _, a := range f.actions {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLedger) CreateItems(ctx context.Context, items []repository.NewActionItem) ([]model.ActionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ActionItem, 0, len(items))
	for _, it := range items {
		f.seq++
		created := model.ActionItem{
			ID:                   "item-" + string(rune('a'+f.seq%26)) + string(rune('0'+f.seq/26)),
			ActionID:             it.ActionID,
			Type:                 it.Type,
			VideoID:              it.VideoID,
			SourcePlaylistID:     it.SourcePlaylistID,
			TargetPlaylistID:     it.TargetPlaylistID,
			SourcePlaylistItemID: it.SourcePlaylistItemID,
			Position:             it.Position,
			Status:               model.ActionItemStatusPending,
			CreatedAt:            time.Now(),
		}
		stored := created
		f.items[created.ID] = &stored
		f.order = append(f.order, created.ID)
		out = append(out, created)
	}
	return out, nil
}

func (f *fakeLedger) UpdateItem(ctx context.Context, id string, update repository.ActionItemUpdate) (*model.ActionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, errNoRows()
	}
	if update.Status != nil {
		it.Status = *update.Status
	}
	if update.ErrorCode != nil {
		it.ErrorCode = update.ErrorCode
	}
	if update.ErrorMessage != nil {
		it.ErrorMessage = update.ErrorMessage
	}
	if update.TargetPlaylistItemID != nil {
		it.TargetPlaylistItemID = update.TargetPlaylistItemID
	}
	copied := *it
	return &copied, nil
}

func (f *fakeLedger) ListItems(ctx context.Context, actionID string) ([]model.ActionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ActionItem
	for _, id := range f.order {
		if f.items[id].ActionID == actionID {
			out = append(out, *f.items[id])
		}
	}
	return out, nil
}

func (f *fakeLedger) ListItemsPage(ctx context.Context, actionID string, limit int, cursor string) ([]model.ActionItem, string, error) {
	items, err := f.ListItems(ctx, actionID)
	if err != nil {
		return nil, "", err
	}
	if len(items) > limit {
		last := items[limit-1]
		return items[:limit], repository.EncodeCursor(last.CreatedAt, last.ID), nil
	}
	return items, "", nil
}

func (f *fakeLedger) GetCounts(ctx context.Context, actionID string) (model.ActionCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts model.ActionCounts
	for _, it := range f.items {
		if it.ActionID != actionID {
			continue
		}
		counts.Total++
		switch it.Status {
		case model.ActionItemStatusSuccess:
			counts.Success++
		case model.ActionItemStatusFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

func errNoRows() error { return sql.ErrNoRows }

type fakeKeys struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeKeys() *fakeKeys { return &fakeKeys{keys: make(map[string]bool)} }

func (f *fakeKeys) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func (f *fakeKeys) Register(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	already := f.keys[key]
	f.keys[key] = true
	return already, nil
}

// fakeQuota records which methods were charged.
type fakeQuota struct {
	mu      sync.Mutex
	methods []string
}

func (f *fakeQuota) RecordQuota(ctx context.Context, method, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, method)
	return nil
}

func (f *fakeQuota) GetTodayQuota(ctx context.Context, userID string) (*model.QuotaToday, error) {
	return &model.QuotaToday{Budget: 10000}, nil
}

func (f *fakeQuota) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

type MockPlaylistClient struct {
	mock.Mock
}

func (m *MockPlaylistClient) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error) {
	args := m.Called(ctx, playlistID, videoID)
	return args.String(0), args.Error(1)
}

func (m *MockPlaylistClient) DeletePlaylistItem(ctx context.Context, playlistItemID string) error {
	args := m.Called(ctx, playlistItemID)
	return args.Error(0)
}

func (m *MockPlaylistClient) ListPlaylists(ctx context.Context) ([]dto.Playlist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.Playlist), args.Error(1)
}

func (m *MockPlaylistClient) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int64) (*dto.PlaylistItemsResponse, error) {
	args := m.Called(ctx, playlistID, pageToken, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PlaylistItemsResponse), args.Error(1)
}

// fixedProvider hands the same client to every user; nil means unlinked.
type fixedProvider struct {
	client repository.IPlaylistClient
}

func (p *fixedProvider) ForUser(ctx context.Context, userID string) (repository.IPlaylistClient, error) {
	return p.client, nil
}

func testBulkConfig() usecase.BulkConfig {
	return usecase.BulkConfig{
		Retry: usecase.RetryPolicy{Retries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	}
}

func newBulkFixture(client repository.IPlaylistClient) (*usecase.BulkUseCase, *fakeLedger, *fakeKeys, *fakeQuota) {
	ledger := newFakeLedger()
	keys := newFakeKeys()
	quota := &fakeQuota{}
	bulk := usecase.NewBulkUseCase(ledger, keys, quota, &fixedProvider{client: client}, nil, testBulkConfig())
	return bulk, ledger, keys, quota
}

func TestBulkAdd_AllSucceed(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").Return("pli-1", nil)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid02abcdef").Return("pli-2", nil)

	bulk, _, _, quota := newBulkFixture(client)

	res, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef", "vid02abcdef"},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusSuccess, res.Action.Status)
	require.Equal(t, model.ActionCounts{Total: 2, Success: 2, Failed: 0}, res.Counts)
	require.Equal(t, "pli-1", *res.Items[0].TargetPlaylistItemID)
	require.Equal(t, "pli-2", *res.Items[1].TargetPlaylistItemID)
	require.NotNil(t, res.Action.FinishedAt)
	require.False(t, res.UsingFallback)
	require.EqualValues(t, 100, res.EstimatedQuota)
	require.Len(t, quota.recorded(), 2)
	client.AssertExpectations(t)
}

func TestBulkAdd_PartialFailure(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").Return("pli-1", nil)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid02abcdef").
		Return("", &youtube.APIError{Code: "videoNotFound", Message: "Video not found", HTTPStatus: 404})

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef", "vid02abcdef"},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusPartial, res.Action.Status)
	require.Equal(t, model.ActionCounts{Total: 2, Success: 1, Failed: 1}, res.Counts)
	require.Equal(t, model.ActionItemStatusFailed, res.Items[1].Status)
	require.Equal(t, "videoNotFound", *res.Items[1].ErrorCode)
	require.Equal(t, "Video not found", *res.Items[1].ErrorMessage)
}

func TestBulkAdd_AllFail(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, mock.Anything, mock.Anything).
		Return("", &youtube.APIError{Code: "forbidden", Message: "Forbidden", HTTPStatus: 403})

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef", "vid02abcdef"},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusFailed, res.Action.Status)
	require.Equal(t, 2, res.Counts.Failed)
}

func TestBulkAdd_RetriesTransientFailure(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").
		Return("", &youtube.APIError{Code: "backendError", Message: "Backend Error", HTTPStatus: 500}).Once()
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").
		Return("pli-1", nil).Once()

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef"},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusSuccess, res.Action.Status)
	client.AssertNumberOfCalls(t, "InsertPlaylistItem", 2)
}

func TestBulkAdd_Fallback(t *testing.T) {
	bulk, _, _, quota := newBulkFixture(nil)

	res, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef"},
	})

	require.NoError(t, err)
	require.True(t, res.UsingFallback)
	require.Equal(t, model.ActionStatusSuccess, res.Action.Status)
	require.Equal(t, "mock-vid01abcdef", *res.Items[0].TargetPlaylistItemID)
	require.Empty(t, quota.recorded(), "fallback mode must not charge quota")
}

func TestBulkAdd_DeduplicatesVideoIDs(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").Return("pli-1", nil).Once()

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef", "vid01abcdef", "vid01abcdef"},
	})

	require.NoError(t, err)
	require.Equal(t, 1, res.Counts.Total)
	client.AssertNumberOfCalls(t, "InsertPlaylistItem", 1)
}

func TestBulkAdd_IdempotentReplay(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").Return("pli-1", nil).Once()

	bulk, _, _, _ := newBulkFixture(client)

	req := &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef"},
		IdempotencyKey:   "bulk-add-2026-08-28-001",
	}
	first, err := bulk.BulkAdd(context.Background(), "42", req)
	require.NoError(t, err)
	require.False(t, first.Idempotent)

	second, err := bulk.BulkAdd(context.Background(), "42", req)
	require.NoError(t, err)
	require.True(t, second.Idempotent)
	require.Equal(t, first.Action.ID, second.Action.ID)
	require.Equal(t, first.Counts, second.Counts)
	client.AssertNumberOfCalls(t, "InsertPlaylistItem", 1)
}

func TestBulkAdd_IdempotentReplay_WrongUser(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, mock.Anything, mock.Anything).Return("pli-1", nil)

	bulk, _, _, _ := newBulkFixture(client)

	req := &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
		VideoIDs:         []string{"vid01abcdef"},
		IdempotencyKey:   "bulk-add-2026-08-28-002",
	}
	_, err := bulk.BulkAdd(context.Background(), "42", req)
	require.NoError(t, err)

	_, err = bulk.BulkAdd(context.Background(), "99", req)
	require.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestBulkAdd_InvalidRequest(t *testing.T) {
	bulk, _, _, _ := newBulkFixture(nil)

	_, err := bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "PLtarget01",
	})
	require.Error(t, err)

	_, err = bulk.BulkAdd(context.Background(), "42", &dto.BulkAddRequest{
		TargetPlaylistID: "bad id!",
		VideoIDs:         []string{"vid01abcdef"},
	})
	require.Error(t, err)
}

func TestBulkRemove_NotFoundIsSuccess(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("DeletePlaylistItem", mock.Anything, "pli-gone").
		Return(&youtube.APIError{Code: "playlistItemNotFound", Message: "Playlist item not found", HTTPStatus: 404})

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkRemove(context.Background(), "42", &dto.BulkRemoveRequest{
		PlaylistItemIDs: []string{"pli-gone"},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusSuccess, res.Action.Status)
	require.Equal(t, model.ActionItemStatusSuccess, res.Items[0].Status)
}

func TestBulkRemove_RecordsProvenance(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("DeletePlaylistItem", mock.Anything, "pli-1").Return(nil)

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkRemove(context.Background(), "42", &dto.BulkRemoveRequest{
		PlaylistItemIDs:  []string{"pli-1"},
		SourcePlaylistID: "PLsource01",
		VideoIDs:         []string{"vid01abcdef"},
	})

	require.NoError(t, err)
	require.Equal(t, "vid01abcdef", *res.Items[0].VideoID)
	require.Equal(t, "PLsource01", *res.Items[0].SourcePlaylistID)
}

func TestBulkMove_TwoPhase(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").Return("pli-new-1", nil)
	client.On("DeletePlaylistItem", mock.Anything, "pli-old-1").Return(nil)

	bulk, _, _, quota := newBulkFixture(client)

	res, err := bulk.BulkMove(context.Background(), "42", &dto.BulkMoveRequest{
		SourcePlaylistID: "PLsource01",
		TargetPlaylistID: "PLtarget01",
		Items:            []dto.MoveItem{{PlaylistItemID: "pli-old-1", VideoID: "vid01abcdef"}},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusSuccess, res.Action.Status)
	require.Equal(t, "pli-new-1", *res.Items[0].TargetPlaylistItemID)
	require.Equal(t, []string{"playlistItems.insert", "playlistItems.delete"}, quota.recorded())
	client.AssertExpectations(t)
}

func TestBulkMove_InsertFails_SkipsDelete(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").
		Return("", &youtube.APIError{Code: "forbidden", Message: "Forbidden", HTTPStatus: 403})

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkMove(context.Background(), "42", &dto.BulkMoveRequest{
		SourcePlaylistID: "PLsource01",
		TargetPlaylistID: "PLtarget01",
		Items:            []dto.MoveItem{{PlaylistItemID: "pli-old-1", VideoID: "vid01abcdef"}},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusFailed, res.Action.Status)
	client.AssertNotCalled(t, "DeletePlaylistItem", mock.Anything, mock.Anything)
}

func TestBulkMove_DeleteFails_ItemFailedKeepsTargetID(t *testing.T) {
	client := new(MockPlaylistClient)
	client.On("InsertPlaylistItem", mock.Anything, "PLtarget01", "vid01abcdef").Return("pli-new-1", nil)
	client.On("DeletePlaylistItem", mock.Anything, "pli-old-1").
		Return(&youtube.APIError{Code: "forbidden", Message: "Forbidden", HTTPStatus: 403})

	bulk, _, _, _ := newBulkFixture(client)

	res, err := bulk.BulkMove(context.Background(), "42", &dto.BulkMoveRequest{
		SourcePlaylistID: "PLsource01",
		TargetPlaylistID: "PLtarget01",
		Items:            []dto.MoveItem{{PlaylistItemID: "pli-old-1", VideoID: "vid01abcdef"}},
	})

	require.NoError(t, err)
	require.Equal(t, model.ActionStatusFailed, res.Action.Status)
	require.Equal(t, model.ActionItemStatusFailed, res.Items[0].Status)
	require.Equal(t, "pli-new-1", *res.Items[0].TargetPlaylistItemID, "inserted id is kept for inspection")
}

func TestBulkMove_SourceEqualsTarget(t *testing.T) {
	bulk, _, _, _ := newBulkFixture(nil)

	_, err := bulk.BulkMove(context.Background(), "42", &dto.BulkMoveRequest{
		SourcePlaylistID: "PLsame01",
		TargetPlaylistID: "PLsame01",
		Items:            []dto.MoveItem{{PlaylistItemID: "pli-1", VideoID: "vid01abcdef"}},
	})
	require.Error(t, err)
}
