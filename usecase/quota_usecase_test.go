package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ytpm/domain/model"
)

type memUsage struct {
	usage map[string]int64
}

func newMemUsage() *memUsage { return &memUsage{usage: make(map[string]int64)} }

func (s *memUsage) AddUsage(ctx context.Context, dateKey, scope string, delta int64) error {
	s.usage[dateKey+"|"+scope] += delta
	return nil
}

func (s *memUsage) GetUsage(ctx context.Context, dateKey, scope string) (int64, error) {
	return s.usage[dateKey+"|"+scope], nil
}

func TestQuotaUseCase_RecordQuota(t *testing.T) {
	store := newMemUsage()
	u := NewQuotaUseCase(store, 10000)
	u.now = func() time.Time { return time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC) }

	err := u.RecordQuota(context.Background(), MethodPlaylistItemsInsert, "42")
	require.NoError(t, err)

	key := u.todayKey()
	require.EqualValues(t, 50, store.usage[key+"|"+model.QuotaScopeGlobal])
	require.EqualValues(t, 50, store.usage[key+"|42"])
}

func TestQuotaUseCase_RecordQuota_UnknownMethodIsFree(t *testing.T) {
	store := newMemUsage()
	u := NewQuotaUseCase(store, 10000)

	err := u.RecordQuota(context.Background(), "channels.update", "42")
	require.NoError(t, err)
	require.Empty(t, store.usage)
}

func TestQuotaUseCase_GetTodayQuota(t *testing.T) {
	store := newMemUsage()
	u := NewQuotaUseCase(store, 10000)
	u.now = func() time.Time { return time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, u.RecordQuota(context.Background(), MethodPlaylistItemsInsert, "42"))
	require.NoError(t, u.RecordQuota(context.Background(), MethodPlaylistItemsDelete, "42"))

	today, err := u.GetTodayQuota(context.Background(), "42")
	require.NoError(t, err)
	require.EqualValues(t, 100, today.Used)
	require.EqualValues(t, 9900, today.Remain)
	require.EqualValues(t, 10000, today.Budget)
	require.NotEmpty(t, today.ResetAt)
}

func TestQuotaUseCase_GetTodayQuota_RemainClampsAtZero(t *testing.T) {
	store := newMemUsage()
	u := NewQuotaUseCase(store, 100)
	u.now = func() time.Time { return time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		require.NoError(t, u.RecordQuota(context.Background(), MethodPlaylistItemsInsert, "42"))
	}

	today, err := u.GetTodayQuota(context.Background(), "42")
	require.NoError(t, err)
	require.EqualValues(t, 150, today.Used)
	require.Zero(t, today.Remain)
}

// The day bucket rolls over at Pacific midnight, not UTC midnight.
func TestQuotaUseCase_PacificDayKey(t *testing.T) {
	u := NewQuotaUseCase(newMemUsage(), 10000)

	// 05:00 UTC on Aug 28 is still Aug 27 in Los Angeles.
	u.now = func() time.Time { return time.Date(2026, 8, 28, 5, 0, 0, 0, time.UTC) }
	require.Equal(t, "2026-08-27", u.todayKey())

	u.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	require.Equal(t, "2026-08-28", u.todayKey())
}
