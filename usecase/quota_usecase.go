package usecase

import (
	"context"
	"fmt"
	"time"

	"ytpm/domain/model"
	"ytpm/domain/repository"
)

// YouTube Data API method names and their quota unit costs.
const (
	MethodPlaylistItemsList   = "playlistItems.list"
	MethodPlaylistItemsInsert = "playlistItems.insert"
	MethodPlaylistItemsDelete = "playlistItems.delete"
	MethodPlaylistsList       = "playlists.list"
)

// MethodCost maps an API method to its quota units.
var MethodCost = map[string]int64{
	MethodPlaylistItemsList:   1,
	MethodPlaylistItemsInsert: 50,
	MethodPlaylistItemsDelete: 50,
	MethodPlaylistsList:       1,
}

// DefaultDailyBudget is YouTube's default project quota.
const DefaultDailyBudget int64 = 10_000

// IQuotaUseCase records consumed remote-call cost and exposes today's usage.
// Recording is observability only; it never gates execution.
type IQuotaUseCase interface {
	RecordQuota(ctx context.Context, method, userID string) error
	GetTodayQuota(ctx context.Context, userID string) (*model.QuotaToday, error)
}

// QuotaUseCase implements quota accounting over the day-bucket usage store.
type QuotaUseCase struct {
	usage  repository.IQuotaUsage
	budget int64
	now    func() time.Time
	loc    *time.Location
}

func NewQuotaUseCase(usage repository.IQuotaUsage, budget int64) *QuotaUseCase {
	if budget <= 0 {
		budget = DefaultDailyBudget
	}
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		// YouTube resets quota at Pacific midnight; UTC-8 is the closest
		// fixed approximation if tzdata is unavailable.
		loc = time.FixedZone("PT", -8*3600)
	}
	return &QuotaUseCase{usage: usage, budget: budget, now: time.Now, loc: loc}
}

// todayKey returns the YYYY-MM-DD bucket for the current Pacific day.
func (u *QuotaUseCase) todayKey() string {
	return u.now().In(u.loc).Format("2006-01-02")
}

// nextResetAt returns the next Pacific midnight in RFC3339.
func (u *QuotaUseCase) nextResetAt() string {
	nowPT := u.now().In(u.loc)
	next := time.Date(nowPT.Year(), nowPT.Month(), nowPT.Day(), 0, 0, 0, 0, u.loc).AddDate(0, 0, 1)
	return next.Format(time.RFC3339)
}

// RecordQuota accumulates the method's cost in the global bucket and, when a
// user is known, in that user's bucket as well.
func (u *QuotaUseCase) RecordQuota(ctx context.Context, method, userID string) error {
	units := MethodCost[method]
	if units <= 0 {
		return nil
	}
	key := u.todayKey()
	if err := u.usage.AddUsage(ctx, key, model.QuotaScopeGlobal, units); err != nil {
		return fmt.Errorf("failed to record global quota usage: %w", err)
	}
	if userID != "" {
		if err := u.usage.AddUsage(ctx, key, userID, units); err != nil {
			return fmt.Errorf("failed to record user quota usage: %w", err)
		}
	}
	return nil
}

// GetTodayQuota reports today's consumption for the user, falling back to the
// global bucket when the user has no usage of their own yet.
func (u *QuotaUseCase) GetTodayQuota(ctx context.Context, userID string) (*model.QuotaToday, error) {
	key := u.todayKey()
	globalUsed, err := u.usage.GetUsage(ctx, key, model.QuotaScopeGlobal)
	if err != nil {
		return nil, fmt.Errorf("failed to read global quota usage: %w", err)
	}
	var userUsed int64
	if userID != "" {
		userUsed, err = u.usage.GetUsage(ctx, key, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to read user quota usage: %w", err)
		}
	}
	used := globalUsed
	if userUsed > 0 {
		used = userUsed
	}
	remain := u.budget - used
	if remain < 0 {
		remain = 0
	}
	return &model.QuotaToday{
		Used:    used,
		Remain:  remain,
		Budget:  u.budget,
		ResetAt: u.nextResetAt(),
	}, nil
}

var _ IQuotaUseCase = (*QuotaUseCase)(nil)
