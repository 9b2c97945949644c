package repository

import "context"

// IQuotaUsage accumulates remote-call cost per (dateKey, scope) with an
// atomic increment, so totals stay correct across concurrent processes.
type IQuotaUsage interface {
	AddUsage(ctx context.Context, dateKey, scope string, delta int64) error
	GetUsage(ctx context.Context, dateKey, scope string) (int64, error)
}
