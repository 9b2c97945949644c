package model

// QuotaScopeGlobal is the shared day-bucket accumulating every user's
// remote-call cost; per-user buckets use the user id as scope.
const QuotaScopeGlobal = "global"

// QuotaUsage is one (dateKey, scope) accumulation row. Append-only: rows are
// only ever incremented, never decremented, and pruned only by retention.
type QuotaUsage struct {
	DateKey string `json:"dateKey"` // YYYY-MM-DD in Pacific Time (YouTube quota day)
	Scope   string `json:"scope"`
	Used    int64  `json:"used"`
}

// QuotaToday is the user-facing view of today's consumption.
type QuotaToday struct {
	Used    int64  `json:"used"`
	Remain  int64  `json:"remain"`
	Budget  int64  `json:"budget"`
	ResetAt string `json:"resetAt"`
}
