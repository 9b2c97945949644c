package model

import "time"

// ActionType enumerates the bulk mutation kinds a user can submit.
type ActionType string

const (
	ActionTypeAdd    ActionType = "ADD"
	ActionTypeRemove ActionType = "REMOVE"
	ActionTypeMove   ActionType = "MOVE"
	ActionTypeUndo   ActionType = "UNDO"
)

// ActionStatus is the aggregate outcome of a bulk action. It is monotonic:
// pending -> running -> one of {success, partial, failed}.
type ActionStatus string

const (
	ActionStatusPending ActionStatus = "pending"
	ActionStatusRunning ActionStatus = "running"
	ActionStatusSuccess ActionStatus = "success"
	ActionStatusPartial ActionStatus = "partial"
	ActionStatusFailed  ActionStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s ActionStatus) Terminal() bool {
	return s == ActionStatusSuccess || s == ActionStatusPartial || s == ActionStatusFailed
}

// ActionItemStatus is the outcome of a single element within an action.
// Once success or failed it is never rewritten; corrective work happens in
// a new action instead.
type ActionItemStatus string

const (
	ActionItemStatusPending ActionItemStatus = "pending"
	ActionItemStatusSuccess ActionItemStatus = "success"
	ActionItemStatusFailed  ActionItemStatus = "failed"
)

// Action is one user-initiated batch request against playlists.
type Action struct {
	ID               string       `json:"id"`
	UserID           string       `json:"userId"`
	Type             ActionType   `json:"type"`
	SourcePlaylistID *string      `json:"sourcePlaylistId"`
	TargetPlaylistID *string      `json:"targetPlaylistId"`
	Status           ActionStatus `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
	FinishedAt       *time.Time   `json:"finishedAt"`
	ParentActionID   *string      `json:"parentActionId"`
}

// ActionItem is one element of a batch, tracked to an independent terminal
// outcome. For MOVE it carries both the original source playlist item id and
// the inserted target playlist item id once known, which is what makes
// delete-after-insert sequencing and undo derivable from history alone.
type ActionItem struct {
	ID                   string           `json:"id"`
	ActionID             string           `json:"actionId"`
	Type                 ActionType       `json:"type"`
	VideoID              *string          `json:"videoId"`
	SourcePlaylistID     *string          `json:"sourcePlaylistId"`
	TargetPlaylistID     *string          `json:"targetPlaylistId"`
	SourcePlaylistItemID *string          `json:"sourcePlaylistItemId"`
	TargetPlaylistItemID *string          `json:"targetPlaylistItemId"`
	Position             *int             `json:"position"`
	Status               ActionItemStatus `json:"status"`
	ErrorCode            *string          `json:"errorCode"`
	ErrorMessage         *string          `json:"errorMessage"`
	CreatedAt            time.Time        `json:"-"`
}

// ActionCounts aggregates per-item outcomes for one action.
type ActionCounts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}
