package dto

import "ytpm/domain/model"

// ActionSummary is one action with its aggregate counts, as shown in the
// action log.
type ActionSummary struct {
	Action *model.Action      `json:"action"`
	Counts model.ActionCounts `json:"counts"`
	Items  []model.ActionItem `json:"items,omitempty"`
}

// ActionListResponse is a cursor page of actions (newest first).
type ActionListResponse struct {
	Actions    []model.Action `json:"actions"`
	NextCursor string         `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

// ActionItemsResponse is a keyset page of one action's items in creation order.
type ActionItemsResponse struct {
	Items      []model.ActionItem `json:"items"`
	NextCursor string             `json:"nextCursor,omitempty"`
}
