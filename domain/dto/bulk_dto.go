package dto

import (
	"fmt"
	"regexp"

	"ytpm/domain/model"
)

// idPattern matches YouTube video, playlist and playlist-item identifiers.
// Anything else is rejected at the boundary; there is exactly one accepted
// shape per operation.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,255}$`)

// ValidID reports whether s is an acceptable YouTube identifier.
func ValidID(s string) bool { return idPattern.MatchString(s) }

// BulkAddRequest adds videos to a target playlist.
type BulkAddRequest struct {
	TargetPlaylistID string   `json:"targetPlaylistId" binding:"required"`
	VideoIDs         []string `json:"videoIds" binding:"required"`
	IdempotencyKey   string   `json:"idempotencyKey,omitempty"`
}

func (r *BulkAddRequest) Validate() error {
	if !ValidID(r.TargetPlaylistID) {
		return fmt.Errorf("invalid targetPlaylistId")
	}
	if len(r.VideoIDs) == 0 {
		return fmt.Errorf("provide at least one video ID")
	}
	for _, id := range r.VideoIDs {
		if !ValidID(id) {
			return fmt.Errorf("invalid video ID %q", id)
		}
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

// BulkRemoveRequest removes playlist items from their playlist. VideoIDs is
// optional provenance: when present it must parallel PlaylistItemIDs and is
// recorded on the items so a REMOVE can later be undone (re-added).
type BulkRemoveRequest struct {
	PlaylistItemIDs  []string `json:"playlistItemIds" binding:"required"`
	SourcePlaylistID string   `json:"sourcePlaylistId,omitempty"`
	VideoIDs         []string `json:"videoIds,omitempty"`
	IdempotencyKey   string   `json:"idempotencyKey,omitempty"`
}

func (r *BulkRemoveRequest) Validate() error {
	if len(r.PlaylistItemIDs) == 0 {
		return fmt.Errorf("provide at least one playlist item ID")
	}
	for _, id := range r.PlaylistItemIDs {
		if !ValidID(id) {
			return fmt.Errorf("invalid playlist item ID %q", id)
		}
	}
	if r.SourcePlaylistID != "" && !ValidID(r.SourcePlaylistID) {
		return fmt.Errorf("invalid sourcePlaylistId")
	}
	if len(r.VideoIDs) > 0 {
		if len(r.VideoIDs) != len(r.PlaylistItemIDs) {
			return fmt.Errorf("videoIds must parallel playlistItemIds")
		}
		for _, id := range r.VideoIDs {
			if !ValidID(id) {
				return fmt.Errorf("invalid video ID %q", id)
			}
		}
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

// MoveItem pairs the playlist item to remove from the source with the video
// it points at, so the insert into the target can be issued independently.
type MoveItem struct {
	PlaylistItemID string `json:"playlistItemId" binding:"required"`
	VideoID        string `json:"videoId" binding:"required"`
}

// BulkMoveRequest moves playlist items from one playlist to another.
type BulkMoveRequest struct {
	SourcePlaylistID string     `json:"sourcePlaylistId" binding:"required"`
	TargetPlaylistID string     `json:"targetPlaylistId" binding:"required"`
	Items            []MoveItem `json:"items" binding:"required"`
	IdempotencyKey   string     `json:"idempotencyKey,omitempty"`
}

func (r *BulkMoveRequest) Validate() error {
	if !ValidID(r.SourcePlaylistID) {
		return fmt.Errorf("invalid sourcePlaylistId")
	}
	if !ValidID(r.TargetPlaylistID) {
		return fmt.Errorf("invalid targetPlaylistId")
	}
	if r.SourcePlaylistID == r.TargetPlaylistID {
		return fmt.Errorf("source and target playlists must differ")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("provide at least one playlist item to move")
	}
	for _, it := range r.Items {
		if !ValidID(it.PlaylistItemID) {
			return fmt.Errorf("invalid playlist item ID %q", it.PlaylistItemID)
		}
		if !ValidID(it.VideoID) {
			return fmt.Errorf("invalid video ID %q", it.VideoID)
		}
	}
	return validateIdempotencyKey(r.IdempotencyKey)
}

func validateIdempotencyKey(key string) error {
	if key == "" {
		return nil
	}
	if len(key) < 8 || len(key) > 255 {
		return fmt.Errorf("idempotency key must be 8-255 characters")
	}
	return nil
}

// OperationResult is the submission response: the finalized action, its
// per-item outcome table, aggregate counts and the quota estimate.
// UsingFallback marks runs that never touched the remote API because the
// user has no linked YouTube client; Idempotent marks responses replayed
// from a previously registered idempotency key.
type OperationResult struct {
	Action         *model.Action      `json:"action"`
	Items          []model.ActionItem `json:"items"`
	Counts         model.ActionCounts `json:"counts"`
	EstimatedQuota int64              `json:"estimatedQuota"`
	UsingFallback  bool               `json:"usingFallback"`
	Idempotent     bool               `json:"idempotent"`
}
