package repository

import (
	"context"

	"ytpm/domain/dto"
)

// IPlaylistClient performs single-item calls against the remote playlist API
// on behalf of one user. Mutation errors are returned as *youtube.APIError
// so callers can classify them.
type IPlaylistClient interface {
	// InsertPlaylistItem adds the video to the playlist and returns the
	// remote-assigned playlist item id.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error)
	// DeletePlaylistItem removes the playlist item. A missing item surfaces
	// as a distinguishable not-found error.
	DeletePlaylistItem(ctx context.Context, playlistItemID string) error

	ListPlaylists(ctx context.Context) ([]dto.Playlist, error)
	ListPlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int64) (*dto.PlaylistItemsResponse, error)
}

// IPlaylistClientProvider builds a client for a user from their stored OAuth
// tokens. A (nil, nil) return means the user has no linked client and the
// coordinator must run in fallback mode.
type IPlaylistClientProvider interface {
	ForUser(ctx context.Context, userID string) (IPlaylistClient, error)
}
