package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ytpm/domain/dto"
	"ytpm/infrastructure/logger"
)

const (
	playlistsTTL     = 60 * time.Second
	playlistItemsTTL = 30 * time.Second
)

// IPlaylistCache is a best-effort read cache in front of the remote playlist
// API. Misses and cache errors are indistinguishable to callers; writes are
// fire-and-forget.
type IPlaylistCache interface {
	GetPlaylists(ctx context.Context, userID string) ([]dto.Playlist, bool)
	SetPlaylists(ctx context.Context, userID string, playlists []dto.Playlist)
	GetPlaylistItems(ctx context.Context, userID, playlistID, pageToken string) (*dto.PlaylistItemsResponse, bool)
	SetPlaylistItems(ctx context.Context, userID, playlistID, pageToken string, page *dto.PlaylistItemsResponse)
	InvalidateUser(ctx context.Context, userID string)
}

// PlaylistCache stores JSON blobs in Redis with short TTLs. Entries also age
// out naturally, so invalidation after a mutation is an optimization, not a
// correctness requirement.
type PlaylistCache struct {
	client *redis.Client
}

func NewPlaylistCache(client *redis.Client) IPlaylistCache {
	return &PlaylistCache{client: client}
}

func playlistsKey(userID string) string {
	return fmt.Sprintf("ytpm:playlists:%s", userID)
}

func playlistItemsKey(userID, playlistID, pageToken string) string {
	return fmt.Sprintf("ytpm:playlist-items:%s:%s:%s", userID, playlistID, pageToken)
}

func (c *PlaylistCache) GetPlaylists(ctx context.Context, userID string) ([]dto.Playlist, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, playlistsKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var playlists []dto.Playlist
	if err := json.Unmarshal(raw, &playlists); err != nil {
		return nil, false
	}
	return playlists, true
}

func (c *PlaylistCache) SetPlaylists(ctx context.Context, userID string, playlists []dto.Playlist) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(playlists)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, playlistsKey(userID), raw, playlistsTTL).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to cache playlists")
	}
}

func (c *PlaylistCache) GetPlaylistItems(ctx context.Context, userID, playlistID, pageToken string) (*dto.PlaylistItemsResponse, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, playlistItemsKey(userID, playlistID, pageToken)).Bytes()
	if err != nil {
		return nil, false
	}
	var page dto.PlaylistItemsResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (c *PlaylistCache) SetPlaylistItems(ctx context.Context, userID, playlistID, pageToken string, page *dto.PlaylistItemsResponse) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, playlistItemsKey(userID, playlistID, pageToken), raw, playlistItemsTTL).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to cache playlist items")
	}
}

// InvalidateUser drops every cached page for the user after a mutation.
func (c *PlaylistCache) InvalidateUser(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	patterns := []string{
		playlistsKey(userID),
		fmt.Sprintf("ytpm:playlist-items:%s:*", userID),
	}
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Failed to invalidate cache entry")
			}
		}
	}
}
