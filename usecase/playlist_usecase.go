package usecase

import (
	"context"
	"fmt"

	"ytpm/domain/dto"
	"ytpm/domain/repository"
	"ytpm/infrastructure/cache"
	"ytpm/infrastructure/logger"
)

// IPlaylistUseCase serves the browse surface: the user's playlists and the
// pages of items inside one playlist.
type IPlaylistUseCase interface {
	ListPlaylists(ctx context.Context, userID string) ([]dto.Playlist, error)
	ListPlaylistItems(ctx context.Context, userID, playlistID, pageToken string, maxResults int64) (*dto.PlaylistItemsResponse, error)
	InvalidateBrowseCache(ctx context.Context, userID string)
}

// PlaylistUseCase reads through a short-TTL cache to keep repeated browsing
// off the remote API's quota. Users without a linked account get a small
// local sandbox so the UI stays explorable.
type PlaylistUseCase struct {
	clients repository.IPlaylistClientProvider
	cache   cache.IPlaylistCache
	quota   IQuotaUseCase
}

func NewPlaylistUseCase(clients repository.IPlaylistClientProvider, playlistCache cache.IPlaylistCache, quota IQuotaUseCase) *PlaylistUseCase {
	return &PlaylistUseCase{clients: clients, cache: playlistCache, quota: quota}
}

func (u *PlaylistUseCase) ListPlaylists(ctx context.Context, userID string) ([]dto.Playlist, error) {
	if playlists, ok := u.cache.GetPlaylists(ctx, userID); ok {
		return playlists, nil
	}
	client, err := u.clients.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare playlist client: %w", err)
	}
	if client == nil {
		return fallbackPlaylists(), nil
	}
	playlists, err := client.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	u.recordQuota(ctx, MethodPlaylistsList, userID)
	u.cache.SetPlaylists(ctx, userID, playlists)
	return playlists, nil
}

func (u *PlaylistUseCase) ListPlaylistItems(ctx context.Context, userID, playlistID, pageToken string, maxResults int64) (*dto.PlaylistItemsResponse, error) {
	if !dto.ValidID(playlistID) {
		return nil, fmt.Errorf("invalid playlist ID")
	}
	if page, ok := u.cache.GetPlaylistItems(ctx, userID, playlistID, pageToken); ok {
		return page, nil
	}
	client, err := u.clients.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare playlist client: %w", err)
	}
	if client == nil {
		return fallbackPlaylistItems(playlistID), nil
	}
	page, err := client.ListPlaylistItems(ctx, playlistID, pageToken, maxResults)
	if err != nil {
		return nil, err
	}
	u.recordQuota(ctx, MethodPlaylistItemsList, userID)
	u.cache.SetPlaylistItems(ctx, userID, playlistID, pageToken, page)
	return page, nil
}

// InvalidateBrowseCache drops the user's cached pages after a mutation so
// the next browse reflects it without waiting out the TTL.
func (u *PlaylistUseCase) InvalidateBrowseCache(ctx context.Context, userID string) {
	u.cache.InvalidateUser(ctx, userID)
}

func (u *PlaylistUseCase) recordQuota(ctx context.Context, method, userID string) {
	if u.quota == nil {
		return
	}
	if err := u.quota.RecordQuota(ctx, method, userID); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to record quota usage")
	}
}

// fallbackPlaylists is the sandbox shown to users with no linked account.
func fallbackPlaylists() []dto.Playlist {
	return []dto.Playlist{
		{ID: "mock-playlist-favorites", Title: "Favorites", ItemCount: 3},
		{ID: "mock-playlist-watch-later", Title: "Watch Later", ItemCount: 2},
	}
}

func fallbackPlaylistItems(playlistID string) *dto.PlaylistItemsResponse {
	items := []dto.PlaylistItem{
		{ID: "mock-item-1", VideoID: "mockVideo01", Title: "Sample video 1", Position: 0},
		{ID: "mock-item-2", VideoID: "mockVideo02", Title: "Sample video 2", Position: 1},
	}
	if playlistID == "mock-playlist-favorites" {
		items = append(items, dto.PlaylistItem{ID: "mock-item-3", VideoID: "mockVideo03", Title: "Sample video 3", Position: 2})
	}
	return &dto.PlaylistItemsResponse{Items: items}
}

var _ IPlaylistUseCase = (*PlaylistUseCase)(nil)
