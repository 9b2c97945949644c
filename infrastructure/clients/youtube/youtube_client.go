package youtube

import (
	"context"
	"fmt"
	"time"

	"ytpm/domain/dto"
	"ytpm/domain/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client wraps the YouTube Data API for a single authenticated user.
type Client struct {
	service     *youtube.Service
	oauthConfig *oauth2.Config
	token       *oauth2.Token
	ctx         context.Context
}

// Config represents YouTube API configuration for one user's client.
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewYouTubeClient creates a YouTube API client from OAuth credentials.
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IPlaylistClient, error) {
	if config.AccessToken == "" && config.RefreshToken == "" {
		return nil, fmt.Errorf("youtube client requires OAuth credentials")
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes: []string{
			youtube.YoutubeScope,
			youtube.YoutubeForceSslScope,
		},
		Endpoint: google.Endpoint,
	}

	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	}

	httpClient := oauth2Config.Client(ctx, token)
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service:     service,
		oauthConfig: oauth2Config,
		token:       token,
		ctx:         ctx,
	}, nil
}

// InsertPlaylistItem adds a video to a playlist and returns the new playlist
// item id assigned by YouTube.
func (c *Client) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) (string, error) {
	if err := c.refreshTokenIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}

	resp, err := c.service.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do()
	if err != nil {
		return "", ParseAPIError(err)
	}
	return resp.Id, nil
}

// DeletePlaylistItem removes a playlist item by its id.
func (c *Client) DeletePlaylistItem(ctx context.Context, playlistItemID string) error {
	if err := c.refreshTokenIfNeeded(); err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := c.service.PlaylistItems.Delete(playlistItemID).Context(ctx).Do(); err != nil {
		return ParseAPIError(err)
	}
	return nil
}

// ListPlaylists retrieves the authenticated user's playlists.
func (c *Client) ListPlaylists(ctx context.Context) ([]dto.Playlist, error) {
	if err := c.refreshTokenIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	playlists := make([]dto.Playlist, 0)
	pageToken := ""
	for {
		call := c.service.Playlists.List([]string{"snippet", "contentDetails"}).
			Mine(true).
			MaxResults(50).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, ParseAPIError(err)
		}
		for _, p := range resp.Items {
			pl := dto.Playlist{
				ID:          p.Id,
				Title:       p.Snippet.Title,
				Description: p.Snippet.Description,
			}
			if p.ContentDetails != nil {
				pl.ItemCount = p.ContentDetails.ItemCount
			}
			if p.Snippet.Thumbnails != nil && p.Snippet.Thumbnails.Medium != nil {
				pl.ThumbnailURL = p.Snippet.Thumbnails.Medium.Url
			}
			playlists = append(playlists, pl)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return playlists, nil
}

// ListPlaylistItems retrieves one page of a playlist's entries.
func (c *Client) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, maxResults int64) (*dto.PlaylistItemsResponse, error) {
	if err := c.refreshTokenIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}

	call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(maxResults).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, ParseAPIError(err)
	}

	out := &dto.PlaylistItemsResponse{NextPageToken: resp.NextPageToken}
	for _, it := range resp.Items {
		entry := dto.PlaylistItem{
			ID:    it.Id,
			Title: it.Snippet.Title,
		}
		if it.ContentDetails != nil {
			entry.VideoID = it.ContentDetails.VideoId
		} else if it.Snippet.ResourceId != nil {
			entry.VideoID = it.Snippet.ResourceId.VideoId
		}
		entry.Position = it.Snippet.Position
		if it.Snippet.Thumbnails != nil && it.Snippet.Thumbnails.Default != nil {
			entry.ThumbnailURL = it.Snippet.Thumbnails.Default.Url
		}
		out.Items = append(out.Items, entry)
	}
	return out, nil
}

// refreshTokenIfNeeded checks if the token is expired and refreshes it automatically
func (c *Client) refreshTokenIfNeeded() error {
	if c.oauthConfig == nil || c.token == nil {
		return nil
	}
	if c.token.Expiry.IsZero() || time.Until(c.token.Expiry) < 5*time.Minute {
		newToken, err := c.oauthConfig.TokenSource(c.ctx, c.token).Token()
		if err != nil {
			return fmt.Errorf("failed to refresh token: %w", err)
		}
		c.token = newToken
		httpClient := c.oauthConfig.Client(c.ctx, newToken)
		service, err := youtube.NewService(c.ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return fmt.Errorf("failed to recreate YouTube service with refreshed token: %w", err)
		}
		c.service = service
	}
	return nil
}
