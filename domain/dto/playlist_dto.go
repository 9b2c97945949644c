package dto

// Playlist is a browse-level view of one of the user's playlists.
type Playlist struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ItemCount    int64  `json:"itemCount"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// PlaylistItem is one entry inside a playlist.
type PlaylistItem struct {
	ID           string `json:"id"` // playlist item id (what delete operates on)
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Position     int64  `json:"position"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// PlaylistItemsResponse is one page of playlist entries.
type PlaylistItemsResponse struct {
	Items         []PlaylistItem `json:"items"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}
