package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ytpm/usecase"
)

type IPlaylistHandler interface {
	ListPlaylists(ctx *gin.Context)
	ListPlaylistItems(ctx *gin.Context)
}

type PlaylistHandler struct {
	playlistUseCase usecase.IPlaylistUseCase
}

func NewPlaylistHandler(playlistUseCase usecase.IPlaylistUseCase) IPlaylistHandler {
	return &PlaylistHandler{playlistUseCase: playlistUseCase}
}

// ListPlaylists handles GET /api/playlists
func (h *PlaylistHandler) ListPlaylists(ctx *gin.Context) {
	playlists, err := h.playlistUseCase.ListPlaylists(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": playlists})
}

// ListPlaylistItems handles GET /api/playlist-items?playlistId=
func (h *PlaylistHandler) ListPlaylistItems(ctx *gin.Context) {
	playlistID := ctx.Query("playlistId")
	if playlistID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "playlistId is required"})
		return
	}

	// Support both snake_case and camelCase query params from frontend
	pageToken := ctx.Query("page_token")
	if pageToken == "" {
		pageToken = ctx.Query("pageToken")
	}
	var maxResults int64
	maxResultsRaw := ctx.Query("max_results")
	if maxResultsRaw == "" {
		maxResultsRaw = ctx.Query("maxResults")
	}
	if maxResultsRaw != "" {
		if val, err := strconv.ParseInt(maxResultsRaw, 10, 64); err == nil {
			maxResults = val
		}
	}

	page, err := h.playlistUseCase.ListPlaylistItems(ctx.Request.Context(), currentUserID(ctx), playlistID, pageToken, maxResults)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}
