package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ytpm/domain/dto"
	"ytpm/infrastructure/logger"
	"ytpm/usecase"
)

const ErrorUnmarshal = "Error while unmarshal"

// IBulkHandler exposes the bulk mutation endpoints.
type IBulkHandler interface {
	BulkAdd(ctx *gin.Context)
	BulkRemove(ctx *gin.Context)
	BulkMove(ctx *gin.Context)
}

type BulkHandler struct {
	bulkUseCase     usecase.IBulkUseCase
	playlistUseCase usecase.IPlaylistUseCase
}

func NewBulkHandler(bulkUseCase usecase.IBulkUseCase, playlistUseCase usecase.IPlaylistUseCase) IBulkHandler {
	return &BulkHandler{bulkUseCase: bulkUseCase, playlistUseCase: playlistUseCase}
}

// BulkAdd handles POST /api/bulk/add
func (h *BulkHandler) BulkAdd(ctx *gin.Context) {
	var req dto.BulkAddRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := currentUserID(ctx)
	result, err := h.bulkUseCase.BulkAdd(ctx.Request.Context(), userID, &req)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	h.invalidateBrowse(ctx, userID)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// BulkRemove handles POST /api/bulk/remove
func (h *BulkHandler) BulkRemove(ctx *gin.Context) {
	var req dto.BulkRemoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := currentUserID(ctx)
	result, err := h.bulkUseCase.BulkRemove(ctx.Request.Context(), userID, &req)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	h.invalidateBrowse(ctx, userID)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// BulkMove handles POST /api/bulk/move
func (h *BulkHandler) BulkMove(ctx *gin.Context) {
	var req dto.BulkMoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := currentUserID(ctx)
	result, err := h.bulkUseCase.BulkMove(ctx.Request.Context(), userID, &req)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	h.invalidateBrowse(ctx, userID)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (h *BulkHandler) invalidateBrowse(ctx *gin.Context, userID string) {
	if h.playlistUseCase != nil {
		h.playlistUseCase.InvalidateBrowseCache(ctx.Request.Context(), userID)
	}
}

// currentUserID reads the id the auth middleware stored on the context.
func currentUserID(ctx *gin.Context) string {
	if v, ok := ctx.Get("user_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// respondUseCaseError maps domain sentinel errors to HTTP statuses.
func respondUseCaseError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrActionNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrActionNotTerminal),
		errors.Is(err, usecase.ErrNotUndoable),
		errors.Is(err, usecase.ErrNoFailedItems):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.GetLogger().WithField("error", err).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
