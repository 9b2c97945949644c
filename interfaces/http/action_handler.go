package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ytpm/infrastructure/logger"
	"ytpm/usecase"
)

// IActionHandler exposes the action log plus the undo and retry endpoints.
type IActionHandler interface {
	ListActions(ctx *gin.Context)
	GetAction(ctx *gin.Context)
	ListActionItems(ctx *gin.Context)
	Undo(ctx *gin.Context)
	RetryFailed(ctx *gin.Context)
}

type ActionHandler struct {
	actionUseCase usecase.IActionUseCase
	undoUseCase   usecase.IUndoUseCase
}

func NewActionHandler(actionUseCase usecase.IActionUseCase, undoUseCase usecase.IUndoUseCase) IActionHandler {
	return &ActionHandler{actionUseCase: actionUseCase, undoUseCase: undoUseCase}
}

// ListActions handles GET /api/actions
func (h *ActionHandler) ListActions(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}
	cursor := ctx.Query("cursor")

	page, err := h.actionUseCase.ListActions(ctx.Request.Context(), currentUserID(ctx), limit, cursor)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}

// GetAction handles GET /api/actions/:actionId
func (h *ActionHandler) GetAction(ctx *gin.Context) {
	actionID := ctx.Param("actionId")
	summary, err := h.actionUseCase.GetAction(ctx.Request.Context(), currentUserID(ctx), actionID)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// ListActionItems handles GET /api/actions/:actionId/items
func (h *ActionHandler) ListActionItems(ctx *gin.Context) {
	actionID := ctx.Param("actionId")
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}
	cursor := ctx.Query("cursor")

	page, err := h.actionUseCase.ListActionItems(ctx.Request.Context(), currentUserID(ctx), actionID, limit, cursor)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}

type correctionRequest struct {
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Undo handles POST /api/actions/:actionId/undo
func (h *ActionHandler) Undo(ctx *gin.Context) {
	actionID := ctx.Param("actionId")
	var req correctionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.undoUseCase.Undo(ctx.Request.Context(), currentUserID(ctx), actionID, req.IdempotencyKey)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// RetryFailed handles POST /api/actions/:actionId/retry
func (h *ActionHandler) RetryFailed(ctx *gin.Context) {
	actionID := ctx.Param("actionId")
	var req correctionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.undoUseCase.RetryFailed(ctx.Request.Context(), currentUserID(ctx), actionID, req.IdempotencyKey)
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
