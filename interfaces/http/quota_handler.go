package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ytpm/usecase"
)

type IQuotaHandler interface {
	GetTodayQuota(ctx *gin.Context)
}

type QuotaHandler struct {
	quotaUseCase usecase.IQuotaUseCase
}

func NewQuotaHandler(quotaUseCase usecase.IQuotaUseCase) IQuotaHandler {
	return &QuotaHandler{quotaUseCase: quotaUseCase}
}

// GetTodayQuota handles GET /api/quota
func (h *QuotaHandler) GetTodayQuota(ctx *gin.Context) {
	today, err := h.quotaUseCase.GetTodayQuota(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": today})
}
