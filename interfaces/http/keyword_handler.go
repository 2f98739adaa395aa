package http

import (
	"errors"
	"net/http"

	"trend-api/domain/dto"
	"trend-api/domain/model"
	"trend-api/infrastructure/logger"
	"trend-api/interfaces/middleware"
	"trend-api/usecase"

	"github.com/gin-gonic/gin"
)

type IKeywordHandler interface {
	Analyze(ctx *gin.Context)
}

type KeywordHandler struct {
	keywordUsecase usecase.IKeywordUsecase
}

func NewKeywordHandler(keywordUsecase usecase.IKeywordUsecase) IKeywordHandler {
	return &KeywordHandler{keywordUsecase: keywordUsecase}
}

// Analyze handles GET /api/keywords/analyze?keyword=
func (h *KeywordHandler) Analyze(ctx *gin.Context) {
	var req dto.KeywordAnalyzeRequest
	_ = ctx.ShouldBindQuery(&req)

	analysis, err := h.keywordUsecase.Analyze(ctx.Request.Context(), req.Keyword, middleware.TierFromContext(ctx))
	if errors.Is(err, model.ErrKeywordRequired) {
		respondError(ctx, http.StatusBadRequest, "Keyword is required")
		return
	}
	if err != nil {
		logger.GetLogger().WithField("keyword", req.Keyword).WithField("error", err).Error("Error analyzing keyword")
		respondError(ctx, http.StatusInternalServerError, "Failed to analyze keyword")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Data: analysis})
}
