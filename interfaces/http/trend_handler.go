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

// ITrendHandler defines the trend endpoints
type ITrendHandler interface {
	GetTrends(ctx *gin.Context)
	GetCombinedTrends(ctx *gin.Context)
	GetTrendingVideos(ctx *gin.Context)
}

type TrendHandler struct {
	trendUsecase usecase.ITrendUsecase
}

func NewTrendHandler(trendUsecase usecase.ITrendUsecase) ITrendHandler {
	return &TrendHandler{trendUsecase: trendUsecase}
}

func respondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, dto.ErrorResponse{Success: false, Error: message})
}

// GetTrends handles GET /api/trends?category=&region=
func (h *TrendHandler) GetTrends(ctx *gin.Context) {
	var req dto.TrendQueryRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid category")
		return
	}

	topics, err := h.trendUsecase.GetTopicTrends(ctx.Request.Context(), category, req.Region, middleware.TierFromContext(ctx))
	if err != nil {
		logger.GetLogger().
			WithField("category", category).
			WithField("region", req.Region).
			WithField("error", err).
			Error("Error while fetching trending topics")
		respondError(ctx, http.StatusInternalServerError, "Failed to fetch trending topics")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Data: topics})
}

// GetCombinedTrends handles GET /api/trends/combined?region=
func (h *TrendHandler) GetCombinedTrends(ctx *gin.Context) {
	var req dto.TrendingVideosRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	combined, err := h.trendUsecase.GetCombinedTrends(ctx.Request.Context(), req.Region, middleware.TierFromContext(ctx))
	if err != nil {
		logger.GetLogger().WithField("region", req.Region).WithField("error", err).Error("Error while fetching combined trends")
		respondError(ctx, http.StatusInternalServerError, "Failed to fetch combined trends")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Data: combined})
}

// GetTrendingVideos handles GET /api/trending?region=
func (h *TrendHandler) GetTrendingVideos(ctx *gin.Context) {
	var req dto.TrendingVideosRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	videos, err := h.trendUsecase.GetTrendingVideos(ctx.Request.Context(), req.Region, middleware.TierFromContext(ctx))
	if err != nil {
		fields := logger.GetLogger().WithField("region", req.Region).WithField("error", err)
		if errors.Is(err, model.ErrProviderNotConfigured) {
			fields.Warn("Video provider is not configured")
		} else {
			fields.Error("Error while fetching trending videos")
		}
		respondError(ctx, http.StatusInternalServerError, "Failed to fetch trending videos")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Data: videos})
}
