package http

import (
	"context"
	"net/http"
	"time"

	"trend-api/domain/dto"
	"trend-api/domain/repository"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(ctx *gin.Context)
}

type HealthHandler struct {
	store  repository.ITrendStore
	driver string
}

func NewHealthHandler(store repository.ITrendStore, driver string) IHealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

// Healthz returns 200 when the trend store answers a ping, 503 otherwise.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(pingCtx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Store: h.driver, Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Store: h.driver})
}
