package server

import (
	"time"

	httpHandler "trend-api/interfaces/http"
	"trend-api/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Trend   httpHandler.ITrendHandler
	Keyword httpHandler.IKeywordHandler
	Health  httpHandler.IHealthHandler
	// Stream serves the server-sent trend event feed. Optional.
	Stream gin.HandlerFunc
}

func InitiateRouter(handlers Handlers, secretKey string, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", handlers.Health.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey))

	api.GET("/trends", handlers.Trend.GetTrends)
	api.GET("/trends/combined", handlers.Trend.GetCombinedTrends)
	api.GET("/trending", handlers.Trend.GetTrendingVideos)
	api.GET("/keywords/analyze", handlers.Keyword.Analyze)
	if handlers.Stream != nil {
		api.GET("/trends/stream", handlers.Stream)
	}

	return router
}
