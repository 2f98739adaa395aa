package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trend-api/domain/model"
	"trend-api/infrastructure/cache"
	"trend-api/infrastructure/clients/googletrends"
	youtubeclient "trend-api/infrastructure/clients/youtube"
	"trend-api/infrastructure/configuration"
	"trend-api/infrastructure/events"
	"trend-api/infrastructure/logger"
	"trend-api/infrastructure/persistence"
	"trend-api/infrastructure/provider"
	"trend-api/infrastructure/pubsub"
	"trend-api/infrastructure/realtime"
	"trend-api/infrastructure/scheduler"
	"trend-api/infrastructure/servicebus"
	"trend-api/infrastructure/utils"
	httpHandler "trend-api/interfaces/http"
	"trend-api/server"
	"trend-api/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	app := configuration.C.App
	trends := configuration.C.Trends
	window := trends.FreshnessWindowDuration()
	timeout := trends.ProviderTimeoutDuration()

	store, err := persistence.NewTrendStore(ctx, configuration.C.Store.Driver)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Trend store initialization failed")
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Trend store close failed")
		}
	}()

	topicProvider := googletrends.NewClient(googletrends.Config{
		BaseURL:      configuration.C.GoogleTrends.BaseURL,
		Language:     configuration.C.GoogleTrends.Language,
		TimezoneMins: configuration.C.GoogleTrends.TimezoneMins,
		RetryMax:     configuration.C.GoogleTrends.RetryMax,
		RateLimit:    configuration.C.GoogleTrends.RateLimit,
		RateBurst:    configuration.C.GoogleTrends.RateBurst,
		Timeout:      timeout,
	})
	youtube := initiateYouTube(ctx)

	topicFetcher := provider.NewTopicAdapter(topicProvider, utils.GetCurrentTime)
	videoFetcher := provider.NewVideoAdapter(youtube, utils.GetCurrentTime, trends.TagFetchConcurrent)

	hub := realtime.NewTrendHub()
	fanout := events.NewFanout(events.Sink{Name: "sse", Publisher: hub})
	stopPubSub := initiateEventSinks(ctx, fanout)
	defer stopPubSub()

	limits := model.DefaultTierLimits()
	trendUsecase := usecase.NewTrendUsecase(store, topicFetcher, videoFetcher, utils.GetCurrentTime, usecase.TrendSettings{
		FreshnessWindow: window,
		ProviderTimeout: timeout,
		VideoFetchSize:  trends.VideoFetchSize,
		Limits:          limits,
	}).WithPublisher(fanout)

	keywordUsecase := usecase.NewKeywordUsecase(youtube, limits, timeout)
	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - keyword analysis cached in process only")
		redisClient = nil
	}
	keywordUsecase = keywordUsecase.WithCache(cache.NewKeywordCache(redisClient, window))

	evictionJob := usecase.NewEvictionJob(store, utils.GetCurrentTime, trends.VideoRetentionDuration(), trends.TopicRetentionDuration()).
		WithPublisher(fanout)
	if trends.EvictOnStartup {
		evictionJob.Run(ctx)
	}
	cron := scheduler.New()
	if err := cron.Add("evict-trends", trends.EvictionSchedule, evictionJob.Run); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"error": err, "schedule": trends.EvictionSchedule}).Error("Eviction job not scheduled")
	}
	g.Go(func() error {
		return cron.Run(ctx)
	})

	router := server.InitiateRouter(server.Handlers{
		Trend:   httpHandler.NewTrendHandler(trendUsecase),
		Keyword: httpHandler.NewKeywordHandler(keywordUsecase),
		Health:  httpHandler.NewHealthHandler(store, configuration.C.Store.Driver),
		Stream:  hub.Serve,
	}, app.SecretKey, configuration.C.Cors.AllowOrigins)

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	trendUsecase.Wait()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// initiateYouTube returns a live client when credentials are configured, otherwise a disabled one.
func initiateYouTube(ctx context.Context) *youtubeclient.Client {
	cfg := configuration.GetYouTubeConfig()
	if !cfg.HasCredentials() {
		logger.GetLogger().Info("YouTube API credentials not configured - video trends and keyword analysis disabled")
		return youtubeclient.NewDisabledClient()
	}
	client, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:       cfg.APIKey,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		Endpoint:     cfg.Endpoint,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to initialize YouTube client - video features disabled")
		return youtubeclient.NewDisabledClient()
	}
	logger.GetLogger().WithField("apiKey", cfg.APIKey != "").Info("YouTube client initialized")
	return client
}

// initiateEventSinks attaches the optional broker sinks and returns their cleanup.
func initiateEventSinks(ctx context.Context, fanout *events.Fanout) func() {
	cleanup := func() {}
	if projectID := configuration.C.Pubsub.ProjectID; projectID != "" {
		client, err := pubsub.NewPubSub(ctx, projectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without PubSub events")
		} else {
			publisher := pubsub.NewTrendPubSub(client, configuration.C.Pubsub.Topic)
			fanout.Add("pubsub", publisher)
			cleanup = func() {
				publisher.Stop()
				_ = client.Close()
			}
		}
	}
	if namespace := configuration.C.ServiceBus.Namespace; namespace != "" {
		client, err := servicebus.NewServiceBus(ctx, namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus events")
		} else {
			fanout.Add("servicebus", servicebus.NewTrendServiceBus(client, configuration.C.ServiceBus.Queue))
		}
	}
	logger.GetLogger().WithField("sinks", fanout.Len()).Info("Trend event fan-out ready")
	return cleanup
}
