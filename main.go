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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"ytpm/infrastructure/cache"
	youtubeclient "ytpm/infrastructure/clients/youtube"
	"ytpm/infrastructure/configuration"
	"ytpm/infrastructure/logger"
	"ytpm/infrastructure/persistence"
	"ytpm/infrastructure/pubsub"
	"ytpm/infrastructure/realtime"
	httpHandler "ytpm/interfaces/http"
	"ytpm/interfaces/middleware"
	"ytpm/server"
	"ytpm/usecase"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring database schema")
		os.Exit(1)
	}
	logger.GetLogger().Info("Database connected.")

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - action events disabled")
		pubSubClient = nil
	}

	redisClient, _ := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)

	userRepository := persistence.NewUserRepository(psqlDb)
	actionRepository := persistence.NewActionRepository(psqlDb)
	idempotencyRepository := persistence.NewIdempotencyRepository(psqlDb)
	quotaRepository := persistence.NewQuotaRepository(psqlDb)
	oauthTokenRepository := persistence.NewOAuthTokenRepository(psqlDb)

	youtubeConfig, err := configuration.GetYouTubeConfig()
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("YouTube configuration not found - bulk actions run in sandbox mode")
		youtubeConfig = &configuration.YouTubeConfig{}
	}
	clientProvider := youtubeclient.NewClientProvider(
		oauthTokenRepository,
		youtubeConfig.ClientID,
		youtubeConfig.ClientSecret,
		youtubeConfig.RedirectURL,
	)

	actionHub := realtime.NewActionHub()
	actionEvents := realtime.NewEventFanout(
		actionHub,
		pubsub.NewActionEventsPublisher(pubSubClient, configuration.C.Pubsub.Topic),
	)
	playlistCache := cache.NewPlaylistCache(redisClient)

	quotaUseCase := usecase.NewQuotaUseCase(quotaRepository, configuration.C.Quota.DailyBudget)
	bulkConfig := usecase.BulkConfig{
		Retry: usecase.RetryPolicy{
			Retries:   configuration.C.Bulk.Retries,
			BaseDelay: time.Duration(configuration.C.Bulk.BaseDelayMs) * time.Millisecond,
			MaxDelay:  time.Duration(configuration.C.Bulk.MaxDelayMs) * time.Millisecond,
		},
		InsertDelay:     time.Duration(configuration.C.Bulk.InsertDelayMs) * time.Millisecond,
		MoveInsertDelay: time.Duration(configuration.C.Bulk.MoveInsertDelayMs) * time.Millisecond,
		DeleteDelay:     time.Duration(configuration.C.Bulk.DeleteDelayMs) * time.Millisecond,
	}
	bulkUseCase := usecase.NewBulkUseCase(actionRepository, idempotencyRepository, quotaUseCase, clientProvider, actionEvents, bulkConfig)
	undoUseCase := usecase.NewUndoUseCase(actionRepository, bulkUseCase)
	actionUseCase := usecase.NewActionUseCase(actionRepository)
	playlistUseCase := usecase.NewPlaylistUseCase(clientProvider, playlistCache, quotaUseCase)
	userUsecase := usecase.NewUserUsecase(userRepository)

	userHandler := httpHandler.NewUserHandler(userUsecase)
	bulkHandler := httpHandler.NewBulkHandler(bulkUseCase, playlistUseCase)
	actionHandler := httpHandler.NewActionHandler(actionUseCase, undoUseCase)
	quotaHandler := httpHandler.NewQuotaHandler(quotaUseCase)
	playlistHandler := httpHandler.NewPlaylistHandler(playlistUseCase)

	youtubeAuthHandler, err := httpHandler.NewYouTubeAuthHandler(oauthTokenRepository)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to initialize YouTube auth handler")
		youtubeAuthHandler = nil
	}

	router := server.InitiateRouter(
		userHandler,
		bulkHandler,
		actionHandler,
		quotaHandler,
		playlistHandler,
		youtubeAuthHandler,
		userRepository,
	)

	// SSE endpoint for real-time action status
	{
		api := router.Group("api")
		api.Use(middleware.Auth(userRepository))
		api.GET("/events/stream", func(c *gin.Context) { actionHub.Serve(c) })
	}

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
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
	if pubSubClient != nil {
		_ = pubSubClient.Close()
	}
	_ = psqlDb.Close()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
