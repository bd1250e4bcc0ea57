// File: foodbot/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"foodbot/config"
	"foodbot/handlers"
	"foodbot/middleware"
	"foodbot/routes"
	"foodbot/services/commands"
	"foodbot/services/conversation"
	"foodbot/services/messaging"
	"foodbot/services/search"
	"foodbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	cfg := config.AppConfig
	if err := cfg.Validate(); err != nil {
		logger.Sugar().Fatalf("main: invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Dialogue sessions live in Redis and expire after SESSION_TTL of silence.
	redisClient := utils.GetSessionCacheClient()
	utils.StartHealthMonitor(ctx, redisClient, time.Minute)
	store := conversation.NewRedisSessionStore(redisClient, cfg.SessionTTL)
	yelp := search.NewYelpClient(cfg.YelpAPIURL, cfg.YelpClientSecret, cfg.SearchTimeout, logger.Named("yelp"))
	script := conversation.NewScript(store, yelp, logger.Named("dialogue"),
		conversation.WithMaxConfirmRetries(cfg.MaxConfirmRetries),
	)
	router := commands.NewDefaultRouter(script, logger.Named("router"))

	slackClient := slack.New(cfg.SlackBotToken)
	listener := messaging.NewListener(slackClient, messaging.NewSlackMessenger(slackClient), router, logger.Named("rtm"))

	// Create the Gin router.
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.ErrorHandler())
	engine.Use(middleware.RequestLogger(logger.Named("http")))
	engine.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	webhookHandler := handlers.NewWebhookHandler(router)
	handlerBundle := &handlers.HandlerBundle{
		IndexHandler:   handlers.IndexHandler,
		HealthHandler:  handlers.HealthHandler,
		WebhookHandler: webhookHandler.Receive,
	}
	routes.RegisterRoutes(engine, handlerBundle, routes.Options{
		WebhookPath: cfg.WebhookPath,
		StaticDir:   cfg.StaticDir,
		ViewsDir:    cfg.ViewsDir,
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: engine,
	}

	logger.Sugar().Infof("Starting webhook server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	if err := listener.Run(ctx); err != nil {
		logger.Sugar().Fatalf("main: real-time messaging failed: %v", err)
	}
	logger.Sugar().Info("main: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Sugar().Warnf("main: closing redis: %v", err)
	}

	logger.Sugar().Info("main: stopped gracefully")
}
