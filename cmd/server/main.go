package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/banking/retirement-service/internal/agent"
	"github.com/banking/retirement-service/internal/api"
	"github.com/banking/retirement-service/internal/auth"
	"github.com/banking/retirement-service/internal/chat"
	"github.com/banking/retirement-service/internal/config"
	"github.com/banking/retirement-service/internal/events"
	"github.com/banking/retirement-service/internal/llm"
	"github.com/banking/retirement-service/internal/pkg/logger"
	"github.com/banking/retirement-service/internal/recommender"
	"github.com/banking/retirement-service/internal/store"
	"github.com/banking/retirement-service/internal/telemetry"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	log, err := logger.New(cfg.Telemetry.ServiceName, cfg.Telemetry.Environment, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// 3. Tracing
	shutdownTracing, err := telemetry.Init(ctx, &cfg.Telemetry)
	if err != nil {
		log.Fatal("failed to initialize tracing", logger.ErrorField(err))
	}

	// 4. Data sources: catalog and profile store load concurrently
	var catalog *store.Catalog
	var profiles store.ProfileStore

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = store.LoadCatalog(cfg.Store.ProductsFile, log)
		return err
	})
	g.Go(func() error {
		var err error
		switch cfg.Store.Driver {
		case "postgres":
			profiles, err = store.NewPostgresProfileStore(gctx, &cfg.Database, log)
		default:
			profiles, err = store.LoadFileProfileStore(cfg.Store.CustomerDataDir, log)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		log.Fatal("failed to load data sources", logger.ErrorField(err))
	}

	// 5. Services
	authSvc := auth.NewService(&cfg.Auth)
	engine := recommender.NewEngine(cfg.Recommender.MinScoreThreshold, log)
	llmClient := llm.NewClient(&cfg.LLM, log)
	agentClient := agent.NewClient(&cfg.Agent, log)

	publisher, err := events.NewPublisher(&cfg.Kafka, log)
	if err != nil {
		log.Fatal("failed to create event publisher", logger.ErrorField(err))
	}

	var conversations chat.ConversationStore
	if cfg.Redis.Enabled {
		redisStore, err := chat.NewRedisConversationStore(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect conversation store", logger.ErrorField(err))
		}
		defer redisStore.Close()
		conversations = redisStore
	} else {
		conversations = chat.NewMemoryConversationStore()
	}

	var intentAgent chat.IntentAgent
	if agentClient != nil {
		intentAgent = agentClient
	}
	chatSvc := chat.NewService(llmClient, conversations, intentAgent, publisher, &cfg.LLM, log)

	// 6. Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// 7. Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure()) // Security headers
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", cfg.Server.MaxRequestSize)))

	// CORS Setup
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Security.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	// 8. Routes
	handler := api.NewHandler(profiles, catalog, authSvc, chatSvc, engine, publisher, log)
	handler.RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// 9. Start Server (Graceful Shutdown)
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("shutting down the server", logger.ErrorField(err))
		}
	}()

	log.Info("server started", logger.StringField("addr", serverAddr))

	// Wait for interrupt signal to gracefully shutdown the server with a timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", logger.ErrorField(err))
	}
	if err := publisher.Close(); err != nil {
		log.Error("event publisher shutdown failed", logger.ErrorField(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown failed", logger.ErrorField(err))
	}

	log.Info("server exited properly")
}
