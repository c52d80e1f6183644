package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"safespace.app/backend/internal/api"
	"safespace.app/backend/internal/auth"
	"safespace.app/backend/internal/config"
	"safespace.app/backend/internal/core"
	"safespace.app/backend/internal/logger"
	"safespace.app/backend/internal/middleware"
	"safespace.app/backend/internal/relay"
	"safespace.app/backend/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	grantAdmin := flag.String("grant-admin", "", "Grant the admin role to the user with this email and exit")
	addr := flag.String("addr", "", "Listen address (defaults to :HTTP_PORT)")
	flag.Parse()

	appLogger, err := logger.New(config.AppConfig.LogMode, config.AppConfig.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		appLogger.Fatal("failed to initialize database", "error", err)
	}
	defer dbStore.Close()

	jwtManager := auth.NewJWTManager(config.AppConfig.JWTSecret, time.Duration(config.AppConfig.TokenTTLHours)*time.Hour)
	accounts := core.NewAccountService(dbStore, jwtManager, appLogger)

	if *grantAdmin != "" {
		if err := accounts.GrantAdmin(context.Background(), *grantAdmin); err != nil {
			appLogger.Fatal("failed to grant admin role", "email", *grantAdmin, "error", err)
		}
		appLogger.Info("admin role granted, exiting", "email", *grantAdmin)
		return
	}

	relayHandler := relay.NewHandler(relay.Options{
		GatewayURL: config.AppConfig.GatewayURL,
		APIKey:     config.AppConfig.GatewayAPIKey,
		Model:      config.AppConfig.Model,
		Logger:     appLogger.With("component", "relay"),
	})
	// Calls from our own services carry a per-process token and skip the
	// relay limiter.
	internalToken := uuid.NewString()
	relayClient := relay.NewClient(config.AppConfig.RelayURL, nil).
		WithHeader(relay.InternalTokenHeader, internalToken)

	limiter := middleware.NewLimiterStore(config.AppConfig.RelayRateRPM, config.AppConfig.RelayRateRPM, time.Minute)
	defer limiter.Stop()

	services := api.Services{
		Accounts:      accounts,
		Chat:          core.NewChatService(dbStore, relayClient, appLogger),
		Journal:       core.NewJournalService(dbStore, relayClient, appLogger),
		Forum:         core.NewForumService(dbStore),
		Wellness:      core.NewWellnessService(dbStore),
		Content:       core.NewContentService(dbStore),
		Professionals: core.NewProfessionalService(dbStore, config.AppConfig.AutoVerifyPros, appLogger),
		Messaging:     core.NewMessagingService(dbStore),
		Dashboard:     core.NewDashboardService(dbStore),
	}

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(services, dbStore, config.AppConfig.PublicURL, appLogger)
	router := api.NewRouter(apiHandler, api.Relay{
		Path:    config.AppConfig.RelayPathPrefix,
		Handler: relayHandler,
		Limiter: limiter,
		Exempt:  middleware.HeaderMatches(relay.InternalTokenHeader, internalToken),
	})

	serverAddr := *addr
	if serverAddr == "" {
		serverAddr = fmt.Sprintf(":%s", config.AppConfig.HTTPPort)
	}

	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Chat replies stream for as long as the gateway keeps sending.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		appLogger.Info("starting server", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("could not listen", "addr", serverAddr, "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
	}

	// limiter.Stop(), dbStore.Close() and appLogger.Sync() run in their defers.
	appLogger.Info("server exited")
}
