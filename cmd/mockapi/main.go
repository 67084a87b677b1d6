package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"admin-console/internal/config"
	"admin-console/internal/mockapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	backend, err := mockapi.NewServer(mockapi.Options{
		Secret:        cfg.MockJWTSecret,
		TenantID:      cfg.TenantID,
		AdminPassword: cfg.MockAdminPass,
		TokenTTL:      cfg.MockTokenTTL,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("mock backend", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.MockAPIPort,
		Handler:           backend.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting mock api", zap.String("port", cfg.MockAPIPort), zap.String("tenant", cfg.TenantID))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
