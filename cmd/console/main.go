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

	"admin-console/internal/auth"
	"admin-console/internal/config"
	"admin-console/internal/gateway"
	apihttp "admin-console/internal/http"
	"admin-console/internal/repository"
	"admin-console/internal/service"
	"admin-console/internal/session"
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

	sessions, closeSessions, err := session.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("session store", zap.Error(err))
	}
	defer closeSessions()

	auditRepo, closeAudit, err := repository.OpenAudit(ctx, cfg, logger)
	if err != nil {
		logger.Warn("audit log falls back to memory", zap.Error(err))
		auditRepo, closeAudit = repository.NewMemoryAuditRepository(0), func() {}
	}
	defer closeAudit()
	auditSvc := service.NewAuditService(auditRepo, logger)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	gw := gateway.NewClient(cfg.APIBaseURL, cfg.TenantID, httpClient, logger).WithObserver(auditSvc)
	authSvc := auth.NewService(cfg.APIBaseURL, cfg.TenantID, httpClient, logger)

	console := apihttp.NewConsoleHandler(logger, sessions, gw, authSvc, auditSvc, cfg.LoginPath)
	router := apihttp.NewRouter(logger, console, apihttp.RouterOptions{})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting console",
		zap.String("port", cfg.HTTPPort),
		zap.String("api", cfg.APIBaseURL),
		zap.String("session_backend", cfg.SessionBackend),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
