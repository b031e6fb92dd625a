package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lendingops/backend/internal/app"
	"github.com/lendingops/backend/internal/bootstrap"
	"github.com/lendingops/backend/internal/config"
	"github.com/lendingops/backend/internal/interfaces/middleware"
	"github.com/lendingops/backend/internal/interfaces/rest"
	"github.com/lendingops/backend/internal/logging"
	"github.com/lendingops/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger.Desugar())

	ctx := context.Background()
	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("❌ Failed to start runtime", "error", err)
	}
	defer rt.Close()

	// Built-in tables must exist before the catalog can be read
	if err := rt.Seed(ctx); err != nil {
		logger.Fatalw("❌ Failed to bootstrap built-in tables", "error", err)
	}
	if report := rt.Sync(ctx); !report.OK() {
		logger.Warnw("⚠️ Schema sync finished with errors", "errors", report.Errors)
	}

	svc := rt.Services
	if cfg.Repair.Schedule != "" {
		if err := svc.Repair.Start(cfg.Repair.Schedule); err != nil {
			logger.Fatalw("❌ Failed to schedule schema repair", "error", err)
		}
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger.Named("http")), middleware.Cors())

	verifier := auth.NewVerifier(cfg.JWTSecret)
	if !verifier.Enabled() {
		logger.Warn("⚠️ JWT_SECRET is not set, API authentication is disabled")
	}

	rest.RegisterRoutes(router, rest.Handlers{
		Schema:  rest.NewSchemaHandler(svc.Catalog),
		Records: rest.NewRecordHandler(svc.Records),
		Layouts: rest.NewLayoutHandler(svc.Layouts),
		Admin:   rest.NewAdminHandler(svc.Sync, svc.Verifier, rt.DB, bootstrap.Models),
	}, rest.RouteOptions{
		RequireAuth:  middleware.RequireAuth(verifier),
		RequireAdmin: middleware.RequireAdmin(verifier),
		ExposeTrace:  cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("❌ Failed to start server", "error", err)
		}
	}()
	logger.Infow("🚀 Lending ops backend started", "addr", srv.Addr, "env", cfg.Environment)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	svc.Repair.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")
}
