package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikepea/chitfund/pkg/chitfund/auth"
	"github.com/mikepea/chitfund/pkg/chitfund/config"
	"github.com/mikepea/chitfund/pkg/chitfund/kv"
	"github.com/mikepea/chitfund/pkg/chitfund/ledger"
	"github.com/mikepea/chitfund/pkg/chitfund/logging"
	"github.com/mikepea/chitfund/pkg/chitfund/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("CHITFUND_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret not set, using the development secret")
	}
	auth.Configure(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if cfg.Auth.SeedAdmin.Username != "" {
		logger.Warn("seed admin login enabled", "username", cfg.Auth.SeedAdmin.Username)
	} else {
		logger.Info("seed admin login disabled, set auth.seed_admin.username to enable")
	}

	store, err := kv.Open(cfg.StoreOptions())
	if err != nil {
		logger.Error("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	opts, err := cfg.LedgerOptions()
	if err != nil {
		logger.Error("Invalid ledger options", "error", err)
		os.Exit(1)
	}
	opts.Logger = logger

	l, err := ledger.New(context.Background(), store, opts)
	if err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           server.NewRouter(l, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting chitfund server", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
