package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chipstock/config"
	"chipstock/loader"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := config.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Warn("Failed to load config file. Using defaults.")
		cfg = config.GetConfig()
	}
	config.SetLogLevel(cfg.LogLevel)

	logger.WithField("path", cfg.DatabasePath).Info("Connecting to database...")
	dbConn, err := loader.Open(cfg.DatabasePath, cfg.MaxOpenConns)
	if err != nil {
		logger.WithError(err).Fatal("db open error")
	}
	defer dbConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loader.InitDatabase(ctx, dbConn); err != nil {
		logger.WithError(err).Fatal("Database initialization failed")
	}

	mux := http.NewServeMux()
	SetupRoutes(mux, dbConn)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.ListenAddr}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server start error")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
