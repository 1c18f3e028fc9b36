package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/config"
	"github.com/iwvelando/revenue-forecast/internal/logging"
	"github.com/iwvelando/revenue-forecast/internal/server"
	"github.com/iwvelando/revenue-forecast/internal/store"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	conf, err := config.LoadConfigurationOrDefault(*configLocation)
	if err != nil {
		logging.Fatal("failed to load configuration at "+*configLocation, err)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		logging.Fatal("failed to initialize logger", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()
	repo, closeStore, err := store.Open(ctx, conf.StoreOptions(), logger)
	if err != nil {
		logger.Fatal("failed to open project store",
			zap.String("op", "main"),
			zap.String("driver", conf.Storage.Driver),
			zap.Error(err),
		)
	}
	defer closeStore()

	listen := conf.Server.Address
	if *address != "" {
		listen = *address
	}

	srv := &http.Server{
		Addr:         listen,
		Handler:      server.NewHandler(logger, repo, conf, version),
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server",
			zap.String("op", "main"),
			zap.String("address", listen),
			zap.String("storage", conf.Storage.Driver),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server", zap.String("op", "main"))
	shutdownCtx, cancel := context.WithTimeout(ctx, constants.DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
