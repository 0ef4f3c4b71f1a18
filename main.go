package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	clts "spinwatch/clients"
	"spinwatch/config"
	"spinwatch/internal/app"
)

func main() {
	// Load config from environment variables
	envConfig := config.Load()

	logger, err := newLogger(envConfig.LogDev)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting spinwatch", zap.Bool("isProd", envConfig.IsProd))

	if result := envConfig.Validate(); !result.Valid {
		for _, e := range result.Errors {
			logger.Error("invalid config", zap.String("field", e.Field), zap.String("message", e.Message))
		}
		logger.Fatal("refusing to start with invalid config")
	}

	catalog, err := config.LoadCatalog(envConfig.Catalog.PatternsFile)
	if err != nil {
		logger.Fatal("failed to load pattern catalog",
			zap.String("file", envConfig.Catalog.PatternsFile),
			zap.Error(err),
		)
	}
	logger.Info("pattern catalog loaded",
		zap.Int("patterns", len(catalog.Patterns)),
		zap.String("ringMode", string(catalog.ProgressRing.Mode)),
	)

	// Create LiveConfig with env config as initial value
	liveConfig := config.NewLiveConfig(envConfig)

	logger.Info("instantiating clients")
	clients := clts.NewClients(logger, envConfig)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	runner := app.NewRunner(clients, liveConfig, catalog)
	if err := runner.Run(ctx); err != nil {
		logger.Fatal("runner failed", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
