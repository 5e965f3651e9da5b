package main

import (
	"context"
	"github.com/cirruslabs/imagecache/internal/command"
	"github.com/cirruslabs/imagecache/internal/logginglevel"
	"go.uber.org/zap"
	"log"
	"os"
	"os/signal"
)

func main() {
	// Set up signal interruptible context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Initialize logger
	cfg := zap.NewProductionConfig()
	cfg.Level = logginglevel.Level
	logger, err := cfg.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Replace zap.L() and zap.S() to avoid
	// propagating the *zap.Logger by hand
	zap.ReplaceGlobals(logger)

	if err := command.NewRootCommand().ExecuteContext(ctx); err != nil {
		cancel()

		//nolint:gocritic // cancel() is already called above
		logger.Sugar().Fatal(err)
	}
}
