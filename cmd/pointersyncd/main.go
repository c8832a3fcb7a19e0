package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pointersync/app/realtime"
	"github.com/dmitrymomot/pointersync/core/config"
	"github.com/dmitrymomot/pointersync/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg realtime.Config
	config.MustLoad(&cfg) // panic on error

	log := cfg.Logger()

	app, err := realtime.New(cfg, realtime.WithLogger(log))
	if err != nil {
		log.Error("Failed to create app", logger.Component("app"), logger.Error(err))
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(app.Run(ctx))

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Server stopped")
}
