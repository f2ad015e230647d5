package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aquaform/internal/catalog"
	"aquaform/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP tool server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	lib, err := openCatalog()
	if err != nil {
		return err
	}
	if cfg.Catalog.Watch {
		go func() {
			if err := catalog.Watch(ctx, lib, cfg.Catalog.Path, logger); err != nil {
				logger.Error("catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	adv, err := openAdvisor(ctx)
	if err != nil {
		return err
	}

	var store server.Store
	db, err := openStore()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		store = db
	}

	srv := server.NewFeedServer(&server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, lib, adv, store, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	}

	logger.Info("shutting down")
	cancel()
	if err := srv.Stop(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	return <-errCh
}
