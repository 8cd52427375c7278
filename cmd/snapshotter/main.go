package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/news-snapshotter/internal/app"
	"github.com/samvad-hq/news-snapshotter/internal/config"
	"github.com/samvad-hq/news-snapshotter/internal/domain"
	"github.com/samvad-hq/news-snapshotter/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "snapshotter failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("snapshotter starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	harvester, err := app.NewHarvester(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize harvester", "error", err)
		return err
	}
	defer closeHarvester(harvester, log)

	siteIDs := harvester.Sites(args)
	if !cfg.ReuseExisting {
		return harvester.Run(ctx, siteIDs)
	}

	var errs []error
	for _, id := range siteIDs {
		snap, err := harvester.LoadOrRun(ctx, id)
		if err != nil {
			logger.ErrorObj("site snapshot unavailable", "site_error", map[string]any{
				"site_id": id,
				"kind":    domain.Kind(err),
				"error":   err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		logger.InfoObj("site snapshot ready", "site_result", map[string]any{
			"site_id":       id,
			"url":           snap.URL,
			"creation_date": snap.CreationDate,
			"articles":      len(snap.Articles),
		})
	}
	return errors.Join(errs...)
}

func closeHarvester(c io.Closer, log logger.Logger) {
	if err := c.Close(); err != nil {
		logger.Ensure(log).ErrorObj("harvester close failed", "error", err)
	}
}
