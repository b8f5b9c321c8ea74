package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redbird/internal/config"
	"redbird/internal/listener"
	"redbird/internal/logging"
	"redbird/internal/pipeline"
	"redbird/internal/site"
	"redbird/internal/source"
	"redbird/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = log.Sync() }()
	sink := logging.NewSink(log)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	adapter, err := source.FromConfig(ctx, cfg, sink)
	must(err)
	icons := pipeline.NewIconResolver(cfg.IconBase)
	svc := pipeline.NewService(adapter, pipeline.NewNormalizer(icons), db, sink)
	renderer := pipeline.NewRenderer(cfg.MountID, cfg.CountID, icons.FallbackIcon(), sink)
	srv, err := site.NewServer(svc, renderer, site.Options{PagePath: cfg.SitePage}, log)
	must(err)

	var paths []string
	switch cfg.DataSource {
	case "file":
		paths = []string{cfg.DataCSVPath}
	case "xlsx":
		paths = []string{cfg.DataXLSXPath}
	}

	w := listener.NewService(paths, time.Duration(cfg.WatchIntervalSec)*time.Second, func(ctx context.Context) error {
		_, err := srv.Build(ctx, cfg.SiteOut)
		return err
	}, log)
	must(w.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
