package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"redbird/internal"
	"redbird/internal/config"
	"redbird/internal/geocode"
	"redbird/internal/listener"
	"redbird/internal/logging"
	"redbird/internal/pipeline"
	"redbird/internal/site"
	"redbird/internal/source"
	"redbird/internal/storage"
	"redbird/internal/trailmap"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)
	defer func() { _ = log.Sync() }()
	sink := logging.NewSink(log)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	switch cmd {
	case "site:serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.SiteAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		srv := newSite(ctx, cfg, db, sink)
		must(srv.Serve(ctx, *addr))
	case "site:build":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", cfg.SiteOut, "output html path")
		watch := fs.Bool("watch", false, "rebuild when the data file changes")
		_ = fs.Parse(os.Args[2:])
		srv := newSite(ctx, cfg, db, sink)
		if *watch {
			w := listener.NewService(watchPaths(cfg), time.Duration(cfg.WatchIntervalSec)*time.Second, func(ctx context.Context) error {
				_, err := srv.Build(ctx, *out)
				return err
			}, log)
			must(w.Run(ctx))
			return
		}
		outcome, err := srv.Build(ctx, *out)
		must(err)
		if outcome.Err != nil {
			fmt.Printf("site built with failure notice trace=%s: %v\n", outcome.TraceID, outcome.Err)
			return
		}
		fmt.Printf("site built houses=%d source=%s out=%s\n", len(outcome.Houses), outcome.Source, *out)
	case "houses:list":
		outcome := runPipeline(ctx, cfg, db, sink)
		for i, h := range outcome.Houses {
			fmt.Printf("%2d. %s | %s | %s | %s\n", i+1, h.Title, h.Address, h.Subtitle, h.Icon)
		}
		fmt.Printf("houses=%d strategy=%s source=%s trace=%s\n", len(outcome.Houses), outcome.Strategy, outcome.Source, outcome.TraceID)
	case "houses:csv":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output csv path (stdout when empty)")
		_ = fs.Parse(os.Args[2:])
		outcome := runPipeline(ctx, cfg, db, sink)
		if strings.TrimSpace(*out) == "" {
			must(pipeline.ExportHousesToCSV(os.Stdout, outcome.Houses))
			return
		}
		must(os.MkdirAll(filepath.Dir(*out), 0o755))
		f, err := os.Create(*out)
		must(err)
		defer f.Close()
		must(pipeline.ExportHousesToCSV(f, outcome.Houses))
		fmt.Printf("exported %d houses to %s\n", len(outcome.Houses), *out)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		outcome := runPipeline(ctx, cfg, db, sink)
		must(pipeline.ExportHousesToXLSX(outcome.Houses, *out))
		fmt.Printf("exported %d houses to %s\n", len(outcome.Houses), *out)
	case "map:geocode":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", cfg.PinsPath, "pins json path")
		_ = fs.Parse(os.Args[2:])
		outcome := runPipeline(ctx, cfg, db, sink)
		svc := geocode.NewService(db, geocode.NewClient(cfg), log)
		pins, stats, err := svc.BuildPins(ctx, outcome.Houses)
		must(err)
		must(trailmap.SavePins(*out, pins))
		fmt.Printf("pins written=%d cached=%d fetched=%d not_found=%d out=%s\n", len(pins), stats.Cached, stats.Fetched, stats.NotFound, *out)
	case "map:render":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		pinsPath := fs.String("pins", cfg.PinsPath, "pins json path")
		outDir := fs.String("out", cfg.MapsDir, "output directory")
		renderer := fs.String("renderer", cfg.MapRenderer, "raster|browser")
		_ = fs.Parse(os.Args[2:])
		pins, err := trailmap.LoadPins(*pinsPath)
		must(err)
		r, err := trailmap.NewRenderer(*renderer, cfg.ChromeBin, time.Duration(cfg.MapTileWaitMs)*time.Millisecond, log)
		must(err)
		if closer, ok := r.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		paths, err := trailmap.Generate(ctx, r, pins, *outDir, log)
		must(err)
		for _, p := range paths {
			fmt.Printf("map written %s\n", p)
		}
	case "map:check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		pinsPath := fs.String("pins", cfg.PinsPath, "pins json path")
		out := fs.String("out", "", "optional xlsx report path")
		_ = fs.Parse(os.Args[2:])
		pins, err := trailmap.LoadPins(*pinsPath)
		must(err)
		outcome := runPipeline(ctx, cfg, db, sink)
		matcher := pipeline.NewMatcher(cfg, pins)
		counts := map[internal.MatchStatus]int{}
		matches := make([]internal.PinMatch, 0, len(outcome.Houses))
		for _, h := range outcome.Houses {
			m := matcher.Match(h)
			counts[m.Status]++
			matches = append(matches, m)
			if m.Status != internal.MatchOK {
				fmt.Printf("%-9s %.2f %s | %s\n", m.Status, m.Confidence, h.Title, h.Address)
			}
		}
		for _, p := range matcher.Unmatched(matches) {
			fmt.Printf("%-9s      %s | %s\n", "NO_HOUSE", p.HouseName, p.Address)
		}
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportMatchesToXLSX(matches, *out))
		}
		fmt.Printf("map check ok=%d review=%d not_found=%d pins=%d\n", counts[internal.MatchOK], counts[internal.MatchReview], counts[internal.MatchNotFound], len(pins))
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			status := "ok"
			if r.Error != "" {
				status = r.Error
			}
			fmt.Printf("%s %s strategy=%s source=%s records=%d skipped=%d ms=%.1f %s\n", r.CreatedAt, r.TraceID, r.Strategy, r.Source, r.Records, r.Skipped, r.TotalMs, status)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func newPipeline(ctx context.Context, cfg config.Config, db *storage.DB, sink *logging.Sink) (*pipeline.Service, pipeline.IconResolver) {
	adapter, err := source.FromConfig(ctx, cfg, sink)
	must(err)
	icons := pipeline.NewIconResolver(cfg.IconBase)
	return pipeline.NewService(adapter, pipeline.NewNormalizer(icons), db, sink), icons
}

// runPipeline runs one pass and exits when the data could not be loaded.
func runPipeline(ctx context.Context, cfg config.Config, db *storage.DB, sink *logging.Sink) pipeline.Outcome {
	svc, _ := newPipeline(ctx, cfg, db, sink)
	outcome := svc.Run(ctx)
	if outcome.Err != nil {
		must(fmt.Errorf("load houses (trace %s): %w", outcome.TraceID, outcome.Err))
	}
	return outcome
}

func newSite(ctx context.Context, cfg config.Config, db *storage.DB, sink *logging.Sink) *site.Server {
	svc, icons := newPipeline(ctx, cfg, db, sink)
	renderer := pipeline.NewRenderer(cfg.MountID, cfg.CountID, icons.FallbackIcon(), sink)
	srv, err := site.NewServer(svc, renderer, site.Options{
		PagePath:  cfg.SitePage,
		AssetsDir: cfg.AssetsDir,
		DataDir:   cfg.DataDir,
	}, sink.Logger().With(zap.String("component", "site")))
	must(err)
	return srv
}

func watchPaths(cfg config.Config) []string {
	switch cfg.DataSource {
	case "file":
		return []string{cfg.DataCSVPath}
	case "xlsx":
		return []string{cfg.DataXLSXPath}
	default:
		return nil
	}
}

func usage() {
	fmt.Println("usage: redbird <command>")
	fmt.Println("commands:")
	fmt.Println("  site:serve [--addr=:8080]")
	fmt.Println("  site:build [--out=./out/site/index.html] [--watch]")
	fmt.Println("  houses:list")
	fmt.Println("  houses:csv [--out=./out/houses.csv]")
	fmt.Println("  export:xlsx --out=./out/houses.xlsx")
	fmt.Println("  map:geocode [--out=./export/pins.json]")
	fmt.Println("  map:render [--pins=...] [--out=./assets/maps] [--renderer=raster|browser]")
	fmt.Println("  map:check [--pins=...] [--out=./out/map_check.xlsx]")
	fmt.Println("  runs:list [--limit=20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
