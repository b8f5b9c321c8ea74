package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"redbird/internal"
	"redbird/internal/config"
	"redbird/internal/logging"
	"redbird/internal/pipeline"
	"redbird/internal/source/sheets"
)

// ErrUnavailable means neither the primary nor the fallback source produced
// a table. It is the only load failure callers see.
var ErrUnavailable = errors.New("house data unavailable")

type Source interface {
	Name() string
	Load(ctx context.Context) (internal.Table, error)
}

// Adapter picks the primary source when it can be used and falls back to
// the embedded records otherwise.
type Adapter struct {
	Primary  Source
	Fallback Source
	// Offline skips the primary without trying it.
	Offline bool
	Sink    *logging.Sink
}

func (a *Adapter) Load(ctx context.Context) (internal.Loaded, error) {
	log := a.Sink.Logger()

	var cause error
	switch {
	case a.Offline:
		cause = errors.New("offline: primary source skipped")
		log.Info("primary source skipped", zap.Bool("offline", true))
	case a.Primary == nil:
		cause = errors.New("no primary source configured")
	default:
		table, err := a.Primary.Load(ctx)
		if err == nil {
			a.trace(internal.StrategyPrimary, a.Primary.Name(), table)
			return internal.Loaded{Table: table, Strategy: internal.StrategyPrimary, Source: a.Primary.Name()}, nil
		}
		cause = fmt.Errorf("%s: %w", a.Primary.Name(), err)
		a.Sink.NonFatal("source.primary", cause)
	}

	if a.Fallback == nil {
		return internal.Loaded{}, fmt.Errorf("%w: %w", ErrUnavailable, cause)
	}
	table, err := a.Fallback.Load(ctx)
	if err != nil {
		return internal.Loaded{}, fmt.Errorf("%w: %w; fallback %s: %w", ErrUnavailable, cause, a.Fallback.Name(), err)
	}
	a.trace(internal.StrategyFallback, a.Fallback.Name(), table)
	return internal.Loaded{Table: table, Strategy: internal.StrategyFallback, Source: a.Fallback.Name()}, nil
}

func (a *Adapter) trace(strategy internal.Strategy, name string, table internal.Table) {
	a.Sink.Logger().Info("house data loaded",
		zap.String("strategy", string(strategy)),
		zap.String("source", name),
		zap.Int("records", len(table.Rows)),
	)
}

// FromConfig builds the adapter selected by DATA_SOURCE.
func FromConfig(ctx context.Context, cfg config.Config, sink *logging.Sink) (*Adapter, error) {
	mode, err := pipeline.ParseQuoteMode(cfg.DataQuoteMode)
	if err != nil {
		return nil, err
	}

	adapter := &Adapter{Offline: cfg.Offline, Sink: sink}
	switch cfg.DataSource {
	case "", "file":
		adapter.Primary = &FileSource{Path: cfg.DataCSVPath, Mode: mode}
	case "http":
		if err := cfg.Require("DATA_CSV_URL", cfg.DataCSVURL); err != nil {
			return nil, err
		}
		adapter.Primary = &HTTPSource{
			URL:        cfg.DataCSVURL,
			Mode:       mode,
			Retries:    cfg.FetchRetries,
			HTTPClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		}
	case "xlsx":
		if err := cfg.Require("DATA_XLSX_PATH", cfg.DataXLSXPath); err != nil {
			return nil, err
		}
		adapter.Primary = &XLSXSource{Path: cfg.DataXLSXPath}
	case "sheets":
		conn, err := sheets.NewConnector(ctx, cfg)
		if err != nil {
			return nil, err
		}
		adapter.Primary = conn
	case "embedded":
	default:
		return nil, fmt.Errorf("unsupported DATA_SOURCE: %s", cfg.DataSource)
	}

	if cfg.EmbeddedFallback || cfg.DataSource == "embedded" {
		adapter.Fallback = NewEmbeddedSource()
	}
	return adapter, nil
}
