package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redbird/internal"
	"redbird/internal/logging"
)

// Loader yields the raw table for one pipeline pass.
type Loader interface {
	Load(ctx context.Context) (internal.Loaded, error)
}

// RunRecorder persists one row per pipeline pass.
type RunRecorder interface {
	InsertRun(run internal.RunRow) error
}

// Outcome is the result of one pass: either houses or the load error that
// prevented them.
type Outcome struct {
	Houses   []internal.House
	Err      error
	TraceID  string
	Strategy internal.Strategy
	Source   string
	Stats    NormalizeStats
	Elapsed  time.Duration
}

type Service struct {
	loader     Loader
	normalizer Normalizer
	runs       RunRecorder
	sink       *logging.Sink
}

// NewService wires a pass. runs may be nil.
func NewService(loader Loader, normalizer Normalizer, runs RunRecorder, sink *logging.Sink) *Service {
	return &Service{loader: loader, normalizer: normalizer, runs: runs, sink: sink}
}

// Run loads then normalizes. Each stage starts only after the previous one
// finished; nothing is cached between runs.
func (s *Service) Run(ctx context.Context) Outcome {
	start := time.Now()
	out := Outcome{TraceID: uuid.NewString()}
	log := s.sink.Logger().With(zap.String("trace_id", out.TraceID))

	loaded, err := s.loader.Load(ctx)
	if err != nil {
		out.Err = err
		out.Elapsed = time.Since(start)
		log.Error("houses pipeline failed", zap.Error(err))
		s.record(out)
		return out
	}

	houses, stats := s.normalizer.Normalize(loaded.Table)
	out.Houses = houses
	out.Stats = stats
	out.Strategy = loaded.Strategy
	out.Source = loaded.Source
	out.Elapsed = time.Since(start)

	log.Info("houses pipeline done",
		zap.String("strategy", string(loaded.Strategy)),
		zap.String("source", loaded.Source),
		zap.Int("records", len(houses)),
		zap.Int("skipped", stats.MissingAddress),
		zap.Bool("sentinel_added", stats.SentinelAdded),
		zap.Duration("elapsed", out.Elapsed),
	)
	s.record(out)
	return out
}

func (s *Service) record(out Outcome) {
	if s.runs == nil {
		return
	}
	row := internal.RunRow{
		TraceID:  out.TraceID,
		Strategy: string(out.Strategy),
		Source:   out.Source,
		Records:  len(out.Houses),
		Skipped:  out.Stats.MissingAddress,
		TotalMs:  float64(out.Elapsed.Microseconds()) / 1000,
	}
	if out.Err != nil {
		row.Error = out.Err.Error()
	}
	if err := s.runs.InsertRun(row); err != nil {
		s.sink.NonFatal("runs.insert", err, zap.String("trace_id", out.TraceID))
	}
}
