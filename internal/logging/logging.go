package logging

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. format is "json" or "console".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Sink is the single place non-fatal failures are reported. Nothing routed
// here is ever returned to a caller or shown to a visitor.
type Sink struct {
	log   *zap.Logger
	count atomic.Int64
}

func NewSink(log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{log: log}
}

func (s *Sink) NonFatal(op string, err error, fields ...zap.Field) {
	if s == nil {
		return
	}
	s.count.Add(1)
	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("op", op))
	if err != nil {
		all = append(all, zap.Error(err))
	}
	all = append(all, fields...)
	s.log.Warn("non-fatal", all...)
}

// Reported returns how many non-fatal reports the sink has taken.
func (s *Sink) Reported() int64 {
	if s == nil {
		return 0
	}
	return s.count.Load()
}

func (s *Sink) Logger() *zap.Logger {
	if s == nil {
		return zap.NewNop()
	}
	return s.log
}
