package listener

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// RebuildFunc regenerates whatever depends on the watched data files.
type RebuildFunc func(ctx context.Context) error

// Service rebuilds once at start, again shortly after a watched file
// changes, and on every interval tick as a fallback for filesystems that do
// not deliver events.
type Service struct {
	paths    []string
	interval time.Duration
	debounce time.Duration
	rebuild  RebuildFunc
	log      *zap.Logger
	cycles   atomic.Int64
}

func NewService(paths []string, interval time.Duration, rebuild RebuildFunc, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	clean := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		clean = append(clean, p)
	}
	return &Service{
		paths:    clean,
		interval: interval,
		debounce: 500 * time.Millisecond,
		rebuild:  rebuild,
		log:      log,
	}
}

// SetDebounce changes how long the service waits after the last change.
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Cycles reports how many rebuilds have run.
func (s *Service) Cycles() int64 {
	return s.cycles.Load()
}

func (s *Service) Run(ctx context.Context) error {
	s.runCycle(ctx, "start")

	var events <-chan fsnotify.Event
	var errs <-chan error
	watcher, err := s.watch()
	if err != nil {
		s.log.Warn("file watch unavailable, polling only", zap.Error(err))
	} else if watcher != nil {
		defer watcher.Close()
		events = watcher.Events
		errs = watcher.Errors
	}

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	debounceTicker := time.NewTicker(debounceStep(s.debounce))
	defer debounceTicker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if s.matches(event) {
				s.log.Debug("data file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				pending = time.Now()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.log.Warn("watch error", zap.Error(err))

		case <-debounceTicker.C:
			if !pending.IsZero() && time.Since(pending) >= s.debounce {
				pending = time.Time{}
				s.runCycle(ctx, "change")
			}

		case <-tick:
			s.runCycle(ctx, "interval")
		}
	}
}

func (s *Service) runCycle(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := s.rebuild(ctx)
	n := s.cycles.Add(1)
	if err != nil {
		s.log.Error("rebuild failed", zap.String("reason", reason), zap.Int64("cycle", n), zap.Error(err))
		return
	}
	s.log.Info("rebuild done", zap.String("reason", reason), zap.Int64("cycle", n), zap.Duration("elapsed", time.Since(start)))
}

// watch follows the parent directories, since editors and sync tools often
// replace a file instead of writing it in place.
func (s *Service) watch() (*fsnotify.Watcher, error) {
	if len(s.paths) == 0 {
		return nil, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, p := range s.paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}

func (s *Service) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, p := range s.paths {
		if name == p {
			return true
		}
	}
	return false
}

func debounceStep(d time.Duration) time.Duration {
	step := d / 5
	if step < 10*time.Millisecond {
		step = 10 * time.Millisecond
	}
	return step
}
