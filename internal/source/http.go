package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"redbird/internal"
	"redbird/internal/pipeline"
)

const defaultBackoff = 250 * time.Millisecond

// HTTPSource fetches the sign-up CSV over HTTP, e.g. a published sheet.
type HTTPSource struct {
	URL        string
	Mode       pipeline.QuoteMode
	Retries    int
	Backoff    time.Duration
	HTTPClient *http.Client
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Load(ctx context.Context) (internal.Table, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return internal.Table{}, err
	}
	return pipeline.ParseTable(string(body), s.Mode)
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	attempts := s.Retries
	if attempts <= 0 {
		attempts = 1
	}
	base := s.Backoff
	if base <= 0 {
		base = defaultBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("fetch %s: status %d", s.URL, resp.StatusCode)
			if isRetryableStatus(resp.StatusCode) && attempt < attempts {
				if err := sleepCtx(ctx, backoff(base, attempt)); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

func backoff(base time.Duration, attempt int) time.Duration {
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base*time.Duration(1<<(attempt-1)) + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
