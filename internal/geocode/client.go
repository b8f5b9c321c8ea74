package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"redbird/internal"
	"redbird/internal/config"
	"redbird/internal/util"
)

const (
	providerName = "nominatim"
	maxAttempts  = 3

	// viewbox is lon,lat,lon,lat around the Red Bird neighborhood.
	viewbox = "-80.3150,25.7500,-80.2900,25.7300"
)

// Bounds is the sanity box a result must fall in to be used.
type Bounds struct {
	MinLon, MaxLon, MinLat, MaxLat float64
}

var RedBirdBounds = Bounds{MinLon: -80.3155, MaxLon: -80.2895, MinLat: 25.7280, MaxLat: 25.7520}

func (b Bounds) Contains(lat, lon float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

type Client struct {
	baseURL    string
	userAgent  string
	locality   string
	bounds     Bounds
	httpClient *http.Client
	limiter    *RateLimiter
	backoff    time.Duration
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GeocoderBaseURL, "/"),
		userAgent:  cfg.GeocoderUserAgent,
		locality:   cfg.GeocodeLocality,
		bounds:     RedBirdBounds,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(time.Duration(cfg.GeocoderIntervalMs) * time.Millisecond),
		backoff:    500 * time.Millisecond,
	}
}

// Search geocodes one street address. A nil result with a nil error means
// the address was not found inside the neighborhood.
func (c *Client) Search(ctx context.Context, address string) (*internal.GeocodeResult, error) {
	query := util.WithLocality(address, c.locality)

	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("viewbox", viewbox)
	q.Set("bounded", "1")
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", hits[0].Lon, err)
	}
	if !c.bounds.Contains(lat, lon) {
		return nil, nil
	}

	return &internal.GeocodeResult{
		Address:     address,
		Query:       query,
		Lat:         lat,
		Lon:         lon,
		DisplayName: hits[0].DisplayName,
		Provider:    providerName,
	}, nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				backoff := c.backoff*time.Duration(1<<(attempt-1)) + time.Duration(rand.Intn(100))*time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("nominatim status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("nominatim error: status=%d body=%s", resp.StatusCode, string(body))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("nominatim request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
