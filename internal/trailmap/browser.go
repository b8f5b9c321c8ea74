package trailmap

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"redbird/internal"
)

//go:embed templates/leaflet.html
var leafletHTML string

var leafletTmpl = template.Must(template.New("leaflet").Parse(leafletHTML))

// RenderLeafletHTML builds the standalone Leaflet page the browser renderer
// screenshots.
func RenderLeafletHTML(pins []internal.Pin, size Size) (string, error) {
	var buf bytes.Buffer
	err := leafletTmpl.Execute(&buf, struct {
		Width, Height int
		Title         string
		Pins          []internal.Pin
		Pad           float64
	}{size.Width, size.Height, Title, pins, boundsPad})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BrowserRenderer screenshots a Leaflet map in headless Chrome. It needs
// network access for the map tiles.
type BrowserRenderer struct {
	ChromeBin string
	TileWait  time.Duration

	log     *zap.Logger
	mu      sync.Mutex
	browser *rod.Browser
}

func NewBrowserRenderer(chromeBin string, tileWait time.Duration, log *zap.Logger) *BrowserRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &BrowserRenderer{ChromeBin: chromeBin, TileWait: tileWait, log: log}
}

func (b *BrowserRenderer) connect(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(true)
	if b.ChromeBin != "" {
		l = l.Bin(b.ChromeBin)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	b.log.Debug("chrome connected", zap.String("control_url", u))
	b.browser = browser
	return browser, nil
}

func (b *BrowserRenderer) Render(ctx context.Context, pins []internal.Pin, size Size) ([]byte, error) {
	if len(pins) == 0 {
		return nil, ErrNoPins
	}
	html, err := RenderLeafletHTML(pins, size)
	if err != nil {
		return nil, err
	}
	browser, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             size.Width,
		Height:            size.Height,
		DeviceScaleFactor: 1,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("load map page: %w", err)
	}

	// tiles load asynchronously after the page settles
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(b.TileWait):
	}

	quality := JPEGQuality
	img, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return img, nil
}

func (b *BrowserRenderer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
