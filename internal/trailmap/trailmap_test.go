package trailmap

import (
	"bytes"
	"context"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"redbird/internal"
)

func samplePins() []internal.Pin {
	return []internal.Pin{
		{Lat: 25.7391, Lon: -80.2912, HouseName: "The Three-Witch House", Address: "3825 SW 58th Ct", ThemeIcon: "🧙"},
		{Lat: 25.7405, Lon: -80.2951, HouseName: "Milo's Dudgeon of treats", Address: "3736 SW 60th Ave", ThemeIcon: "🎃"},
		{Lat: 25.7368, Lon: -80.2989, HouseName: "Red Bird Restless Graveyard", Address: "3821 SW 60th Ave", ThemeIcon: "🐦"},
	}
}

func TestValidPins(t *testing.T) {
	pins := append(samplePins(),
		internal.Pin{HouseName: "placeholder"},
		internal.Pin{Lat: math.NaN(), Lon: -80.29, HouseName: "nan"},
		internal.Pin{Lat: 125, Lon: -80.29, HouseName: "out of range"},
	)
	valid, skipped := ValidPins(pins)
	require.Len(t, valid, 3)
	require.Equal(t, 3, skipped)
	require.Equal(t, "The Three-Witch House", valid[0].HouseName)
}

func TestSaveLoadPins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "pins.json")
	require.NoError(t, SavePins(path, samplePins()))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(blob), `"themeIcon": "🧙"`)
	require.Contains(t, string(blob), `"houseName": "Milo's Dudgeon of treats"`)

	pins, err := LoadPins(path)
	require.NoError(t, err)
	require.Equal(t, samplePins(), pins)
}

func TestSavePinsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pins.json")
	require.NoError(t, SavePins(path, nil))
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(blob))
}

func TestGenerateRaster(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "maps")
	small := Size{Name: "small", Width: 480, Height: 270, File: "small.jpg"}
	tall := Size{Name: "tall", Width: 270, Height: 480, File: "tall.jpg"}

	paths, err := Generate(context.Background(), NewRasterRenderer(), samplePins(), dir, nil, small, tall)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "small.jpg"), filepath.Join(dir, "tall.jpg")}, paths)

	for i, size := range []Size{small, tall} {
		blob, err := os.ReadFile(paths[i])
		require.NoError(t, err)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(blob))
		require.NoError(t, err)
		require.Equal(t, size.Width, cfg.Width)
		require.Equal(t, size.Height, cfg.Height)
	}
}

func TestGenerateSinglePin(t *testing.T) {
	size := Size{Name: "small", Width: 200, Height: 200, File: "one.jpg"}
	paths, err := Generate(context.Background(), NewRasterRenderer(), samplePins()[:1], t.TempDir(), nil, size)
	require.NoError(t, err)
	require.Len(t, paths, 1)
}

func TestGenerateNoPins(t *testing.T) {
	_, err := Generate(context.Background(), NewRasterRenderer(), []internal.Pin{{HouseName: "placeholder"}}, t.TempDir(), nil)
	require.ErrorIs(t, err, ErrNoPins)
}

func TestRasterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRasterRenderer().Render(ctx, samplePins(), Desktop)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProjectionKeepsPinsOnCanvas(t *testing.T) {
	proj := newProjection(samplePins(), Desktop.Width, Desktop.Height)
	for _, p := range samplePins() {
		pt := proj.apply(p.Lat, p.Lon)
		require.True(t, pt.x > 0 && pt.x < float32(Desktop.Width), "x=%v", pt.x)
		require.True(t, pt.y > 0 && pt.y < float32(Desktop.Height), "y=%v", pt.y)
	}
	north := proj.apply(25.7405, -80.2951)
	south := proj.apply(25.7368, -80.2951)
	require.Less(t, north.y, south.y)
}

func TestLeafletHTML(t *testing.T) {
	html, err := RenderLeafletHTML(samplePins(), Mobile)
	require.NoError(t, err)
	require.Contains(t, html, "width: 1080px")
	require.Contains(t, html, "height: 1920px")
	require.Contains(t, html, Title)
	require.Contains(t, html, `"houseName":"The Three-Witch House"`)
	require.Contains(t, html, "dark_all")
	require.False(t, strings.Contains(html, "{{"))
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("raster", "", 0, nil)
	require.NoError(t, err)
	require.IsType(t, &RasterRenderer{}, r)

	r, err = NewRenderer("browser", "/usr/bin/chromium", 0, nil)
	require.NoError(t, err)
	require.IsType(t, &BrowserRenderer{}, r)

	_, err = NewRenderer("canvas", "", 0, nil)
	require.Error(t, err)
}
