package trailmap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"redbird/internal"
)

var (
	backgroundColor = color.NRGBA{R: 0x0a, G: 0x0c, B: 0x18, A: 0xff}
	trailColor      = color.NRGBA{R: 0xff, G: 0x6a, B: 0x00, A: 153}
	markerColor     = color.NRGBA{R: 0xff, G: 0x6a, B: 0x00, A: 230}
	markerRimColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	bannerColor     = color.NRGBA{R: 0x0f, G: 0x13, B: 0x25, A: 230}
	labelColor      = color.NRGBA{R: 0x0a, G: 0x0c, B: 0x18, A: 0xff}
	titleColor      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

const (
	markerRadius = 20
	markerRim    = 3
	trailWidth   = 3
	dashOn       = 10
	dashOff      = 5
)

// RasterRenderer draws the trail map without network access: dark ground,
// dashed trail in listing order and numbered markers.
type RasterRenderer struct {
	once    sync.Once
	font    *opentype.Font
	fontErr error
}

func NewRasterRenderer() *RasterRenderer {
	return &RasterRenderer{}
}

type faces struct {
	title font.Face
	label font.Face
}

// newFaces builds fresh faces per render; a face must not be shared by
// concurrent renders.
func (r *RasterRenderer) newFaces() (faces, error) {
	r.once.Do(func() {
		r.font, r.fontErr = opentype.Parse(gobold.TTF)
	})
	if r.fontErr != nil {
		return faces{}, r.fontErr
	}
	title, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: 34, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return faces{}, err
	}
	label, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: 18, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return faces{}, err
	}
	return faces{title: title, label: label}, nil
}

func (r *RasterRenderer) Render(ctx context.Context, pins []internal.Pin, size Size) ([]byte, error) {
	if len(pins) == 0 {
		return nil, ErrNoPins
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ff, err := r.newFaces()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	proj := newProjection(pins, size.Width, size.Height)
	points := make([]point, len(pins))
	for i, p := range pins {
		points[i] = proj.apply(p.Lat, p.Lon)
	}

	if len(points) > 1 {
		drawTrail(img, points)
	}
	fillCircles(img, points, markerRadius+markerRim, markerRimColor)
	fillCircles(img, points, markerRadius, markerColor)
	drawLabels(img, points, ff.label)
	drawBanner(img, ff.title)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type point struct{ x, y float32 }

// projection maps lat/lon onto the canvas, keeping the aspect ratio of the
// padded bounding box and centering it.
type projection struct {
	minX, maxY float64
	scale      float64
	offX, offY float64
	lonFactor  float64
}

func newProjection(pins []internal.Pin, width, height int) projection {
	minLat, maxLat := pins[0].Lat, pins[0].Lat
	minLon, maxLon := pins[0].Lon, pins[0].Lon
	for _, p := range pins[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	lonFactor := math.Cos((minLat + maxLat) / 2 * math.Pi / 180)
	spanX := (maxLon - minLon) * lonFactor
	spanY := maxLat - minLat
	const minSpan = 0.002
	if spanX < minSpan {
		spanX = minSpan
	}
	if spanY < minSpan {
		spanY = minSpan
	}
	midX := (minLon + maxLon) / 2 * lonFactor
	midY := (minLat + maxLat) / 2
	spanX *= 1 + 2*boundsPad
	spanY *= 1 + 2*boundsPad

	scale := math.Min(float64(width)/spanX, float64(height)/spanY)
	return projection{
		minX:      midX - spanX/2,
		maxY:      midY + spanY/2,
		scale:     scale,
		offX:      (float64(width) - spanX*scale) / 2,
		offY:      (float64(height) - spanY*scale) / 2,
		lonFactor: lonFactor,
	}
}

func (p projection) apply(lat, lon float64) point {
	x := (lon*p.lonFactor-p.minX)*p.scale + p.offX
	y := (p.maxY-lat)*p.scale + p.offY
	return point{x: float32(x), y: float32(y)}
}

func drawTrail(dst *image.RGBA, points []point) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	carry := float32(0)
	on := true
	for i := 1; i < len(points); i++ {
		a, c := points[i-1], points[i]
		dx, dy := c.x-a.x, c.y-a.y
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length
		pos := float32(0)
		for pos < length {
			segLen := float32(dashOn)
			if !on {
				segLen = dashOff
			}
			step := segLen - carry
			end := pos + step
			if end > length {
				carry += length - pos
				end = length
			} else {
				carry = 0
			}
			if on {
				addStroke(z, point{a.x + ux*pos, a.y + uy*pos}, point{a.x + ux*end, a.y + uy*end}, trailWidth)
			}
			if carry == 0 {
				on = !on
			}
			pos = end
		}
	}
	z.Draw(dst, b, image.NewUniform(trailColor), image.Point{})
}

func addStroke(z *vector.Rasterizer, a, b point, width float32) {
	dx, dy := b.x-a.x, b.y-a.y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	z.MoveTo(a.x+nx, a.y+ny)
	z.LineTo(b.x+nx, b.y+ny)
	z.LineTo(b.x-nx, b.y-ny)
	z.LineTo(a.x-nx, a.y-ny)
	z.ClosePath()
}

// circleK places cubic control points so four arcs approximate a circle.
const circleK = 0.5522847

func fillCircles(dst *image.RGBA, centers []point, radius float32, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, p := range centers {
		k := radius * circleK
		z.MoveTo(p.x+radius, p.y)
		z.CubeTo(p.x+radius, p.y+k, p.x+k, p.y+radius, p.x, p.y+radius)
		z.CubeTo(p.x-k, p.y+radius, p.x-radius, p.y+k, p.x-radius, p.y)
		z.CubeTo(p.x-radius, p.y-k, p.x-k, p.y-radius, p.x, p.y-radius)
		z.CubeTo(p.x+k, p.y-radius, p.x+radius, p.y-k, p.x+radius, p.y)
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func drawLabels(dst *image.RGBA, points []point, face font.Face) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(labelColor), Face: face}
	metrics := face.Metrics()
	for i, p := range points {
		label := strconv.Itoa(i + 1)
		w := d.MeasureString(label)
		d.Dot = fixed.Point26_6{
			X: fixed.I(int(p.x)) - w/2,
			Y: fixed.I(int(p.y)) + (metrics.Ascent-metrics.Descent)/2,
		}
		d.DrawString(label)
	}
}

func drawBanner(dst *image.RGBA, face font.Face) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(titleColor), Face: face}
	textW := d.MeasureString(Title).Ceil()
	metrics := face.Metrics()
	textH := (metrics.Ascent + metrics.Descent).Ceil()

	const padX, padY, top = 30, 10, 20
	w := dst.Bounds().Dx()
	banner := image.Rect((w-textW)/2-padX, top, (w+textW)/2+padX, top+textH+2*padY)
	draw.Draw(dst, banner, image.NewUniform(bannerColor), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{X: fixed.I((w - textW) / 2), Y: fixed.I(top+padY) + metrics.Ascent}
	d.DrawString(Title)
}
