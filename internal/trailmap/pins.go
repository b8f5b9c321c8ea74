package trailmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"redbird/internal"
)

func LoadPins(path string) ([]internal.Pin, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pins []internal.Pin
	if err := json.Unmarshal(blob, &pins); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return pins, nil
}

// SavePins writes pins as indented JSON. Emoji and markup characters are
// written as-is.
func SavePins(path string, pins []internal.Pin) error {
	if pins == nil {
		pins = []internal.Pin{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pins); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ValidPins drops pins whose coordinates cannot be drawn: out of range,
// NaN, or the 0,0 placeholder.
func ValidPins(pins []internal.Pin) (valid []internal.Pin, skipped int) {
	valid = make([]internal.Pin, 0, len(pins))
	for _, p := range pins {
		switch {
		case math.IsNaN(p.Lat) || math.IsNaN(p.Lon):
		case p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180:
		case p.Lat == 0 && p.Lon == 0:
		default:
			valid = append(valid, p)
			continue
		}
		skipped++
	}
	return valid, skipped
}
