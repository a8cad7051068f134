// Package slippy implements the Web Mercator slippy-map tile scheme used by
// the wplace backend: lat/lng to tile index conversion and grid enumeration.
package slippy

import (
	"fmt"
	"math"
)

const (
	// MaxLat is the Web Mercator latitude limit. The projection diverges
	// toward the poles, so latitudes are clamped before conversion.
	MaxLat = 85.05112878
	MinLat = -MaxLat

	MinLng = -180.0
	MaxLng = 180.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point is inside geographic range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= MinLng && p.Lng <= MaxLng
}

// Tile is a slippy-map tile index at a zoom level.
// Valid X and Y are in [0, 2^Zoom-1].
type Tile struct {
	Zoom int
	X    int
	Y    int
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// FromPoint returns the tile containing p at the given zoom.
// Latitude is clamped to the Mercator limit first; longitude wraps.
func FromPoint(p Point, zoom int) Tile {
	lat := math.Max(math.Min(p.Lat, MaxLat), MinLat)

	n := float64(int(1) << zoom)
	xf := (p.Lng + 180.0) / 360.0 * n

	latRad := lat * math.Pi / 180.0
	yf := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n

	x, y := WrapClamp(int(math.Floor(xf)), int(math.Floor(yf)), zoom)
	return Tile{Zoom: zoom, X: x, Y: y}
}

// WrapClamp normalizes a raw tile index: X wraps around the antimeridian
// (the world is periodic in longitude), Y clamps to the top/bottom row.
// Grids that extend past the poles therefore repeat the edge row rather
// than producing missing tiles.
func WrapClamp(x, y, zoom int) (int, int) {
	n := 1 << zoom
	x = ((x % n) + n) % n
	if y < 0 {
		y = 0
	}
	if y > n-1 {
		y = n - 1
	}
	return x, y
}
