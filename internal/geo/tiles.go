package geo

import (
	"math"

	"hstin/locatormap/internal/config"
)

// Tile is a Web Mercator (XYZ) tile address.
type Tile struct {
	Z int
	X int
	Y int
}

// LatLonToTile returns the tile containing the point. Longitude clamps to
// the world edge, unlike LatLonToPixel.
func LatLonToTile(lat, lon float64, zoom int) (int, int) {
	lon = math.Max(-180, math.Min(180, lon))
	px, py := LatLonToPixel(lat, lon, zoom)

	n := 1 << zoom
	x := int(math.Floor(px / config.TileSize))
	y := int(math.Floor(py / config.TileSize))
	return min(max(x, 0), n-1), min(max(y, 0), n-1)
}

// LatLonToPixel returns global pixel coordinates at zoom. Longitude is not
// wrapped, so extents crossing the antimeridian stay continuous.
func LatLonToPixel(lat, lon float64, zoom int) (float64, float64) {
	lat = ClampLat(lat)
	size := float64(config.TileSize) * math.Pow(2.0, float64(zoom))

	x := (lon + 180.0) / 360.0 * size
	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * size
	return x, y
}

// TileRange is the inclusive block of tiles covering an extent. MinX and
// MaxX may fall outside [0, 2^z) when the extent crosses the antimeridian.
type TileRange struct {
	Z    int
	MinX int
	MaxX int
	MinY int
	MaxY int
}

func (r TileRange) Width() int {
	return r.MaxX - r.MinX + 1
}

func (r TileRange) Height() int {
	return r.MaxY - r.MinY + 1
}

func (r TileRange) Count() int {
	return r.Width() * r.Height()
}

// Tiles lists the range row by row with X wrapped into the valid range.
func (r TileRange) Tiles() []Tile {
	result := make([]Tile, 0, r.Count())
	for y := r.MinY; y <= r.MaxY; y++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			result = append(result, Tile{Z: r.Z, X: WrapX(x, r.Z), Y: y})
		}
	}
	return result
}

func TilesCovering(e Extent, zoom int) TileRange {
	n := 1 << zoom

	minPX, minPY := LatLonToPixel(e.North, e.West, zoom)
	maxPX, maxPY := LatLonToPixel(e.South, e.East, zoom)

	r := TileRange{
		Z:    zoom,
		MinX: int(math.Floor(minPX / config.TileSize)),
		MaxX: int(math.Floor(math.Nextafter(maxPX, math.Inf(-1)) / config.TileSize)),
		MinY: int(math.Floor(minPY / config.TileSize)),
		MaxY: int(math.Floor(math.Nextafter(maxPY, math.Inf(-1)) / config.TileSize)),
	}
	if r.MaxX < r.MinX {
		r.MaxX = r.MinX
	}
	if r.MinY < 0 {
		r.MinY = 0
	}
	if r.MaxY >= n {
		r.MaxY = n - 1
	}
	if r.MaxY < r.MinY {
		r.MaxY = r.MinY
	}
	return r
}

func WrapX(x, zoom int) int {
	n := 1 << zoom
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func ClampLat(lat float64) float64 {
	if lat < -config.MaxLat {
		return -config.MaxLat
	}
	if lat > config.MaxLat {
		return config.MaxLat
	}
	return lat
}
