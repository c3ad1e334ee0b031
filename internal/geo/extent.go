package geo

import "fmt"

type LatLon struct {
	Lat float64
	Lon float64
}

// Extent is a plate carrée bounding box in degrees.
type Extent struct {
	West  float64
	East  float64
	South float64
	North float64
}

// ExtentAround returns [lon-r, lon+r, lat-r, lat+r].
func ExtentAround(lat, lon, radius float64) Extent {
	return Extent{
		West:  lon - radius,
		East:  lon + radius,
		South: lat - radius,
		North: lat + radius,
	}
}

// Bounds returns the extent in [west, east, south, north] order.
func (e Extent) Bounds() [4]float64 {
	return [4]float64{e.West, e.East, e.South, e.North}
}

func (e Extent) Width() float64 {
	return e.East - e.West
}

func (e Extent) Height() float64 {
	return e.North - e.South
}

// Aspect is width over height, 1 for the square extents of a locator panel.
func (e Extent) Aspect() float64 {
	return e.Width() / e.Height()
}

func (e Extent) Valid() bool {
	return e.East > e.West && e.North > e.South
}

func (e Extent) String() string {
	return fmt.Sprintf("[%v, %v, %v, %v]", e.West, e.East, e.South, e.North)
}

// PlateCarree maps an extent linearly onto a Width x Height pixel box with
// north at the top.
type PlateCarree struct {
	Extent Extent
	Width  float64
	Height float64
}

func (p PlateCarree) ToPixel(lon, lat float64) (float64, float64) {
	x := (lon - p.Extent.West) / p.Extent.Width() * p.Width
	y := (p.Extent.North - lat) / p.Extent.Height() * p.Height
	return x, y
}

// FromPixel returns the coordinate under a pixel position.
func (p PlateCarree) FromPixel(x, y float64) (float64, float64) {
	lon := p.Extent.West + x/p.Width*p.Extent.Width()
	lat := p.Extent.North - y/p.Height*p.Extent.Height()
	return lon, lat
}
