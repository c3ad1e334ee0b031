package panel

import (
	"image/color"

	"hstin/locatormap/internal/geo"
)

type Side int

const (
	Left Side = iota
	Right
	Bottom
	Top
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	}
	return "unknown"
}

// Marker is a point symbol. Size is the marker diameter in points; markers
// with a higher ZOrder are drawn later.
type Marker struct {
	Lon    float64
	Lat    float64
	Shape  string
	Size   float64
	Color  color.RGBA
	ZOrder int
}

type FeatureLayer struct {
	Name      string
	Scale     string
	LineWidth float64
	Color     color.RGBA
}

// ImageLayer is a tile background requested at a fixed tile zoom level.
type ImageLayer struct {
	Source string
	Zoom   int
}

type Axis struct {
	Ticks  []float64
	Labels []string
	Side   Side
}

// ScaleBar is a ruler of Length Units. Location is the bar center in panel
// fractions measured from the bottom-left corner.
type ScaleBar struct {
	Length    float64
	Units     string
	LocationX float64
	LocationY float64
	LineWidth float64
	Color     color.RGBA
}

// Panel is a map drawing surface in the plate carrée projection.
type Panel struct {
	Center     geo.LatLon
	ZoomRadius float64
	Extent     geo.Extent
	Markers    []Marker
	Features   []FeatureLayer
	Images     []ImageLayer
	XAxis      Axis
	YAxis      Axis
	Grid       bool
	ScaleBar   *ScaleBar
}

func New() *Panel {
	return &Panel{
		XAxis: Axis{Side: Bottom},
		YAxis: Axis{Side: Left},
		Grid:  true,
	}
}

func (p *Panel) SetExtent(e geo.Extent) {
	p.Extent = e
}

func (p *Panel) AddImage(source string, zoom int) {
	p.Images = append(p.Images, ImageLayer{Source: source, Zoom: zoom})
}

// ClearTicks removes ticks and tick labels from both axes.
func (p *Panel) ClearTicks() {
	p.XAxis.Ticks, p.XAxis.Labels = nil, nil
	p.YAxis.Ticks, p.YAxis.Labels = nil, nil
}

// Projection maps the panel extent onto a width x height pixel box.
func (p *Panel) Projection(width, height float64) geo.PlateCarree {
	return geo.PlateCarree{Extent: p.Extent, Width: width, Height: height}
}
