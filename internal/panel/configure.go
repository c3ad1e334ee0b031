package panel

import (
	"github.com/samber/lo"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/features"
	"hstin/locatormap/internal/geo"
	"hstin/locatormap/internal/style"
)

const (
	outerMarkerZOrder = 98
	innerMarkerZOrder = 99
)

// Configurator applies the locator decorations to a panel.
type Configurator struct {
	Style        style.Style
	Ticks        TickFormat
	ScaleFactor  float64
	ScaleUnits   string
	FeatureScale string
}

func DefaultConfigurator() *Configurator {
	return &Configurator{
		Style:        style.Default(),
		Ticks:        DefaultTickFormat(),
		ScaleFactor:  100,
		ScaleUnits:   "km",
		FeatureScale: "50m",
	}
}

func NewConfigurator(cfg *config.Config, s style.Style) *Configurator {
	return &Configurator{
		Style: s,
		Ticks: TickFormat{
			Decimals:               cfg.Ticks.Decimals,
			DegreeSymbol:           cfg.Ticks.DegreeSymbol,
			DirectionLabels:        cfg.Ticks.DirectionLabels,
			DatelineDirectionLabel: cfg.Ticks.DatelineDirectionLabel,
		},
		ScaleFactor:  cfg.ScaleBar.Factor,
		ScaleUnits:   cfg.ScaleBar.Units,
		FeatureScale: cfg.Features.Scale,
	}
}

// Configure sets up p with the default configurator.
func Configure(p *Panel, latitude, longitude, zoomRadius float64) {
	DefaultConfigurator().Configure(p, latitude, longitude, zoomRadius)
}

// Configure centers p on (latitude, longitude) with a square extent of
// zoomRadius degrees each way and replaces any previous decorations.
// zoomRadius is not validated.
func (c *Configurator) Configure(p *Panel, latitude, longitude, zoomRadius float64) {
	p.Center = geo.LatLon{Lat: latitude, Lon: longitude}
	p.ZoomRadius = zoomRadius
	p.SetExtent(geo.ExtentAround(latitude, longitude, zoomRadius))

	outer := c.Style.Get(style.MarkerOuter)
	inner := c.Style.Get(style.MarkerInner)
	p.Markers = []Marker{
		{Lon: longitude, Lat: latitude, Shape: "*", Size: outer.Width, Color: outer.Color, ZOrder: outerMarkerZOrder},
		{Lon: longitude, Lat: latitude, Shape: "*", Size: inner.Width, Color: inner.Color, ZOrder: innerMarkerZOrder},
	}

	p.Features = []FeatureLayer{
		c.featureLayer(features.Borders, style.Borders),
		c.featureLayer(features.States, style.States),
		c.featureLayer(features.Coastline, style.Coastline),
	}

	p.XAxis.Ticks = TickSet(longitude, zoomRadius)
	p.XAxis.Labels = lo.Map(p.XAxis.Ticks, func(v float64, _ int) string { return c.Ticks.FormatLongitude(v) })
	p.YAxis.Ticks = TickSet(latitude, zoomRadius)
	p.YAxis.Labels = lo.Map(p.YAxis.Ticks, func(v float64, _ int) string { return c.Ticks.FormatLatitude(v) })

	p.XAxis.Side = Bottom
	p.YAxis.Side = Right
	p.Grid = false

	bar := c.Style.Get(style.ScaleBar)
	p.ScaleBar = &ScaleBar{
		Length:    zoomRadius * c.ScaleFactor,
		Units:     c.ScaleUnits,
		LocationX: 0.5,
		LocationY: 0.05,
		LineWidth: bar.Width,
		Color:     bar.Color,
	}
}

func (c *Configurator) featureLayer(name features.Name, element string) FeatureLayer {
	e := c.Style.Get(element)
	return FeatureLayer{
		Name:      string(name),
		Scale:     c.FeatureScale,
		LineWidth: e.Width,
		Color:     e.Color,
	}
}
