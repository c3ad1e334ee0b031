package render

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"hstin/locatormap/internal/features"
	"hstin/locatormap/internal/geo"
	"hstin/locatormap/internal/panel"
	"hstin/locatormap/internal/style"
)

const (
	starInnerRatio = 0.381966
	tickLength     = 3.5 // points
	labelPad       = 3.5 // points
)

// BackgroundSource produces a tile background resampled to a panel extent.
type BackgroundSource interface {
	Background(ctx context.Context, sourceName string, zoom int, extent geo.Extent, width, height int) (*image.RGBA, error)
}

type Renderer struct {
	backgrounds BackgroundSource
	features    features.Source
	style       style.Style

	noFeatures sync.Once
}

// NewRenderer returns a renderer. Either source may be nil: panels then skip
// their image or feature layers.
func NewRenderer(backgrounds BackgroundSource, fs features.Source, s style.Style) *Renderer {
	if s == nil {
		s = style.Default()
	}
	return &Renderer{backgrounds: backgrounds, features: fs, style: s}
}

// RenderPanel draws p into box on the canvas.
func (r *Renderer) RenderPanel(ctx context.Context, cv *Canvas, p *panel.Panel, box image.Rectangle) error {
	if box.Empty() {
		return errors.Errorf("empty panel box %v", box)
	}
	if !p.Extent.Valid() {
		return errors.Errorf("invalid panel extent %v", p.Extent)
	}

	proj := p.Projection(float64(box.Dx()), float64(box.Dy()))
	toCanvas := func(lon, lat float64) Point {
		x, y := proj.ToPixel(lon, lat)
		return Point{X: float64(box.Min.X) + x, Y: float64(box.Min.Y) + y}
	}

	cv.Fill(box, r.style.Get(style.PanelBackground).Color)

	if err := r.drawImages(ctx, cv, p, box); err != nil {
		return err
	}
	if err := r.drawFeatures(cv, p, box, toCanvas); err != nil {
		return err
	}
	if p.Grid {
		r.drawGrid(cv, p, box, toCanvas)
	}

	markers := append([]panel.Marker(nil), p.Markers...)
	sort.SliceStable(markers, func(i, j int) bool { return markers[i].ZOrder < markers[j].ZOrder })
	for _, m := range markers {
		c := toCanvas(m.Lon, m.Lat)
		cv.FillPolygon(star(c, cv.Px(m.Size)/2), m.Color, box)
	}

	if p.ScaleBar != nil {
		r.drawScaleBar(cv, p, box)
	}

	r.drawFrame(cv, box)
	r.drawTicks(cv, p, box, toCanvas)
	return nil
}

func (r *Renderer) drawImages(ctx context.Context, cv *Canvas, p *panel.Panel, box image.Rectangle) error {
	if len(p.Images) == 0 {
		return nil
	}
	if r.backgrounds == nil {
		return errors.New("panel has image layers but no tile fetcher is configured")
	}
	for _, layer := range p.Images {
		img, err := r.backgrounds.Background(ctx, layer.Source, layer.Zoom, p.Extent, box.Dx(), box.Dy())
		if err != nil {
			return errors.Wrapf(err, "error drawing %v background", layer.Source)
		}
		cv.DrawImage(box, img)
	}
	return nil
}

func (r *Renderer) drawFeatures(cv *Canvas, p *panel.Panel, box image.Rectangle, toCanvas func(lon, lat float64) Point) error {
	if len(p.Features) == 0 {
		return nil
	}
	if r.features == nil {
		r.noFeatures.Do(func() {
			slog.Info("no feature directory configured, skipping borders and coastlines")
		})
		return nil
	}

	for _, layer := range p.Features {
		lines, err := r.features.Lines(features.Name(layer.Name), layer.Scale, p.Extent)
		if err != nil {
			return errors.Wrapf(err, "error loading %v features", layer.Name)
		}

		paths := make([][]Point, 0, len(lines))
		for _, ls := range lines {
			pts := make([]Point, len(ls))
			for i, pt := range ls {
				pts[i] = toCanvas(pt[0], pt[1])
			}
			paths = append(paths, pts)
		}
		cv.StrokePolylines(paths, cv.Px(layer.LineWidth), layer.Color, box)
	}
	return nil
}

func (r *Renderer) drawGrid(cv *Canvas, p *panel.Panel, box image.Rectangle, toCanvas func(lon, lat float64) Point) {
	e := r.style.Get(style.Ticks)
	gridColor := color.RGBA{R: 176, G: 176, B: 176, A: 255}
	width := cv.Px(e.Width) / 2

	var lines [][]Point
	for _, lon := range p.XAxis.Ticks {
		lines = append(lines, []Point{toCanvas(lon, p.Extent.North), toCanvas(lon, p.Extent.South)})
	}
	for _, lat := range p.YAxis.Ticks {
		lines = append(lines, []Point{toCanvas(p.Extent.West, lat), toCanvas(p.Extent.East, lat)})
	}
	cv.StrokePolylines(lines, width, gridColor, box)
}

func (r *Renderer) drawFrame(cv *Canvas, box image.Rectangle) {
	e := r.style.Get(style.Frame)
	x0, y0 := float64(box.Min.X), float64(box.Min.Y)
	x1, y1 := float64(box.Max.X), float64(box.Max.Y)
	cv.StrokePolyline([]Point{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}, cv.Px(e.Width), e.Color, cv.Bounds())
}

// drawScaleBar draws the bar centered on its location. The bar spans the
// given distance along the parallel through the bar.
func (r *Renderer) drawScaleBar(cv *Canvas, p *panel.Panel, box image.Rectangle) {
	sb := p.ScaleBar
	km, ok := toKilometres(sb.Length, sb.Units)
	if !ok || km <= 0 {
		slog.Warn("skipping scale bar", "length", sb.Length, "units", sb.Units)
		return
	}

	lat := p.Extent.South + sb.LocationY*p.Extent.Height()
	spanDeg := geo.LongitudeSpan(lat, km)
	barPx := spanDeg / p.Extent.Width() * float64(box.Dx())
	if math.IsInf(barPx, 0) || math.IsNaN(barPx) {
		return
	}

	cx := float64(box.Min.X) + sb.LocationX*float64(box.Dx())
	cy := float64(box.Max.Y) - sb.LocationY*float64(box.Dy())
	width := cv.Px(sb.LineWidth)

	cv.StrokePolyline([]Point{{cx - barPx/2, cy}, {cx + barPx/2, cy}}, width, sb.Color, box)

	labels := r.style.Get(style.Labels)
	cv.Text(ScaleBarLabel(sb.Length, sb.Units), cx, cy-width/2-cv.Px(labelPad)/2, labels.Width, AlignCenter, AlignBottom, sb.Color)
}

// ScaleBarLabel prints the length with the shortest exact representation.
func ScaleBarLabel(length float64, units string) string {
	return strconv.FormatFloat(length, 'f', -1, 64) + " " + units
}

func toKilometres(length float64, units string) (float64, bool) {
	switch units {
	case "km":
		return length, true
	case "m":
		return length / 1000, true
	case "mi":
		return length * 1.609344, true
	case "nmi":
		return length * 1.852, true
	}
	return 0, false
}

func (r *Renderer) drawTicks(cv *Canvas, p *panel.Panel, box image.Rectangle, toCanvas func(lon, lat float64) Point) {
	ticks := r.style.Get(style.Ticks)
	labels := r.style.Get(style.Labels)
	length := cv.Px(tickLength)
	pad := cv.Px(labelPad)
	width := cv.Px(ticks.Width)
	bounds := cv.Bounds()

	var marks [][]Point

	for i, lon := range p.XAxis.Ticks {
		c := toCanvas(lon, p.Extent.South)
		y := float64(box.Max.Y)
		va := AlignTop
		dir := 1.0
		if p.XAxis.Side == panel.Top {
			y, va, dir = float64(box.Min.Y), AlignBottom, -1
		}
		marks = append(marks, []Point{{c.X, y}, {c.X, y + dir*length}})
		if i < len(p.XAxis.Labels) {
			cv.Text(p.XAxis.Labels[i], c.X, y+dir*(length+pad), labels.Width, AlignCenter, va, labels.Color)
		}
	}

	for i, lat := range p.YAxis.Ticks {
		c := toCanvas(p.Extent.West, lat)
		x := float64(box.Min.X)
		ha := AlignRight
		dir := -1.0
		if p.YAxis.Side == panel.Right {
			x, ha, dir = float64(box.Max.X), AlignLeft, 1
		}
		marks = append(marks, []Point{{x, c.Y}, {x + dir*length, c.Y}})
		if i < len(p.YAxis.Labels) {
			cv.Text(p.YAxis.Labels[i], x+dir*(length+pad), c.Y, labels.Width, ha, AlignMiddle, labels.Color)
		}
	}

	cv.StrokePolylines(marks, width, ticks.Color, bounds)
}

// star returns a five-pointed star with one point straight up.
func star(c Point, radius float64) []Point {
	pts := make([]Point, 10)
	for i := range pts {
		rad := radius
		if i%2 == 1 {
			rad *= starInnerRatio
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		pts[i] = Point{X: c.X + rad*math.Cos(a), Y: c.Y + rad*math.Sin(a)}
	}
	return pts
}
