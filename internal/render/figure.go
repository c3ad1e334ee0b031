package render

import (
	"context"
	"image"

	"github.com/pkg/errors"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/layout"
	"hstin/locatormap/internal/metrics"
	"hstin/locatormap/internal/panel"
	"hstin/locatormap/internal/style"
)

const attributionSize = 7 // points

// Figure is a set of configured panels and the grid cells they occupy.
type Figure struct {
	Config      config.FigureConfig
	Specs       []config.PanelSpec
	Panels      []*panel.Panel
	Attribution string
}

// PanelBoxes returns the pixel box of every panel, shrunk to the panel's
// extent aspect ratio.
func (f *Figure) PanelBoxes() []image.Rectangle {
	width, height := f.Config.FigureSize()
	grid := layout.NewGrid(f.Config)

	boxes := make([]image.Rectangle, len(f.Specs))
	for i, spec := range f.Specs {
		cell := grid.Cell(spec.Row, spec.Col, spec.RowSpan, spec.ColSpan).Pixels(width, height)
		boxes[i] = layout.FitAspect(cell, f.Panels[i].Extent.Aspect())
	}
	return boxes
}

// RenderFigure draws the panels in order, later panels on top.
func (r *Renderer) RenderFigure(ctx context.Context, f *Figure) (*image.RGBA, error) {
	if len(f.Specs) != len(f.Panels) {
		return nil, errors.Errorf("%d panel specs for %d panels", len(f.Specs), len(f.Panels))
	}

	width, height := f.Config.FigureSize()
	cv := NewCanvas(width, height, f.Config.DPI, r.style.Get(style.FigureBackground).Color)

	for i, box := range f.PanelBoxes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.RenderPanel(ctx, cv, f.Panels[i], box); err != nil {
			return nil, errors.Wrapf(err, "error rendering panel %d", i)
		}
		metrics.PanelsRendered.Inc()
	}

	if f.Attribution != "" {
		labels := r.style.Get(style.Labels)
		pad := cv.Px(labelPad)
		cv.Text(f.Attribution, float64(width)-pad, float64(height)-pad, attributionSize, AlignRight, AlignBottom, labels.Color)
	}

	return cv.Image(), nil
}
