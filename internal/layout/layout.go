package layout

import (
	"image"
	"math"

	"hstin/locatormap/internal/config"
)

// Box is a rectangle in figure fractions, origin at the bottom-left corner.
type Box struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// Grid splits the figure into Rows x Cols cells separated by HSpace and
// WSpace, both expressed as a fraction of the average cell size.
type Grid struct {
	Rows    int
	Cols    int
	HSpace  float64
	WSpace  float64
	Margins Box
}

func NewGrid(fig config.FigureConfig) Grid {
	return Grid{
		Rows:   fig.Rows,
		Cols:   fig.Cols,
		HSpace: fig.HSpace,
		WSpace: fig.WSpace,
		Margins: Box{
			Left:   fig.Margins.Left,
			Bottom: fig.Margins.Bottom,
			Right:  fig.Margins.Right,
			Top:    fig.Margins.Top,
		},
	}
}

func (g Grid) cellSize() (w, h float64) {
	totW := g.Margins.Right - g.Margins.Left
	totH := g.Margins.Top - g.Margins.Bottom
	w = totW / (float64(g.Cols) + g.WSpace*float64(g.Cols-1))
	h = totH / (float64(g.Rows) + g.HSpace*float64(g.Rows-1))
	return w, h
}

// Cell returns the box covering rowSpan x colSpan cells starting at
// (row, col). Row 0 is the top row.
func (g Grid) Cell(row, col, rowSpan, colSpan int) Box {
	w, h := g.cellSize()
	sepW := g.WSpace * w
	sepH := g.HSpace * h

	lastRow := row + rowSpan - 1
	lastCol := col + colSpan - 1

	return Box{
		Left:   g.Margins.Left + float64(col)*(w+sepW),
		Right:  g.Margins.Left + float64(lastCol)*(w+sepW) + w,
		Top:    g.Margins.Top - float64(row)*(h+sepH),
		Bottom: g.Margins.Top - float64(lastRow)*(h+sepH) - h,
	}
}

// Pixels converts the box to image coordinates for a width x height figure.
func (b Box) Pixels(width, height int) image.Rectangle {
	fw, fh := float64(width), float64(height)
	return image.Rect(
		int(math.Round(b.Left*fw)),
		int(math.Round((1-b.Top)*fh)),
		int(math.Round(b.Right*fw)),
		int(math.Round((1-b.Bottom)*fh)),
	)
}

// FitAspect shrinks r to the given width/height ratio and centers it.
func FitAspect(r image.Rectangle, aspect float64) image.Rectangle {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return r
	}
	w, h := float64(r.Dx()), float64(r.Dy())
	if w/h > aspect {
		nw := int(math.Round(h * aspect))
		x := r.Min.X + (r.Dx()-nw)/2
		return image.Rect(x, r.Min.Y, x+nw, r.Max.Y)
	}
	nh := int(math.Round(w / aspect))
	y := r.Min.Y + (r.Dy()-nh)/2
	return image.Rect(r.Min.X, y, r.Max.X, y+nh)
}
