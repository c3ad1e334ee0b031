package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type Point struct {
	X float64
	Y float64
}

type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBaseline
	AlignBottom
)

// Canvas draws anti-aliased shapes and text onto an RGBA image. Sizes given
// in points are converted with the canvas DPI.
type Canvas struct {
	img *image.RGBA
	dpi float64
}

func NewCanvas(width, height int, dpi float64, background color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	return &Canvas{img: img, dpi: dpi}
}

func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Px converts points to pixels.
func (c *Canvas) Px(points float64) float64 {
	return points * c.dpi / 72
}

func (c *Canvas) Fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Over)
}

func (c *Canvas) DrawImage(r image.Rectangle, src image.Image) {
	draw.Draw(c.img, r, src, src.Bounds().Min, draw.Over)
}

// rasterize runs build against a rasterizer covering clip and composites
// the coverage in col. build receives coordinates relative to the canvas.
func (c *Canvas) rasterize(clip image.Rectangle, col color.Color, build func(z *vector.Rasterizer, off Point)) {
	clip = clip.Intersect(c.img.Bounds())
	if clip.Empty() {
		return
	}
	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	build(z, Point{X: float64(clip.Min.X), Y: float64(clip.Min.Y)})
	z.Draw(c.img, clip, image.NewUniform(col), image.Point{})
}

func (c *Canvas) FillPolygon(pts []Point, col color.Color, clip image.Rectangle) {
	if len(pts) < 3 {
		return
	}
	c.rasterize(clip, col, func(z *vector.Rasterizer, off Point) {
		z.MoveTo(float32(pts[0].X-off.X), float32(pts[0].Y-off.Y))
		for _, p := range pts[1:] {
			z.LineTo(float32(p.X-off.X), float32(p.Y-off.Y))
		}
		z.ClosePath()
	})
}

// StrokePolyline draws each segment as a quad of the given pixel width.
// All quads share one winding direction so overlaps do not cancel.
func (c *Canvas) StrokePolyline(pts []Point, width float64, col color.Color, clip image.Rectangle) {
	c.StrokePolylines([][]Point{pts}, width, col, clip)
}

func (c *Canvas) StrokePolylines(lines [][]Point, width float64, col color.Color, clip image.Rectangle) {
	if width <= 0 {
		return
	}
	half := width / 2

	c.rasterize(clip, col, func(z *vector.Rasterizer, off Point) {
		for _, pts := range lines {
			for i := 1; i < len(pts); i++ {
				a, b := pts[i-1], pts[i]
				dx, dy := b.X-a.X, b.Y-a.Y
				l := math.Hypot(dx, dy)
				if l == 0 {
					continue
				}
				nx, ny := -dy/l*half, dx/l*half

				z.MoveTo(float32(a.X+nx-off.X), float32(a.Y+ny-off.Y))
				z.LineTo(float32(b.X+nx-off.X), float32(b.Y+ny-off.Y))
				z.LineTo(float32(b.X-nx-off.X), float32(b.Y-ny-off.Y))
				z.LineTo(float32(a.X-nx-off.X), float32(a.Y-ny-off.Y))
				z.ClosePath()
			}
		}
	})
}

var (
	fontOnce  sync.Once
	fontData  *opentype.Font
	fontErr   error
	faceMu    sync.Mutex
	faceCache = make(map[float64]font.Face)
)

// Face returns Go Regular at size points for the canvas DPI, or the basic
// bitmap face if the font cannot be loaded.
func (c *Canvas) Face(size float64) font.Face {
	fontOnce.Do(func() {
		fontData, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return basicfont.Face7x13
	}

	px := c.Px(size)
	faceMu.Lock()
	defer faceMu.Unlock()
	if face, ok := faceCache[px]; ok {
		return face
	}
	face, err := opentype.NewFace(fontData, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	faceCache[px] = face
	return face
}

// MeasureText returns the advance width and the ascent and descent in pixels.
func (c *Canvas) MeasureText(s string, size float64) (width, ascent, descent float64) {
	face := c.Face(size)
	m := face.Metrics()
	return fixedToFloat(font.MeasureString(face, s)), fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// Text draws s anchored at (x, y).
func (c *Canvas) Text(s string, x, y, size float64, ha HAlign, va VAlign, col color.Color) {
	face := c.Face(size)
	w, ascent, descent := c.MeasureText(s, size)

	switch ha {
	case AlignCenter:
		x -= w / 2
	case AlignRight:
		x -= w
	}

	switch va {
	case AlignTop:
		y += ascent
	case AlignMiddle:
		y += (ascent - descent) / 2
	case AlignBottom:
		y -= descent
	}

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)},
	}
	d.DrawString(s)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
