package tiles

import (
	"context"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/geo"
)

// Background renders the tiles of sourceName at zoom into a width x height
// plate carrée image of extent.
func (f *Fetcher) Background(ctx context.Context, sourceName string, zoom int, extent geo.Extent, width, height int) (*image.RGBA, error) {
	src, r, err := f.Range(sourceName, zoom, extent)
	if err != nil {
		return nil, err
	}

	imgs, err := f.Tiles(ctx, src, r.Tiles())
	if err != nil {
		return nil, err
	}

	mosaic := Mosaic(r, imgs)
	return Resample(mosaic, r, extent, width, height), nil
}

// Mosaic stitches the tiles of r into one Web Mercator image. Missing tiles
// stay transparent.
func Mosaic(r geo.TileRange, imgs map[geo.Tile]image.Image) *image.RGBA {
	const ts = config.TileSize

	mosaic := image.NewRGBA(image.Rect(0, 0, r.Width()*ts, r.Height()*ts))
	for ty := r.MinY; ty <= r.MaxY; ty++ {
		for tx := r.MinX; tx <= r.MaxX; tx++ {
			img, ok := imgs[geo.Tile{Z: r.Z, X: geo.WrapX(tx, r.Z), Y: ty}]
			if !ok || img == nil {
				continue
			}

			ox := (tx - r.MinX) * ts
			oy := (ty - r.MinY) * ts
			dst := image.Rect(ox, oy, ox+ts, oy+ts)

			b := img.Bounds()
			if b.Dx() == ts && b.Dy() == ts {
				draw.Draw(mosaic, dst, img, b.Min, draw.Src)
			} else {
				xdraw.ApproxBiLinear.Scale(mosaic, dst, img, b, draw.Src, nil)
			}
		}
	}
	return mosaic
}

// Resample maps the mosaic onto the plate carrée grid of extent with
// nearest-neighbour sampling. Longitude is linear in both projections, so
// only the rows need the Mercator transform.
func Resample(mosaic *image.RGBA, r geo.TileRange, extent geo.Extent, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	proj := geo.PlateCarree{Extent: extent, Width: float64(width), Height: float64(height)}

	mb := mosaic.Bounds()
	originX := float64(r.MinX * config.TileSize)
	originY := float64(r.MinY * config.TileSize)

	cols := make([]int, width)
	for px := range cols {
		lon, _ := proj.FromPixel(float64(px)+0.5, 0)
		gx, _ := geo.LatLonToPixel(0, lon, r.Z)
		cols[px] = clampInt(int(math.Floor(gx-originX)), 0, mb.Dx()-1)
	}

	for py := 0; py < height; py++ {
		_, lat := proj.FromPixel(0, float64(py)+0.5)
		_, gy := geo.LatLonToPixel(lat, 0, r.Z)
		sy := clampInt(int(math.Floor(gy-originY)), 0, mb.Dy()-1)

		srcRow := mosaic.Pix[sy*mosaic.Stride:]
		dstRow := out.Pix[py*out.Stride:]
		for px, sx := range cols {
			copy(dstRow[px*4:px*4+4], srcRow[sx*4:sx*4+4])
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
