package render

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// FormatFor returns the output format: the configured one if set, otherwise
// the one implied by the file extension, defaulting to png.
func FormatFor(path, format string) string {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "jpeg"
	case "webp":
		return "webp"
	}
	return "png"
}

func Encode(w io.Writer, img image.Image, format string, quality int) error {
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "webp":
		err = webp.Encode(w, img, &webp.Options{Lossless: false, Quality: float32(quality)})
	case "png":
		err = png.Encode(w, img)
	default:
		return errors.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "error encoding %v", format)
	}
	return nil
}
