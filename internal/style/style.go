package style

import (
	"bufio"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Element names understood by the renderer.
const (
	MarkerOuter      = "marker.outer"
	MarkerInner      = "marker.inner"
	Borders          = "borders"
	States           = "states"
	Coastline        = "coastline"
	Frame            = "frame"
	Ticks            = "ticks"
	Labels           = "labels"
	ScaleBar         = "scalebar"
	FigureBackground = "figure.background"
	PanelBackground  = "panel.background"
)

// Entry is the color and, for line elements, the width in points.
type Entry struct {
	Color color.RGBA
	Width float64
}

type Style map[string]Entry

func Default() Style {
	black := color.RGBA{0, 0, 0, 255}
	return Style{
		MarkerOuter:      {Color: black, Width: 20},
		MarkerInner:      {Color: color.RGBA{255, 255, 255, 255}, Width: 15},
		Borders:          {Color: black, Width: 0.5},
		States:           {Color: black, Width: 0.125},
		Coastline:        {Color: black, Width: 0.75},
		Frame:            {Color: black, Width: 0.8},
		Ticks:            {Color: black, Width: 0.8},
		Labels:           {Color: black, Width: 10},
		ScaleBar:         {Color: black, Width: 3},
		FigureBackground: {Color: color.RGBA{255, 255, 255, 255}},
		PanelBackground:  {Color: color.RGBA{255, 255, 255, 255}},
	}
}

// Get returns the entry for name, falling back to the default style.
func (s Style) Get(name string) Entry {
	if e, ok := s[name]; ok {
		return e
	}
	return Default()[name]
}

// Load reads a style file of "name r g b a [width]" lines on top of the
// defaults. Blank lines and lines starting with # are ignored.
func Load(filename string) (Style, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "error opening style file")
	}
	defer file.Close()

	s := Default()
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			slog.Warn("invalid line in style file", "line", line)
			continue
		}

		name := fields[0]
		entry, known := s[name]
		if !known {
			slog.Warn("unknown style element", "name", name)
			continue
		}

		var rgba [4]uint8
		valid := true
		for i := 0; i < 4; i++ {
			v, err := strconv.Atoi(fields[i+1])
			if err != nil || v < 0 || v > 255 {
				valid = false
				break
			}
			rgba[i] = uint8(v)
		}
		if !valid {
			slog.Warn("invalid color in style file", "line", line)
			continue
		}
		entry.Color = color.RGBA{rgba[0], rgba[1], rgba[2], rgba[3]}

		if len(fields) > 5 {
			w, err := strconv.ParseFloat(fields[5], 64)
			if err != nil || w < 0 {
				slog.Warn("invalid width in style file", "line", line)
				continue
			}
			entry.Width = w
		}

		s[name] = entry
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading style file")
	}
	return s, nil
}
