package features

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"hstin/locatormap/internal/geo"
)

type Name string

const (
	Borders   Name = "borders"
	States    Name = "states"
	Coastline Name = "coastline"
)

// Natural Earth dataset names for each layer.
var datasets = map[Name]string{
	Borders:   "admin_0_boundary_lines_land",
	States:    "admin_1_states_provinces_lines",
	Coastline: "coastline",
}

func FileName(name Name, scale string) (string, error) {
	dataset, ok := datasets[name]
	if !ok {
		return "", errors.Errorf("unknown feature layer %q", name)
	}
	return "ne_" + scale + "_" + dataset + ".geojson", nil
}

// Source provides line work for a feature layer, clipped to an extent.
type Source interface {
	Lines(name Name, scale string, extent geo.Extent) ([]orb.LineString, error)
}

// DirSource reads Natural Earth GeoJSON files from a directory and keeps
// each parsed file in memory.
type DirSource struct {
	dir    string
	mu     sync.Mutex
	loaded map[string][]orb.LineString
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{
		dir:    dir,
		loaded: make(map[string][]orb.LineString),
	}
}

func (s *DirSource) Lines(name Name, scale string, extent geo.Extent) ([]orb.LineString, error) {
	all, err := s.load(name, scale)
	if err != nil {
		return nil, err
	}

	var result []orb.LineString
	// Extents past the antimeridian also match features stored one world
	// away; those parts are shifted into the extent's longitude range.
	for _, shift := range []float64{0, -360, 360} {
		bound := orb.Bound{
			Min: orb.Point{extent.West + shift, extent.South},
			Max: orb.Point{extent.East + shift, extent.North},
		}
		if bound.Max[0] <= -180 || bound.Min[0] >= 180 {
			continue
		}
		for _, ls := range all {
			if !ls.Bound().Intersects(bound) {
				continue
			}
			for _, part := range clip.LineString(bound, ls) {
				if len(part) < 2 {
					continue
				}
				if shift != 0 {
					part = translate(part, -shift)
				}
				result = append(result, part)
			}
		}
	}
	return result, nil
}

func translate(ls orb.LineString, dx float64) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, pt := range ls {
		out[i] = orb.Point{pt[0] + dx, pt[1]}
	}
	return out
}

func (s *DirSource) load(name Name, scale string) ([]orb.LineString, error) {
	file, err := FileName(name, scale)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lines, ok := s.loaded[file]; ok {
		return lines, nil
	}

	data, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading feature layer %v", name)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %v", file)
	}

	var lines []orb.LineString
	for _, f := range fc.Features {
		lines = appendLines(lines, f.Geometry)
	}

	s.loaded[file] = lines
	return lines, nil
}

func appendLines(lines []orb.LineString, g orb.Geometry) []orb.LineString {
	switch g := g.(type) {
	case orb.LineString:
		lines = append(lines, g)
	case orb.MultiLineString:
		lines = append(lines, g...)
	case orb.Ring:
		lines = append(lines, orb.LineString(g))
	case orb.Polygon:
		for _, r := range g {
			lines = append(lines, orb.LineString(r))
		}
	case orb.MultiPolygon:
		for _, p := range g {
			lines = appendLines(lines, p)
		}
	case orb.Collection:
		for _, c := range g {
			lines = appendLines(lines, c)
		}
	}
	return lines
}
