package tiles

import (
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/db"
	"hstin/locatormap/internal/geo"
)

// Source is an XYZ tile provider. URL may contain {z}, {x}, {y}, {s} and
// {apikey}; KeyParam names a query parameter that carries the API key.
type Source struct {
	Name        string
	URL         string
	MaxZoom     int
	Subdomains  []string
	Attribution string
	KeyParam    string
}

var (
	Satellite = Source{
		Name:        "satellite",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}.jpg",
		MaxZoom:     19,
		Attribution: "Esri, Maxar, Earthstar Geographics",
	}
	Terrain = Source{
		Name:        "terrain",
		URL:         "https://tiles.stadiamaps.com/tiles/stamen_terrain_background/{z}/{x}/{y}.png",
		MaxZoom:     18,
		Attribution: "Stadia Maps, Stamen Design, OpenStreetMap contributors",
		KeyParam:    "api_key",
	}
)

// TileURL expands the template for t. sub picks the subdomain when the
// source has several.
func (s Source) TileURL(t geo.Tile, apiKey string, sub int) string {
	u := s.URL
	u = strings.ReplaceAll(u, "{z}", strconv.Itoa(t.Z))
	u = strings.ReplaceAll(u, "{x}", strconv.Itoa(t.X))
	u = strings.ReplaceAll(u, "{y}", strconv.Itoa(t.Y))
	if len(s.Subdomains) > 0 {
		u = strings.ReplaceAll(u, "{s}", s.Subdomains[sub%len(s.Subdomains)])
	}
	u = strings.ReplaceAll(u, "{apikey}", url.QueryEscape(apiKey))

	if apiKey != "" && s.KeyParam != "" {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + url.QueryEscape(s.KeyParam) + "=" + url.QueryEscape(apiKey)
	}
	return u
}

// Format guesses the tile encoding from the template's file extension.
func (s Source) Format() string {
	p := s.URL
	if u, err := url.Parse(s.URL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return "jpg"
	case ".webp":
		return "webp"
	default:
		return "png"
	}
}

func (s Source) Metadata() db.Metadata {
	return db.Metadata{
		Name:        s.Name,
		Format:      s.Format(),
		Description: "Tile cache for " + s.Name,
		Attribution: s.Attribution,
		MinZoom:     0,
		MaxZoom:     s.MaxZoom,
	}
}

type Registry map[string]Source

func DefaultRegistry() Registry {
	return Registry{
		Satellite.Name: Satellite,
		Terrain.Name:   Terrain,
	}
}

// NewRegistry returns the built-in sources with configured sources added or
// overriding them by name.
func NewRegistry(sources map[string]config.SourceConfig) Registry {
	r := DefaultRegistry()
	for name, sc := range sources {
		s := r[name]
		s.Name = name
		if sc.URL != "" {
			s.URL = sc.URL
		}
		if sc.MaxZoom > 0 {
			s.MaxZoom = sc.MaxZoom
		}
		if len(sc.Subdomains) > 0 {
			s.Subdomains = sc.Subdomains
		}
		if sc.Attribution != "" {
			s.Attribution = sc.Attribution
		}
		r[name] = s
	}
	return r
}

func (r Registry) Get(name string) (Source, error) {
	s, ok := r[name]
	if !ok || s.URL == "" {
		return Source{}, errors.Errorf("unknown tile source %q (known: %v)", name, strings.Join(r.Names(), ", "))
	}
	return s, nil
}

func (r Registry) Names() []string {
	names := lo.Keys(r)
	sort.Strings(names)
	return names
}

// MetadataFor is used by the MBTiles cache to describe a source file.
func (r Registry) MetadataFor(name string) db.Metadata {
	if s, ok := r[name]; ok {
		return s.Metadata()
	}
	return db.Metadata{Name: name, Format: "png"}
}
