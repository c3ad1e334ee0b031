package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.InDelta(t, -30.066356130832947, cfg.Center.Lat, 1e-12)
	assert.InDelta(t, -51.16407841641491, cfg.Center.Lon, 1e-12)

	w, h := cfg.Figure.FigureSize()
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)
	assert.Equal(t, 3, cfg.Figure.Rows)
	assert.Equal(t, 2, cfg.Figure.Cols)

	require.Len(t, cfg.Panels, 3)
	assert.Equal(t, PanelSpec{Row: 0, Col: 0, RowSpan: 2, ColSpan: 2, ZoomRadius: 0.005, Source: "satellite", TileZoom: 16, HideTicks: true}, cfg.Panels[0])
	assert.Equal(t, PanelSpec{Row: 0, Col: 1, RowSpan: 1, ColSpan: 1, ZoomRadius: 1, Source: "terrain", TileZoom: 6}, cfg.Panels[1])
	assert.Equal(t, PanelSpec{Row: 1, Col: 1, RowSpan: 1, ColSpan: 1, ZoomRadius: 3, Source: "terrain", TileZoom: 4}, cfg.Panels[2])

	assert.Equal(t, 100.0, cfg.ScaleBar.Factor)
	assert.Equal(t, "km", cfg.ScaleBar.Units)
	assert.Equal(t, 1, cfg.Ticks.Decimals)
	assert.False(t, cfg.Ticks.DirectionLabels)
	assert.Equal(t, "50m", cfg.Features.Scale)
	assert.Equal(t, 15*time.Second, cfg.Tiles.Timeout)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
center:
  lat: 48.8584
  lon: 2.2945
output:
  path: eiffel.webp
  quality: 75
panels:
  - row: 0
    col: 0
    row_span: 3
    col_span: 2
    zoom_radius: 0.01
    source: osm
    tile_zoom: 15
tiles:
  sources:
    osm:
      url: https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png
      subdomains: [a, b, c]
      max_zoom: 19
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48.8584, cfg.Center.Lat)
	assert.Equal(t, "eiffel.webp", cfg.Output.Path)
	assert.Equal(t, 75, cfg.Output.Quality)
	require.Len(t, cfg.Panels, 1)
	assert.Equal(t, "osm", cfg.Panels[0].Source)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tiles.Sources["osm"].Subdomains)

	// untouched sections keep their defaults
	assert.Equal(t, 100.0, cfg.Figure.DPI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LOCATORMAP_OUTPUT_PATH", "env.png")
	t.Setenv("LOCATORMAP_CENTER_LAT", "10.5")
	t.Setenv("LOCATORMAP_TILES_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.png", cfg.Output.Path)
	assert.Equal(t, 10.5, cfg.Center.Lat)
	assert.Equal(t, "secret", cfg.Tiles.APIKey)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Center.Lat = 91
	cfg.Figure.DPI = 0
	cfg.Panels[1].ZoomRadius = 0
	cfg.Panels[2].Col = 2
	cfg.Output.Format = "gif"

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"center.lat", "figure.dpi", "panels[1]: zoom_radius", "panels[2]: does not fit", "output.format"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateNoPanels(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Panels = nil
	assert.ErrorContains(t, cfg.Validate(), "at least one panel")
}
