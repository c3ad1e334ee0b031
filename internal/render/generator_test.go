package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/panel"
	"hstin/locatormap/internal/style"
	"hstin/locatormap/internal/tiles"
)

func tileServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()

	tile := image.NewRGBA(image.Rect(0, 0, config.TileSize, config.TileSize))
	draw.Draw(tile, tile.Bounds(), &image.Uniform{C: color.RGBA{40, 120, 40, 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, tile))
	body := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func generatorConfig(t *testing.T, srv *httptest.Server) *config.Config {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Figure.DPI = 20
	cfg.Output.Path = filepath.Join(dir, "out", "map.webp")
	cfg.Cache.MBTilesDir = filepath.Join(dir, "cache")
	cfg.Metrics.Textfile = filepath.Join(dir, "locatormap.prom")
	cfg.Tiles.Sources = map[string]config.SourceConfig{
		"satellite": {URL: srv.URL + "/satellite/{z}/{x}/{y}.png"},
		"terrain":   {URL: srv.URL + "/terrain/{z}/{x}/{y}.png"},
	}
	return cfg
}

func TestGenerate(t *testing.T) {
	var requests atomic.Int64
	cfg := generatorConfig(t, tileServer(t, &requests))

	require.NoError(t, Generate(context.Background(), cfg))

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	img, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(320, 240), img.Bounds().Size())

	assert.Positive(t, requests.Load())
	assert.FileExists(t, filepath.Join(cfg.Cache.MBTilesDir, "satellite.mbtiles"))
	assert.FileExists(t, filepath.Join(cfg.Cache.MBTilesDir, "terrain.mbtiles"))

	metrics, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "locatormap_render_panels_total")
}

func TestPrefetchWarmsCache(t *testing.T) {
	var requests atomic.Int64
	cfg := generatorConfig(t, tileServer(t, &requests))

	n, err := Prefetch(context.Background(), cfg)
	require.NoError(t, err)
	assert.Positive(t, n)
	fetched := requests.Load()
	assert.Equal(t, int64(n), fetched)

	// the MBTiles tier outlives the in-memory one
	require.NoError(t, Generate(context.Background(), cfg))
	assert.Equal(t, fetched, requests.Load())
}

func TestGenerateUnknownSource(t *testing.T) {
	var requests atomic.Int64
	cfg := generatorConfig(t, tileServer(t, &requests))
	cfg.Panels[1].Source = "nowhere"

	err := Generate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
	assert.NoFileExists(t, cfg.Output.Path)
}

func TestBuildPanels(t *testing.T) {
	f := testFigure()
	require.Len(t, f.Panels, 3)

	mainPanel := f.Panels[0]
	assert.Empty(t, mainPanel.XAxis.Ticks)
	assert.Empty(t, mainPanel.YAxis.Ticks)
	assert.Equal(t, []panel.ImageLayer{{Source: "satellite", Zoom: 16}}, mainPanel.Images)
	assert.InDelta(t, 0.01, mainPanel.Extent.Width(), 1e-12)

	inset := f.Panels[2]
	assert.Len(t, inset.XAxis.Ticks, 5)
	assert.Equal(t, panel.Right, inset.YAxis.Side)
	assert.InDelta(t, 6, inset.Extent.Height(), 1e-12)
	assert.Equal(t, 300.0, inset.ScaleBar.Length)
	assert.Equal(t, []panel.ImageLayer{{Source: "terrain", Zoom: 4}}, inset.Images)
}

func TestBuildPanelsWithoutSource(t *testing.T) {
	cfg := &config.Config{Panels: []config.PanelSpec{{RowSpan: 1, ColSpan: 1, ZoomRadius: 1}}}
	panels := BuildPanels(cfg, panel.NewConfigurator(cfg, style.Default()))
	require.Len(t, panels, 1)
	assert.Empty(t, panels[0].Images)
}

func TestAttribution(t *testing.T) {
	specs := testFigure().Specs
	assert.Equal(t,
		"Tiles: "+tiles.Satellite.Attribution+" | "+tiles.Terrain.Attribution,
		Attribution(tiles.DefaultRegistry(), specs))

	assert.Equal(t, "", Attribution(tiles.DefaultRegistry(), nil))
}
