package render

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/features"
	"hstin/locatormap/internal/geo"
	"hstin/locatormap/internal/metrics"
	"hstin/locatormap/internal/panel"
	"hstin/locatormap/internal/style"
	"hstin/locatormap/internal/tilecache"
	"hstin/locatormap/internal/tiles"
)

type environment struct {
	cache    *tilecache.Chain
	fetcher  *tiles.Fetcher
	style    style.Style
	features features.Source
}

func newEnvironment(ctx context.Context, cfg *config.Config) (*environment, error) {
	registry := tiles.NewRegistry(cfg.Tiles.Sources)

	cache, err := tilecache.New(ctx, cfg.Cache, registry.MetadataFor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize tile cache")
	}

	env := &environment{
		cache:   cache,
		fetcher: tiles.NewFetcher(cfg.Tiles, registry, cache, cfg.Progress),
		style:   style.Default(),
	}

	if cfg.Style.File != "" {
		s, err := style.Load(cfg.Style.File)
		if err != nil {
			cache.Close()
			return nil, errors.Wrap(err, "failed to load style")
		}
		env.style = s
	}

	if cfg.Features.Dir != "" {
		env.features = features.NewDirSource(cfg.Features.Dir)
	}

	return env, nil
}

func (e *environment) Close() {
	if err := e.cache.Close(); err != nil {
		slog.Warn("error closing tile cache", "error", err)
	}
}

// BuildPanels configures one panel per PanelSpec around the configured center.
func BuildPanels(cfg *config.Config, c *panel.Configurator) []*panel.Panel {
	return lo.Map(cfg.Panels, func(spec config.PanelSpec, _ int) *panel.Panel {
		p := panel.New()
		c.Configure(p, cfg.Center.Lat, cfg.Center.Lon, spec.ZoomRadius)
		if spec.Source != "" {
			p.AddImage(spec.Source, spec.TileZoom)
		}
		if spec.HideTicks {
			p.ClearTicks()
		}
		return p
	})
}

// Attribution joins the attributions of the sources the panels use.
func Attribution(registry tiles.Registry, specs []config.PanelSpec) string {
	sources := lo.Uniq(lo.FilterMap(specs, func(spec config.PanelSpec, _ int) (string, bool) {
		return spec.Source, spec.Source != ""
	}))
	attributions := lo.Uniq(lo.FilterMap(sources, func(name string, _ int) (string, bool) {
		s, ok := registry[name]
		return s.Attribution, ok && s.Attribution != ""
	}))
	if len(attributions) == 0 {
		return ""
	}
	return "Tiles: " + strings.Join(attributions, " | ")
}

// Generate renders the configured figure and writes it to cfg.Output.Path.
func Generate(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()

	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	slog.Debug("configuring panels", "panels", len(cfg.Panels), "lat", cfg.Center.Lat, "lon", cfg.Center.Lon)
	panels := BuildPanels(cfg, panel.NewConfigurator(cfg, env.style))

	renderer := NewRenderer(env.fetcher, env.features, env.style)
	img, err := renderer.RenderFigure(ctx, &Figure{
		Config:      cfg.Figure,
		Specs:       cfg.Panels,
		Panels:      panels,
		Attribution: Attribution(env.fetcher.Registry(), cfg.Panels),
	})
	if err != nil {
		return errors.Wrap(err, "failed to render figure")
	}

	size, err := writeImage(cfg.Output, img)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	metrics.RenderDuration.Observe(elapsed.Seconds())

	slog.Info("figure written",
		"path", cfg.Output.Path,
		"size", humanize.Bytes(uint64(size)),
		"pixels", img.Bounds().Dx()*img.Bounds().Dy(),
		"took", elapsed.Round(time.Millisecond))

	return writeMetrics(cfg.Metrics)
}

// Prefetch downloads every background tile the configured panels need.
func Prefetch(ctx context.Context, cfg *config.Config) (int, error) {
	env, err := newEnvironment(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer env.Close()

	total := 0
	for i, spec := range cfg.Panels {
		if spec.Source == "" {
			continue
		}
		extent := geo.ExtentAround(cfg.Center.Lat, cfg.Center.Lon, spec.ZoomRadius)
		n, err := env.fetcher.Prefetch(ctx, spec.Source, spec.TileZoom, extent)
		if err != nil {
			return total, errors.Wrapf(err, "failed to prefetch panel %d", i)
		}
		total += n
	}

	slog.Info("prefetch complete", "tiles", total)
	return total, writeMetrics(cfg.Metrics)
}

func writeImage(out config.OutputConfig, img *image.RGBA) (int64, error) {
	outputDir := filepath.Dir(out.Path)
	if outputDir != "." && outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return 0, errors.Wrap(err, "failed to create output directory")
		}
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create output file")
	}

	format := FormatFor(out.Path, out.Format)
	if err := Encode(f, img, format, out.Quality); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to write output file")
	}

	info, err := os.Stat(out.Path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat output file")
	}
	return info.Size(), nil
}

func writeMetrics(cfg config.MetricsConfig) error {
	if cfg.Textfile == "" {
		return nil
	}
	return metrics.WriteTextfile(cfg.Textfile)
}
