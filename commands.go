package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/geo"
	"hstin/locatormap/internal/logging"
	"hstin/locatormap/internal/panel"
	"hstin/locatormap/internal/render"
	"hstin/locatormap/internal/style"
)

type globals struct {
	ctx context.Context
}

// load reads the environment file and config, then sets up logging.
// Command line flags win over the config file.
func (g *globals) load() (*config.Config, error) {
	if cli.Env != "" {
		if err := godotenv.Load(cli.Env); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "error loading %v", cli.Env)
		}
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}

	if cli.Verbose {
		cfg.Verbose = true
		cfg.Progress = true
		cfg.Log.Level = "debug"
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	return cfg, nil
}

type RenderCmd struct {
	Output string   `short:"o" help:"Output image (png, jpg or webp)." type:"path"`
	Format string   `help:"Output format, overriding the file extension."`
	Lat    *float64 `help:"Center latitude."`
	Lon    *float64 `help:"Center longitude."`
	DPI    float64  `help:"Figure resolution in dots per inch."`
}

func (c *RenderCmd) Run(g *globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	if c.Output != "" {
		cfg.Output.Path = c.Output
	}
	if c.Format != "" {
		cfg.Output.Format = c.Format
	}
	if c.Lat != nil {
		cfg.Center.Lat = *c.Lat
	}
	if c.Lon != nil {
		cfg.Center.Lon = *c.Lon
	}
	if c.DPI > 0 {
		cfg.Figure.DPI = c.DPI
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Verbose {
		slog.Debug("configuration",
			"center", fmt.Sprintf("%v,%v", cfg.Center.Lat, cfg.Center.Lon),
			"output", cfg.Output.Path,
			"panels", len(cfg.Panels),
			"workers", cfg.Tiles.Workers)
	}

	return render.Generate(g.ctx, cfg)
}

type PrefetchCmd struct{}

func (c *PrefetchCmd) Run(g *globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if cfg.Cache.MBTilesDir == "" && cfg.Cache.Redis.Addr == "" {
		slog.Warn("no persistent cache configured, prefetched tiles are discarded on exit")
	}

	_, err = render.Prefetch(g.ctx, cfg)
	return err
}

type PanelCmd struct {
	Lat    float64 `required:"" help:"Center latitude."`
	Lon    float64 `required:"" help:"Center longitude."`
	Radius float64 `required:"" help:"Zoom radius in degrees."`
	Zoom   int     `help:"Also print the tile under the center at this zoom level." default:"-1"`
}

func (c *PanelCmd) Run(g *globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	s := style.Default()
	if cfg.Style.File != "" {
		if s, err = style.Load(cfg.Style.File); err != nil {
			return err
		}
	}

	p := panel.New()
	panel.NewConfigurator(cfg, s).Configure(p, c.Lat, c.Lon, c.Radius)
	printPanel(os.Stdout, p)
	if c.Zoom >= 0 {
		x, y := geo.LatLonToTile(c.Lat, c.Lon, c.Zoom)
		fmt.Printf("tile:      %d/%d/%d\n", c.Zoom, x, y)
	}
	return nil
}

func printPanel(w io.Writer, p *panel.Panel) {
	e := p.Extent
	fmt.Fprintf(w, "extent:    %v\n", e.Bounds())
	fmt.Fprintf(w, "size:      %.1f x %.1f km\n",
		geo.Haversine(p.Center.Lat, e.West, p.Center.Lat, e.East),
		geo.Haversine(e.South, p.Center.Lon, e.North, p.Center.Lon))
	fmt.Fprintf(w, "x ticks:   %v\n", p.XAxis.Ticks)
	fmt.Fprintf(w, "x labels:  %s (%v)\n", strings.Join(p.XAxis.Labels, " "), p.XAxis.Side)
	fmt.Fprintf(w, "y ticks:   %v\n", p.YAxis.Ticks)
	fmt.Fprintf(w, "y labels:  %s (%v)\n", strings.Join(p.YAxis.Labels, " "), p.YAxis.Side)
	fmt.Fprintf(w, "grid:      %v\n", p.Grid)
	if p.ScaleBar != nil {
		fmt.Fprintf(w, "scale bar: %s\n", render.ScaleBarLabel(p.ScaleBar.Length, p.ScaleBar.Units))
	}
}
