package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Center   CenterConfig   `mapstructure:"center"`
	Figure   FigureConfig   `mapstructure:"figure"`
	Panels   []PanelSpec    `mapstructure:"panels"`
	Output   OutputConfig   `mapstructure:"output"`
	Tiles    TilesConfig    `mapstructure:"tiles"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Features FeatureConfig  `mapstructure:"features"`
	Ticks    TicksConfig    `mapstructure:"ticks"`
	ScaleBar ScaleBarConfig `mapstructure:"scale_bar"`
	Style    StyleConfig    `mapstructure:"style"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Progress bool           `mapstructure:"progress"`
	Verbose  bool           `mapstructure:"verbose"`
}

type CenterConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

type FigureConfig struct {
	WidthIn  float64       `mapstructure:"width_in"`
	HeightIn float64       `mapstructure:"height_in"`
	DPI      float64       `mapstructure:"dpi"`
	Rows     int           `mapstructure:"rows"`
	Cols     int           `mapstructure:"cols"`
	HSpace   float64       `mapstructure:"hspace"`
	WSpace   float64       `mapstructure:"wspace"`
	Margins  MarginsConfig `mapstructure:"margins"`
}

// Margins are figure fractions measured from the bottom-left corner.
type MarginsConfig struct {
	Left   float64 `mapstructure:"left"`
	Right  float64 `mapstructure:"right"`
	Top    float64 `mapstructure:"top"`
	Bottom float64 `mapstructure:"bottom"`
}

// PanelSpec places one map panel on the figure grid.
type PanelSpec struct {
	Row        int     `mapstructure:"row"`
	Col        int     `mapstructure:"col"`
	RowSpan    int     `mapstructure:"row_span"`
	ColSpan    int     `mapstructure:"col_span"`
	ZoomRadius float64 `mapstructure:"zoom_radius"`
	Source     string  `mapstructure:"source"`
	TileZoom   int     `mapstructure:"tile_zoom"`
	HideTicks  bool    `mapstructure:"hide_ticks"`
}

type OutputConfig struct {
	Path    string `mapstructure:"path"`
	Format  string `mapstructure:"format"`
	Quality int    `mapstructure:"quality"`
}

type TilesConfig struct {
	UserAgent string                  `mapstructure:"user_agent"`
	Timeout   time.Duration           `mapstructure:"timeout"`
	Workers   int                     `mapstructure:"workers"`
	MaxTiles  int                     `mapstructure:"max_tiles"`
	APIKey    string                  `mapstructure:"api_key"`
	Sources   map[string]SourceConfig `mapstructure:"sources"`
}

type SourceConfig struct {
	URL         string   `mapstructure:"url"`
	MaxZoom     int      `mapstructure:"max_zoom"`
	Subdomains  []string `mapstructure:"subdomains"`
	Attribution string   `mapstructure:"attribution"`
}

type CacheConfig struct {
	MemoryEntries int         `mapstructure:"memory_entries"`
	MBTilesDir    string      `mapstructure:"mbtiles_dir"`
	Redis         RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type FeatureConfig struct {
	Dir   string `mapstructure:"dir"`
	Scale string `mapstructure:"scale"`
}

type TicksConfig struct {
	Decimals               int    `mapstructure:"decimals"`
	DegreeSymbol           string `mapstructure:"degree_symbol"`
	DirectionLabels        bool   `mapstructure:"direction_labels"`
	DatelineDirectionLabel bool   `mapstructure:"dateline_direction_label"`
}

type ScaleBarConfig struct {
	Factor float64 `mapstructure:"factor"`
	Units  string  `mapstructure:"units"`
}

type StyleConfig struct {
	File string `mapstructure:"file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

const (
	TileSize  = 256
	MaxLat    = 85.05112878
	EnvPrefix = "LOCATORMAP"
)

// Load reads defaults, an optional config file and LOCATORMAP_* environment
// variables. An explicit path must exist; the search path is optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config %v", path)
		}
	} else {
		v.SetConfigName("locatormap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig()
	}

	// LOCATORMAP_OUTPUT_PATH -> output.path
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("center.lat", -30.066356130832947)
	v.SetDefault("center.lon", -51.16407841641491)

	v.SetDefault("figure.width_in", 16.0)
	v.SetDefault("figure.height_in", 12.0)
	v.SetDefault("figure.dpi", 100.0)
	v.SetDefault("figure.rows", 3)
	v.SetDefault("figure.cols", 2)
	v.SetDefault("figure.hspace", 1.0)
	v.SetDefault("figure.wspace", 1.0)
	v.SetDefault("figure.margins.left", 0.05)
	v.SetDefault("figure.margins.right", 0.95)
	v.SetDefault("figure.margins.top", 0.95)
	v.SetDefault("figure.margins.bottom", 0.05)

	v.SetDefault("panels", DefaultPanels())

	v.SetDefault("output.path", "map.png")
	v.SetDefault("output.format", "")
	v.SetDefault("output.quality", 90)

	v.SetDefault("tiles.user_agent", "locatormap/1.0")
	v.SetDefault("tiles.timeout", 15*time.Second)
	v.SetDefault("tiles.workers", 8)
	v.SetDefault("tiles.max_tiles", 256)
	v.SetDefault("tiles.api_key", "")

	v.SetDefault("cache.memory_entries", 512)
	v.SetDefault("cache.mbtiles_dir", "")
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.ttl", 7*24*time.Hour)

	v.SetDefault("features.dir", "")
	v.SetDefault("features.scale", "50m")

	v.SetDefault("ticks.decimals", 1)
	v.SetDefault("ticks.degree_symbol", "")
	v.SetDefault("ticks.direction_labels", false)
	v.SetDefault("ticks.dateline_direction_label", true)

	v.SetDefault("scale_bar.factor", 100.0)
	v.SetDefault("scale_bar.units", "km")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// DefaultPanels is the locator layout: a large satellite panel spanning the
// first two rows and both columns, then two terrain insets on the right.
func DefaultPanels() []map[string]any {
	return []map[string]any{
		{"row": 0, "col": 0, "row_span": 2, "col_span": 2, "zoom_radius": 0.005, "source": "satellite", "tile_zoom": 16, "hide_ticks": true},
		{"row": 0, "col": 1, "row_span": 1, "col_span": 1, "zoom_radius": 1.0, "source": "terrain", "tile_zoom": 6},
		{"row": 1, "col": 1, "row_span": 1, "col_span": 1, "zoom_radius": 3.0, "source": "terrain", "tile_zoom": 4},
	}
}

func (c *Config) Validate() error {
	var errs []string

	if c.Center.Lat < -90 || c.Center.Lat > 90 {
		errs = append(errs, fmt.Sprintf("center.lat must be -90..90, got %v", c.Center.Lat))
	}
	if c.Center.Lon < -180 || c.Center.Lon > 180 {
		errs = append(errs, fmt.Sprintf("center.lon must be -180..180, got %v", c.Center.Lon))
	}
	if c.Figure.WidthIn <= 0 || c.Figure.HeightIn <= 0 {
		errs = append(errs, "figure.width_in and figure.height_in must be positive")
	}
	if c.Figure.DPI <= 0 {
		errs = append(errs, "figure.dpi must be positive")
	}
	if c.Figure.Rows <= 0 || c.Figure.Cols <= 0 {
		errs = append(errs, "figure.rows and figure.cols must be positive")
	}
	m := c.Figure.Margins
	if m.Left >= m.Right || m.Bottom >= m.Top {
		errs = append(errs, "figure.margins must satisfy left < right and bottom < top")
	}
	if len(c.Panels) == 0 {
		errs = append(errs, "at least one panel is required")
	}
	for i, p := range c.Panels {
		if p.RowSpan <= 0 || p.ColSpan <= 0 {
			errs = append(errs, fmt.Sprintf("panels[%d]: row_span and col_span must be positive", i))
		}
		if p.Row < 0 || p.Col < 0 || p.Row+p.RowSpan > c.Figure.Rows || p.Col+p.ColSpan > c.Figure.Cols {
			errs = append(errs, fmt.Sprintf("panels[%d]: does not fit the %dx%d grid", i, c.Figure.Rows, c.Figure.Cols))
		}
		if p.ZoomRadius <= 0 {
			errs = append(errs, fmt.Sprintf("panels[%d]: zoom_radius must be positive", i))
		}
		if p.TileZoom < 0 {
			errs = append(errs, fmt.Sprintf("panels[%d]: tile_zoom must not be negative", i))
		}
	}
	switch strings.ToLower(c.Output.Format) {
	case "", "png", "jpg", "jpeg", "webp":
	default:
		errs = append(errs, fmt.Sprintf("output.format %q is not one of png, jpeg, webp", c.Output.Format))
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		errs = append(errs, "output.quality must be 1-100")
	}
	if c.Tiles.Workers <= 0 {
		errs = append(errs, "tiles.workers must be positive")
	}
	if c.Ticks.Decimals < 0 {
		errs = append(errs, "ticks.decimals must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// FigureSize returns the figure size in pixels.
func (f FigureConfig) FigureSize() (int, int) {
	return int(f.WidthIn*f.DPI + 0.5), int(f.HeightIn*f.DPI + 0.5)
}
