package tiles

import (
	"context"
	"image"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/geo"
	"hstin/locatormap/internal/metrics"
	"hstin/locatormap/internal/tilecache"
)

const maxTileBytes = 8 << 20

type Fetcher struct {
	client    *http.Client
	cache     tilecache.Cache
	registry  Registry
	userAgent string
	apiKey    string
	workers   int
	maxTiles  int
	progress  bool
	rr        atomic.Uint64
}

func NewFetcher(cfg config.TilesConfig, registry Registry, cache tilecache.Cache, progress bool) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		MaxConnsPerHost:       32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cache == nil {
		cache = tilecache.NewChain()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cache:     cache,
		registry:  registry,
		userAgent: cfg.UserAgent,
		apiKey:    cfg.APIKey,
		workers:   workers,
		maxTiles:  cfg.MaxTiles,
		progress:  progress,
	}
}

func (f *Fetcher) Registry() Registry {
	return f.registry
}

// Tile returns the encoded tile from the cache or the network.
func (f *Fetcher) Tile(ctx context.Context, src Source, t geo.Tile) ([]byte, error) {
	key := tilecache.Key{Source: src.Name, Z: t.Z, X: t.X, Y: t.Y}

	data, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return data, nil
	}

	start := time.Now()
	data, err = f.download(ctx, src, t)
	metrics.TileFetchDuration.WithLabelValues(src.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TileFetchErrors.WithLabelValues(src.Name).Inc()
		return nil, err
	}
	metrics.TilesFetched.WithLabelValues(src.Name).Inc()

	if err := f.cache.Put(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, src Source, t geo.Tile) ([]byte, error) {
	tileURL := src.TileURL(t, f.apiKey, int(f.rr.Add(1)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request for %v", src.Name)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching %v tile %v/%v/%v", src.Name, t.Z, t.X, t.Y)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("error fetching %v tile %v/%v/%v: %v", src.Name, t.Z, t.X, t.Y, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %v tile %v/%v/%v", src.Name, t.Z, t.X, t.Y)
	}
	return data, nil
}

type tileResult struct {
	tile geo.Tile
	img  image.Image
	err  error
}

// Tiles fetches and decodes tiles with a pool of workers. The first failure
// cancels the remaining work and is returned.
func (f *Fetcher) Tiles(ctx context.Context, src Source, tiles []geo.Tile) (map[geo.Tile]image.Image, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	jobQueue := make(chan geo.Tile)
	resultQueue := make(chan tileResult, len(tiles))

	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobQueue {
				data, err := f.Tile(ctx, src, t)
				if err != nil {
					resultQueue <- tileResult{tile: t, err: err}
					continue
				}
				img, err := Decode(data)
				resultQueue <- tileResult{tile: t, img: img, err: err}
			}
		}()
	}

	go func() {
		defer close(jobQueue)
		for _, t := range tiles {
			select {
			case jobQueue <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultQueue)
	}()

	var bar *progressbar.ProgressBar
	if f.progress && len(tiles) > 0 {
		bar = newProgressBar(len(tiles), src.Name)
	}

	result := make(map[geo.Tile]image.Image, len(tiles))
	var firstErr error
	for r := range resultQueue {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		result[r.tile] = r.img
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(result) < len(tiles) {
		return nil, err
	}
	return result, nil
}

// Range resolves the source and the tiles needed to cover extent at zoom.
func (f *Fetcher) Range(sourceName string, zoom int, extent geo.Extent) (Source, geo.TileRange, error) {
	src, err := f.registry.Get(sourceName)
	if err != nil {
		return Source{}, geo.TileRange{}, err
	}
	if !extent.Valid() {
		return Source{}, geo.TileRange{}, errors.Errorf("invalid extent %v", extent)
	}
	if zoom < 0 || zoom > src.MaxZoom {
		return Source{}, geo.TileRange{}, errors.Errorf("zoom %v is outside 0-%v for %v", zoom, src.MaxZoom, src.Name)
	}

	r := geo.TilesCovering(extent, zoom)
	if f.maxTiles > 0 && r.Count() > f.maxTiles {
		return Source{}, geo.TileRange{}, errors.Errorf("extent %v needs %v %v tiles at zoom %v, more than the limit of %v",
			extent, r.Count(), src.Name, zoom, f.maxTiles)
	}
	return src, r, nil
}

// Prefetch downloads every tile covering extent into the cache.
func (f *Fetcher) Prefetch(ctx context.Context, sourceName string, zoom int, extent geo.Extent) (int, error) {
	src, r, err := f.Range(sourceName, zoom, extent)
	if err != nil {
		return 0, err
	}

	tiles, err := f.Tiles(ctx, src, r.Tiles())
	if err != nil {
		return 0, err
	}
	slog.Debug("prefetched tiles", "source", src.Name, "zoom", zoom, "tiles", len(tiles))
	return len(tiles), nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionThrottle(time.Second),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "#", SaucerPadding: " ", BarStart: "|", BarEnd: "|"}),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
