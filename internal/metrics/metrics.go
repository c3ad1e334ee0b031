package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TilesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locatormap",
		Subsystem: "tiles",
		Name:      "fetched_total",
		Help:      "Tiles downloaded from a tile source",
	}, []string{"source"})

	TileFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locatormap",
		Subsystem: "tiles",
		Name:      "fetch_errors_total",
		Help:      "Tile downloads that failed",
	}, []string{"source"})

	TileFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "locatormap",
		Subsystem: "tiles",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a single tile download",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locatormap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Tile cache hits",
	}, []string{"tier"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "locatormap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Tile cache misses",
	}, []string{"tier"})

	PanelsRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "locatormap",
		Subsystem: "render",
		Name:      "panels_total",
		Help:      "Map panels rendered",
	})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "locatormap",
		Subsystem: "render",
		Name:      "figure_duration_seconds",
		Help:      "Duration of a full figure render including tile downloads",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.Wrapf(err, "error writing metrics to %v", path)
	}
	return nil
}
