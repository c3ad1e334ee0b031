package tilecache

import (
	"context"
	"log/slog"

	"hstin/locatormap/internal/metrics"
)

// Chain looks tiles up tier by tier. A hit is copied into the tiers that
// missed before it; writes go to every tier.
type Chain struct {
	tiers []Cache
}

func NewChain(tiers ...Cache) *Chain {
	c := &Chain{}
	for _, t := range tiers {
		if t != nil {
			c.tiers = append(c.tiers, t)
		}
	}
	return c
}

func (c *Chain) Name() string {
	return "chain"
}

func (c *Chain) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	for i, tier := range c.tiers {
		data, ok, err := tier.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			metrics.CacheMisses.WithLabelValues(tierName(tier)).Inc()
			continue
		}

		metrics.CacheHits.WithLabelValues(tierName(tier)).Inc()
		for _, upper := range c.tiers[:i] {
			if err := upper.Put(ctx, key, data); err != nil {
				slog.Warn("error backfilling tile cache", "tier", tierName(upper), "tile", key.String(), "err", err)
			}
		}
		return data, true, nil
	}
	return nil, false, nil
}

func (c *Chain) Put(ctx context.Context, key Key, data []byte) error {
	for _, tier := range c.tiers {
		if err := tier.Put(ctx, key, data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) Close() error {
	var first error
	for _, tier := range c.tiers {
		if err := tier.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
