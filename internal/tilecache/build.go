package tilecache

import (
	"context"

	"hstin/locatormap/internal/config"
	"hstin/locatormap/internal/db"
)

// New assembles the configured tiers: memory, then MBTiles when a directory
// is set, then redis when an address is set.
func New(ctx context.Context, cfg config.CacheConfig, metadata func(source string) db.Metadata) (*Chain, error) {
	var tiers []Cache

	if cfg.MemoryEntries > 0 {
		tiers = append(tiers, NewMemory(cfg.MemoryEntries))
	}
	if cfg.MBTilesDir != "" {
		tiers = append(tiers, NewMBTiles(cfg.MBTilesDir, metadata))
	}
	if cfg.Redis.Addr != "" {
		r := NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, err
		}
		tiers = append(tiers, r)
	}

	return NewChain(tiers...), nil
}
