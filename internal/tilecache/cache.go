package tilecache

import (
	"context"
	"fmt"
)

// Key addresses one tile of one source in XYZ numbering.
type Key struct {
	Source string
	Z      int
	X      int
	Y      int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", k.Source, k.Z, k.X, k.Y)
}

// Cache stores encoded tile bytes. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Put(ctx context.Context, key Key, data []byte) error
	Close() error
}

// Named is implemented by caches that report metrics under a tier name.
type Named interface {
	Name() string
}

func tierName(c Cache) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}
