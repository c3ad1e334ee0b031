package tilecache

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"sync"

	"hstin/locatormap/internal/db"
)

// MBTiles keeps one sqlite MBTiles file per tile source under a directory.
type MBTiles struct {
	dir    string
	format func(source string) db.Metadata

	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// NewMBTiles opens files lazily. metadata, when not nil, supplies the
// metadata written into a newly opened file.
func NewMBTiles(dir string, metadata func(source string) db.Metadata) *MBTiles {
	return &MBTiles{
		dir:    dir,
		format: metadata,
		dbs:    make(map[string]*sql.DB),
	}
}

func (m *MBTiles) Name() string {
	return "mbtiles"
}

func (m *MBTiles) Path(source string) string {
	return filepath.Join(m.dir, source+".mbtiles")
}

func (m *MBTiles) open(source string) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if database, ok := m.dbs[source]; ok {
		return database, nil
	}

	database, err := db.InitDB(m.Path(source))
	if err != nil {
		return nil, err
	}

	if m.format != nil {
		meta := m.format(source)
		if existing, err := db.GetMetadata(database, "format"); err == nil && existing != meta.Format {
			slog.Warn("tile cache format changed", "path", m.Path(source), "was", existing, "now", meta.Format)
		}
		if err := db.UpdateMetadata(database, meta); err != nil {
			database.Close()
			return nil, err
		}
	}

	if n, err := db.CountTiles(database); err == nil {
		slog.Debug("opened tile cache", "path", m.Path(source), "tiles", n)
	}

	m.dbs[source] = database
	return database, nil
}

func (m *MBTiles) Get(_ context.Context, key Key) ([]byte, bool, error) {
	database, err := m.open(key.Source)
	if err != nil {
		return nil, false, err
	}
	return db.GetTile(database, key.Z, key.X, key.Y)
}

func (m *MBTiles) Put(_ context.Context, key Key, data []byte) error {
	database, err := m.open(key.Source)
	if err != nil {
		return err
	}
	return db.PutTile(database, key.Z, key.X, key.Y, data)
}

func (m *MBTiles) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var first error
	for source, database := range m.dbs {
		if err := database.Close(); err != nil && first == nil {
			first = err
		}
		delete(m.dbs, source)
	}
	return first
}
