package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Metadata is the MBTiles metadata table content for one tile source.
type Metadata struct {
	Name        string
	Format      string
	Description string
	Attribution string
	MinZoom     int
	MaxZoom     int
}

// InitDB opens an MBTiles file, creating the schema when missing. Existing
// tiles are kept.
func InitDB(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "error creating %v", dir)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v", dbPath)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tiles (
			zoom_level INTEGER,
			tile_column INTEGER,
			tile_row INTEGER,
			tile_data BLOB,
			PRIMARY KEY (zoom_level, tile_column, tile_row)
		);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT,
			PRIMARY KEY (name)
		);
		CREATE INDEX IF NOT EXISTS idx_tiles on tiles (zoom_level, tile_column, tile_row);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "error creating schema in %v", dbPath)
	}

	return db, nil
}

func UpdateMetadata(db *sql.DB, m Metadata) error {
	values := [][2]string{
		{"name", m.Name},
		{"type", "baselayer"},
		{"version", "1.1"},
		{"description", m.Description},
		{"attribution", m.Attribution},
		{"format", m.Format},
		{"minzoom", strconv.Itoa(m.MinZoom)},
		{"maxzoom", strconv.Itoa(m.MaxZoom)},
	}

	for _, kv := range values {
		_, err := db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)", kv[0], kv[1])
		if err != nil {
			return errors.Wrapf(err, "error writing metadata %v", kv[0])
		}
	}
	return nil
}

func GetMetadata(db *sql.DB, name string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM metadata WHERE name = ?", name).Scan(&value)
	if err != nil {
		return "", errors.Wrapf(err, "error reading metadata %v", name)
	}
	return value, nil
}

// tmsRow flips an XYZ row into the MBTiles (TMS) row numbering.
func tmsRow(z, y int) int {
	return (1 << z) - 1 - y
}

// GetTile reads a tile addressed in XYZ numbering.
func GetTile(db *sql.DB, z, x, y int) ([]byte, bool, error) {
	var data []byte
	err := db.QueryRow(
		"SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?",
		z, x, tmsRow(z, y),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "error reading tile %v/%v/%v", z, x, y)
	}
	return data, true, nil
}

func PutTile(db *sql.DB, z, x, y int, data []byte) error {
	_, err := db.Exec(
		"INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)",
		z, x, tmsRow(z, y), data,
	)
	if err != nil {
		return errors.Wrapf(err, "error writing tile %v/%v/%v", z, x, y)
	}
	return nil
}

func CountTiles(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "error counting tiles")
	}
	return n, nil
}
