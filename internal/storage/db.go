package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"redbird/internal"
	"redbird/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS geocodes (
  addressKey TEXT PRIMARY KEY,
  address TEXT NOT NULL,
  query TEXT NOT NULL,
  lat REAL NOT NULL,
  lon REAL NOT NULL,
  displayName TEXT,
  provider TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  strategy TEXT,
  source TEXT,
  records INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  error TEXT,
  totalMs REAL NOT NULL DEFAULT 0,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_traceId ON runs(traceId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// GeocodeKey is the cache key for an address; spelling variants of the same
// street address share a key.
func GeocodeKey(address string) string {
	if key := util.NormalizeAddress(address); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(address))
}

func (d *DB) UpsertGeocodes(results []internal.GeocodeResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO geocodes (addressKey, address, query, lat, lon, displayName, provider, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(addressKey) DO UPDATE SET
  address = excluded.address,
  query = excluded.query,
  lat = excluded.lat,
  lon = excluded.lon,
  displayName = excluded.displayName,
  provider = excluded.provider,
  updatedAt = CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(GeocodeKey(r.Address), r.Address, r.Query, r.Lat, r.Lon, r.DisplayName, r.Provider); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetGeocode(address string) (*internal.GeocodeResult, error) {
	var r internal.GeocodeResult
	var displayName sql.NullString
	err := d.conn.QueryRow(`SELECT address, query, lat, lon, displayName, provider FROM geocodes WHERE addressKey = ?`, GeocodeKey(address)).
		Scan(&r.Address, &r.Query, &r.Lat, &r.Lon, &displayName, &r.Provider)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.DisplayName = displayName.String
	return &r, nil
}

func (d *DB) ListGeocodes() ([]internal.GeocodeResult, error) {
	rows, err := d.conn.Query(`SELECT address, query, lat, lon, displayName, provider FROM geocodes ORDER BY address`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.GeocodeResult, 0)
	for rows.Next() {
		var r internal.GeocodeResult
		var displayName sql.NullString
		if err := rows.Scan(&r.Address, &r.Query, &r.Lat, &r.Lon, &displayName, &r.Provider); err != nil {
			return nil, err
		}
		r.DisplayName = displayName.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(run internal.RunRow) error {
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, strategy, source, records, skipped, error, totalMs) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.TraceID, run.Strategy, run.Source, run.Records, run.Skipped, run.Error, run.TotalMs)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, traceId, COALESCE(strategy, ''), COALESCE(source, ''), records, skipped, COALESCE(error, ''), totalMs, createdAt
FROM runs
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.RunRow, 0)
	for rows.Next() {
		var r internal.RunRow
		if err := rows.Scan(&r.ID, &r.TraceID, &r.Strategy, &r.Source, &r.Records, &r.Skipped, &r.Error, &r.TotalMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
