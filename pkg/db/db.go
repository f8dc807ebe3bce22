package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"spotifyharvester/pkg/models"
)

// Database is the persistence sink for harvested data. All upserts are
// idempotent, keyed on the entity's identity. Writes accumulate in an open
// transaction until Commit.
type Database interface {
	UpsertPlaylist(ctx context.Context, p models.Playlist) error
	UpsertTrack(ctx context.Context, t models.Track) error
	UpsertAudioFeatures(ctx context.Context, trackID string, f models.AudioFeatures) error
	RecordRun(ctx context.Context, run models.HarvestRun) error
	Commit() error
	GetStats(ctx context.Context) (*models.Stats, error)
	Close() error
}

type database struct {
	conn *sql.DB
	log  *zap.Logger

	// tx is the write transaction in progress, opened lazily by the first
	// write after a Commit. The save phase is single-writer.
	tx *sql.Tx
}

func NewDatabase(ctx context.Context, log *zap.Logger, path string) (Database, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &database{conn: conn, log: log}
	if err := d.createTables(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("connected to database", zap.String("path", path))
	return d, nil
}

func (d *database) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS playlists (
	  playlist_id   TEXT PRIMARY KEY,
	  name          TEXT NOT NULL,
	  description   TEXT,
	  owner         TEXT NOT NULL,
	  owner_id      TEXT,
	  total_tracks  INTEGER,
	  followers     INTEGER DEFAULT 0,
	  public        BOOLEAN DEFAULT 1,
	  collaborative BOOLEAN DEFAULT 0,
	  external_url  TEXT,
	  image_url     TEXT,
	  created_at    INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	  updated_at    INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);

	CREATE TABLE IF NOT EXISTS tracks (
	  track_id           TEXT PRIMARY KEY,
	  playlist_id        TEXT NOT NULL REFERENCES playlists(playlist_id),
	  name               TEXT NOT NULL,
	  artist             TEXT NOT NULL,
	  artist_id          TEXT,
	  album              TEXT,
	  album_id           TEXT,
	  release_date       TEXT,
	  duration_ms        INTEGER,
	  duration_minutes   REAL,
	  popularity         INTEGER,
	  explicit           BOOLEAN,
	  isrc               TEXT,
	  spotify_url        TEXT,
	  added_at           TEXT,
	  added_by           TEXT,
	  playlist_name      TEXT,
	  playlist_owner     TEXT,
	  playlist_followers INTEGER,
	  created_at         INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_playlist_id ON tracks(playlist_id);

	CREATE TABLE IF NOT EXISTS audio_features (
	  track_id         TEXT PRIMARY KEY REFERENCES tracks(track_id),
	  danceability     REAL,
	  energy           REAL,
	  key              INTEGER,
	  loudness         REAL,
	  mode             INTEGER,
	  speechiness      REAL,
	  acousticness     REAL,
	  instrumentalness REAL,
	  liveness         REAL,
	  valence          REAL,
	  tempo            REAL,
	  time_signature   INTEGER,
	  created_at       INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);

	CREATE TABLE IF NOT EXISTS harvest_runs (
	  run_id      TEXT PRIMARY KEY,
	  started_at  INTEGER NOT NULL,
	  finished_at INTEGER NOT NULL,
	  playlists   INTEGER NOT NULL,
	  tracks      INTEGER NOT NULL,
	  features    INTEGER NOT NULL
	);`

	if _, err := d.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// begin returns the open write transaction, starting one if needed.
func (d *database) begin(ctx context.Context) (*sql.Tx, error) {
	if d.tx != nil {
		return d.tx, nil
	}
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	d.tx = tx
	return tx, nil
}

// Commit flushes pending writes. A Commit with no open transaction is a
// no-op.
func (d *database) Commit() error {
	if d.tx == nil {
		return nil
	}
	err := d.tx.Commit()
	d.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (d *database) Close() error {
	if d.tx != nil {
		_ = d.tx.Rollback()
		d.tx = nil
	}
	if err := d.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.log.Info("database connection closed")
	return nil
}
