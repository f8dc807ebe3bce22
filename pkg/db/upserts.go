package db

import (
	"context"
	"fmt"

	"spotifyharvester/pkg/models"
)

const upsertPlaylistSQL = `
INSERT INTO playlists (playlist_id, name, description, owner, owner_id, total_tracks,
  followers, public, collaborative, external_url, image_url, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s','now'))
ON CONFLICT(playlist_id) DO UPDATE SET
  name          = excluded.name,
  description   = excluded.description,
  owner         = excluded.owner,
  owner_id      = excluded.owner_id,
  total_tracks  = excluded.total_tracks,
  followers     = excluded.followers,
  public        = excluded.public,
  collaborative = excluded.collaborative,
  external_url  = excluded.external_url,
  image_url     = excluded.image_url,
  updated_at    = excluded.updated_at`

// UpsertPlaylist inserts or fully replaces a playlist keyed on its id.
// A re-fetch replaces the prior record, fields are never merged.
func (d *database) UpsertPlaylist(ctx context.Context, p models.Playlist) error {
	tx, err := d.begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsertPlaylistSQL,
		p.ID, p.Name, p.Description, p.Owner, p.OwnerID, p.TotalTracks,
		p.Followers, p.Public, p.Collaborative, p.ExternalURL, p.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist %s: %w", p.ID, err)
	}
	return nil
}

const upsertTrackSQL = `
INSERT INTO tracks (track_id, playlist_id, name, artist, artist_id, album, album_id,
  release_date, duration_ms, duration_minutes, popularity, explicit, isrc,
  spotify_url, added_at, added_by, playlist_name, playlist_owner, playlist_followers)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(track_id) DO UPDATE SET
  playlist_id        = excluded.playlist_id,
  name               = excluded.name,
  artist             = excluded.artist,
  artist_id          = excluded.artist_id,
  album              = excluded.album,
  album_id           = excluded.album_id,
  release_date       = excluded.release_date,
  duration_ms        = excluded.duration_ms,
  duration_minutes   = excluded.duration_minutes,
  popularity         = excluded.popularity,
  explicit           = excluded.explicit,
  isrc               = excluded.isrc,
  spotify_url        = excluded.spotify_url,
  added_at           = excluded.added_at,
  added_by           = excluded.added_by,
  playlist_name      = excluded.playlist_name,
  playlist_owner     = excluded.playlist_owner,
  playlist_followers = excluded.playlist_followers`

// UpsertTrack inserts or fully replaces a track keyed on its id.
func (d *database) UpsertTrack(ctx context.Context, t models.Track) error {
	tx, err := d.begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsertTrackSQL,
		t.ID, t.PlaylistID, t.Name, t.Artist, t.ArtistID, t.Album, t.AlbumID,
		t.ReleaseDate, t.DurationMS, t.DurationMinutes, t.Popularity, t.Explicit,
		t.ISRC, t.SpotifyURL, t.AddedAt, t.AddedBy,
		t.PlaylistName, t.PlaylistOwner, t.PlaylistFollowers)
	if err != nil {
		return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
	}
	return nil
}

const upsertFeaturesSQL = `
INSERT INTO audio_features (track_id, danceability, energy, key, loudness, mode,
  speechiness, acousticness, instrumentalness, liveness, valence, tempo, time_signature)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(track_id) DO UPDATE SET
  danceability     = excluded.danceability,
  energy           = excluded.energy,
  key              = excluded.key,
  loudness         = excluded.loudness,
  mode             = excluded.mode,
  speechiness      = excluded.speechiness,
  acousticness     = excluded.acousticness,
  instrumentalness = excluded.instrumentalness,
  liveness         = excluded.liveness,
  valence          = excluded.valence,
  tempo            = excluded.tempo,
  time_signature   = excluded.time_signature`

// UpsertAudioFeatures writes a feature row for a track. An all-null record
// still produces a row: absence of values is stored as explicit nulls.
func (d *database) UpsertAudioFeatures(ctx context.Context, trackID string, f models.AudioFeatures) error {
	tx, err := d.begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, upsertFeaturesSQL,
		trackID, f.Danceability, f.Energy, f.Key, f.Loudness, f.Mode,
		f.Speechiness, f.Acousticness, f.Instrumentalness, f.Liveness,
		f.Valence, f.Tempo, f.TimeSignature)
	if err != nil {
		return fmt.Errorf("failed to upsert audio features for %s: %w", trackID, err)
	}
	return nil
}

// RecordRun stores the provenance row for a completed harvest.
func (d *database) RecordRun(ctx context.Context, run models.HarvestRun) error {
	tx, err := d.begin(ctx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO harvest_runs (run_id, started_at, finished_at, playlists, tracks, features)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Playlists, run.Tracks, run.Features)
	if err != nil {
		return fmt.Errorf("failed to record harvest run: %w", err)
	}
	return nil
}

// GetStats reports committed row counts. Feature rows count only when
// resolved, the all-null placeholders are excluded.
func (d *database) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	if err := d.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM playlists").Scan(&stats.Playlists); err != nil {
		return nil, fmt.Errorf("failed to count playlists: %w", err)
	}
	if err := d.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tracks").Scan(&stats.Tracks); err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}
	if err := d.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audio_features WHERE danceability IS NOT NULL").Scan(&stats.AudioFeatures); err != nil {
		return nil, fmt.Errorf("failed to count audio features: %w", err)
	}

	return stats, nil
}
