package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"spotifyharvester/pkg/config"
	"spotifyharvester/pkg/models"
)

const (
	searchPageSize = 50
	trackPageSize  = 100
	commitEvery    = 1000
)

// SpotifyClient is the remote-API surface the harvester depends on.
type SpotifyClient interface {
	SearchPlaylists(ctx context.Context, query string, limit, offset int) ([]models.Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string, pageSize int) ([]models.Track, error)
	GetAudioFeaturesBatch(ctx context.Context, trackIDs []string) map[string]models.AudioFeatures
}

// Database is the persistence sink the harvester writes to.
type Database interface {
	UpsertPlaylist(ctx context.Context, p models.Playlist) error
	UpsertTrack(ctx context.Context, t models.Track) error
	UpsertAudioFeatures(ctx context.Context, trackID string, f models.AudioFeatures) error
	RecordRun(ctx context.Context, run models.HarvestRun) error
	Commit() error
	GetStats(ctx context.Context) (*models.Stats, error)
}

// Harvester runs the full pipeline: playlist discovery, concurrent track
// harvesting, audio feature resolution and persistence.
type Harvester struct {
	client SpotifyClient
	db     Database
	cfg    *config.Config
	log    *zap.Logger
}

func NewHarvester(client SpotifyClient, db Database, cfg *config.Config, log *zap.Logger) *Harvester {
	return &Harvester{
		client: client,
		db:     db,
		cfg:    cfg,
		log:    log,
	}
}

// Run executes the pipeline end to end and returns the harvested dataset.
// Fetch-phase failures degrade (logged, skipped); persistence failures
// abort the run.
func (h *Harvester) Run(ctx context.Context) (*models.Dataset, error) {
	started := time.Now()

	playlists := h.DiscoverPlaylists(ctx)
	if len(playlists) == 0 {
		h.log.Warn("no playlists discovered, nothing to harvest")
		return &models.Dataset{}, nil
	}

	tracks, trackIDs := h.HarvestTracks(ctx, playlists)

	features := map[string]models.AudioFeatures{}
	if h.cfg.SkipAudioFeatures {
		h.log.Info("skipping audio features (disabled in config)")
	} else if len(trackIDs) > 0 {
		features = h.client.GetAudioFeaturesBatch(ctx, trackIDs)
	}
	attachFeatures(tracks, features)

	dataset := &models.Dataset{Playlists: playlists, Tracks: tracks}

	if h.cfg.SkipDatabase {
		h.log.Info("skipping database save (disabled in config)")
		return dataset, nil
	}

	if err := h.save(ctx, dataset, features, started); err != nil {
		return nil, err
	}
	return dataset, nil
}

// attachFeatures inlines a feature record into every track. Tracks missing
// from the resolved map get the explicit all-null record so no track ends
// up without feature fields.
func attachFeatures(tracks []models.Track, features map[string]models.AudioFeatures) {
	for i := range tracks {
		if f, ok := features[tracks[i].ID]; ok {
			tracks[i].Features = f
		} else {
			tracks[i].Features = models.AudioFeatures{}
		}
	}
}

// save writes the dataset sequentially: playlists, then tracks with a
// commit every commitEvery inserts, then one feature row per distinct
// track (resolved or all-null), then the run record.
func (h *Harvester) save(ctx context.Context, dataset *models.Dataset, features map[string]models.AudioFeatures, started time.Time) error {
	h.log.Info("saving data to database")

	for _, p := range dataset.Playlists {
		if err := h.db.UpsertPlaylist(ctx, p); err != nil {
			return fmt.Errorf("failed to save playlist %s: %w", p.ID, err)
		}
	}
	if err := h.db.Commit(); err != nil {
		return err
	}
	h.log.Info("playlists saved", zap.Int("count", len(dataset.Playlists)))

	for i, t := range dataset.Tracks {
		if err := h.db.UpsertTrack(ctx, t); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}
		if (i+1)%commitEvery == 0 {
			if err := h.db.Commit(); err != nil {
				return err
			}
		}
	}
	if err := h.db.Commit(); err != nil {
		return err
	}
	h.log.Info("tracks saved", zap.Int("count", len(dataset.Tracks)))

	written := make(map[string]struct{}, len(dataset.Tracks))
	for _, t := range dataset.Tracks {
		if _, ok := written[t.ID]; ok {
			continue
		}
		written[t.ID] = struct{}{}

		f, ok := features[t.ID]
		if !ok {
			f = models.AudioFeatures{}
		}
		if err := h.db.UpsertAudioFeatures(ctx, t.ID, f); err != nil {
			return fmt.Errorf("failed to save audio features for %s: %w", t.ID, err)
		}
	}
	if err := h.db.Commit(); err != nil {
		return err
	}
	h.log.Info("audio features saved", zap.Int("count", len(written)))

	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}
	run := models.HarvestRun{
		ID:         runID.String(),
		StartedAt:  started.Unix(),
		FinishedAt: time.Now().Unix(),
		Playlists:  len(dataset.Playlists),
		Tracks:     len(dataset.Tracks),
		Features:   len(features),
	}
	if err := h.db.RecordRun(ctx, run); err != nil {
		return err
	}
	if err := h.db.Commit(); err != nil {
		return err
	}

	stats, err := h.db.GetStats(ctx)
	if err != nil {
		return err
	}
	h.log.Info("database statistics",
		zap.Int64("playlists", stats.Playlists),
		zap.Int64("tracks", stats.Tracks),
		zap.Int64("audio_features", stats.AudioFeatures))
	return nil
}
