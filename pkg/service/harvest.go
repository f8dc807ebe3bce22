package service

import (
	"context"

	"go.uber.org/zap"

	"spotifyharvester/pkg/models"
)

type harvestResult struct {
	index    int
	playlist models.Playlist
	tracks   []models.Track
	err      error
}

// HarvestTracks fetches every playlist's tracks through a bounded worker
// pool and merges completions as they arrive. A failed playlist contributes
// zero tracks and does not affect in-flight or pending playlists. The
// returned track order follows completion order; the id list holds each
// distinct track id once, for feature resolution.
func (h *Harvester) HarvestTracks(ctx context.Context, playlists []models.Playlist) ([]models.Track, []string) {
	h.log.Info("fetching tracks", zap.Int("playlists", len(playlists)))

	workers := h.cfg.FetchWorkers
	if workers > len(playlists) {
		workers = len(playlists)
	}

	jobs := make(chan int)
	results := make(chan harvestResult)

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				playlist := playlists[i]
				tracks, err := h.client.GetPlaylistTracks(ctx, playlist.ID, trackPageSize)
				if err == nil {
					stampPlaylistContext(tracks, playlist)
				}
				results <- harvestResult{index: i, playlist: playlist, tracks: tracks, err: err}
			}
		}()
	}

	go func() {
		for i := range playlists {
			jobs <- i
		}
		close(jobs)
	}()

	var allTracks []models.Track
	var trackIDs []string
	seen := make(map[string]struct{})

	for range playlists {
		res := <-results
		if res.err != nil {
			h.log.Error("failed to harvest playlist",
				zap.Int("position", res.index+1),
				zap.Int("playlists", len(playlists)),
				zap.Error(res.err))
			continue
		}

		allTracks = append(allTracks, res.tracks...)
		for _, t := range res.tracks {
			if _, ok := seen[t.ID]; !ok {
				seen[t.ID] = struct{}{}
				trackIDs = append(trackIDs, t.ID)
			}
		}

		h.log.Info("harvested playlist",
			zap.Int("position", res.index+1),
			zap.Int("playlists", len(playlists)),
			zap.String("name", res.playlist.Name),
			zap.Int("tracks", len(res.tracks)))
	}

	h.log.Info("total tracks fetched", zap.Int("count", len(allTracks)))
	return allTracks, trackIDs
}

// stampPlaylistContext snapshots the owning playlist's fields onto each
// track at harvest time.
func stampPlaylistContext(tracks []models.Track, p models.Playlist) {
	for i := range tracks {
		tracks[i].PlaylistID = p.ID
		tracks[i].PlaylistName = p.Name
		tracks[i].PlaylistOwner = p.Owner
		tracks[i].PlaylistFollowers = p.Followers
	}
}
