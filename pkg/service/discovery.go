package service

import (
	"context"

	"go.uber.org/zap"

	"spotifyharvester/pkg/config"
	"spotifyharvester/pkg/models"
)

// DiscoverPlaylists walks the configured search terms in order and
// accumulates distinct playlists until the configured target is reached or
// every term is exhausted. Under-fetching is a valid terminal outcome.
func (h *Harvester) DiscoverPlaylists(ctx context.Context) []models.Playlist {
	target := h.cfg.NumPlaylists
	queries := config.SearchQueries

	perQuery := target / len(queries)
	if perQuery < searchPageSize {
		perQuery = searchPageSize
	}

	playlists := make([]models.Playlist, 0, target)
	seen := make(map[string]struct{}, target)

	h.log.Info("searching for playlists",
		zap.Int("target", target), zap.Int("queries", len(queries)))

	for i, query := range queries {
		label := query
		if label == "" {
			label = "(trending)"
		}
		h.log.Info("fetching playlists",
			zap.Int("query", i+1), zap.Int("total_queries", len(queries)),
			zap.String("term", label))

		fetched := 0
		offset := 0
		for fetched < perQuery && len(playlists) < target {
			batch, err := h.client.SearchPlaylists(ctx, query, searchPageSize, offset)
			if err != nil {
				// Exhaustion and transient failure look the same from
				// here: move to the next term either way.
				h.log.Warn("playlist search failed",
					zap.String("term", label), zap.Error(err))
				break
			}
			if len(batch) == 0 {
				break
			}

			for _, p := range batch {
				if len(playlists) >= target {
					break
				}
				if _, ok := seen[p.ID]; ok {
					continue
				}
				seen[p.ID] = struct{}{}
				playlists = append(playlists, p)
				fetched++
			}

			offset += searchPageSize
		}

		h.log.Info("retrieved playlists for term",
			zap.String("term", label), zap.Int("count", fetched))

		if len(playlists) >= target {
			break
		}
	}

	if len(playlists) > target {
		playlists = playlists[:target]
	}
	h.log.Info("total playlists retrieved", zap.Int("count", len(playlists)))
	return playlists
}
