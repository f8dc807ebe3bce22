package spotify

import (
	"context"
	"fmt"

	spotifyapi "github.com/zmb3/spotify/v2"

	"spotifyharvester/pkg/models"
)

// SearchPlaylists fetches one page of playlist search results. An empty
// query is mapped to a generic term so the call surfaces trending lists.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit, offset int) ([]models.Playlist, error) {
	searchQuery := query
	if searchQuery == "" {
		searchQuery = "playlist"
	}

	result, err := c.api.Search(ctx, searchQuery, spotifyapi.SearchTypePlaylist,
		spotifyapi.Limit(limit), spotifyapi.Offset(offset))
	c.pause()
	if err != nil {
		return nil, fmt.Errorf("failed to search playlists for %q: %w", searchQuery, err)
	}
	if result == nil || result.Playlists == nil {
		return nil, nil
	}

	playlists := make([]models.Playlist, 0, len(result.Playlists.Playlists))
	for _, item := range result.Playlists.Playlists {
		// The search endpoint occasionally returns null entries.
		if item.ID == "" {
			continue
		}
		playlists = append(playlists, newPlaylist(item))
	}

	return playlists, nil
}

func newPlaylist(p spotifyapi.SimplePlaylist) models.Playlist {
	playlist := models.Playlist{
		ID:            string(p.ID),
		Name:          p.Name,
		Owner:         p.Owner.DisplayName,
		OwnerID:       p.Owner.ID,
		TotalTracks:   int(p.Tracks.Total),
		Public:        p.IsPublic,
		Collaborative: p.Collaborative,
		ExternalURL:   p.ExternalURLs["spotify"],
	}
	if len(p.Images) > 0 {
		imageURL := p.Images[0].URL
		playlist.ImageURL = &imageURL
	}
	return playlist
}
