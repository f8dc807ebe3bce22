package spotify

import (
	"context"
	"fmt"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"spotifyharvester/pkg/models"
)

// GetPlaylistTracks retrieves every track in a playlist, paging through the
// listing pageSize entries at a time until the remote signals no next page.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string, pageSize int) ([]models.Track, error) {
	var tracks []models.Track
	offset := 0

	for {
		page, err := c.api.GetPlaylistItems(ctx, spotifyapi.ID(playlistID),
			spotifyapi.Limit(pageSize), spotifyapi.Offset(offset))
		c.pause()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tracks for playlist %s: %w", playlistID, err)
		}

		for _, item := range page.Items {
			// Deleted or unavailable entries come back with a null track.
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, newTrack(item))
		}

		if page.Next == "" {
			break
		}
		offset += pageSize
	}

	c.log.Debug("retrieved playlist tracks",
		zap.String("playlist_id", playlistID), zap.Int("count", len(tracks)))
	return tracks, nil
}

func newTrack(item spotifyapi.PlaylistItem) models.Track {
	t := item.Track.Track

	artists := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		artists = append(artists, artist.Name)
	}
	var artistID string
	if len(t.Artists) > 0 {
		artistID = string(t.Artists[0].ID)
	}

	addedBy := item.AddedBy.DisplayName
	if addedBy == "" {
		addedBy = item.AddedBy.ID
	}

	track := models.Track{
		ID:              string(t.ID),
		Name:            t.Name,
		Artist:          strings.Join(artists, ", "),
		ArtistID:        artistID,
		Album:           t.Album.Name,
		AlbumID:         string(t.Album.ID),
		ReleaseDate:     t.Album.ReleaseDate,
		DurationMS:      int(t.Duration),
		DurationMinutes: models.DurationMinutes(int(t.Duration)),
		Popularity:      int(t.Popularity),
		Explicit:        t.Explicit,
		SpotifyURL:      t.ExternalURLs["spotify"],
		AddedAt:         item.AddedAt,
		AddedBy:         addedBy,
	}
	if isrc, ok := t.ExternalIDs["isrc"]; ok && isrc != "" {
		track.ISRC = &isrc
	}
	return track
}
