package spotify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	spotifyapi "github.com/zmb3/spotify/v2"
)

func TestGetPlaylistTracksPaginationTerminates(t *testing.T) {
	pages := []*spotifyapi.PlaylistItemPage{
		{Items: []spotifyapi.PlaylistItem{playlistItem(fullTrack("t1", "One", 180000)), playlistItem(fullTrack("t2", "Two", 200000))}},
		{Items: []spotifyapi.PlaylistItem{playlistItem(fullTrack("t3", "Three", 210000))}},
		{Items: []spotifyapi.PlaylistItem{playlistItem(fullTrack("t4", "Four", 190000))}},
	}
	// First two pages advertise a next page, third does not.
	pages[0].Next = "https://api.spotify.com/v1/playlists/p1/tracks?offset=100"
	pages[1].Next = "https://api.spotify.com/v1/playlists/p1/tracks?offset=200"

	calls := 0
	api := &fakeAPI{
		itemsFn: func(ctx context.Context, id spotifyapi.ID, opts ...spotifyapi.RequestOption) (*spotifyapi.PlaylistItemPage, error) {
			require.Less(t, calls, len(pages), "fetched past the last page")
			page := pages[calls]
			calls++
			return page, nil
		},
	}

	client := newTestClient(api, nil)
	tracks, err := client.GetPlaylistTracks(context.Background(), "p1", 100)
	require.NoError(t, err)

	assert.Equal(t, 3, calls, "should stop after the page without a next link")
	require.Len(t, tracks, 4)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, "t4", tracks[3].ID)
}

func TestGetPlaylistTracksSkipsNullTracks(t *testing.T) {
	page := &spotifyapi.PlaylistItemPage{
		Items: []spotifyapi.PlaylistItem{
			playlistItem(fullTrack("t1", "One", 180000)),
			{Track: spotifyapi.PlaylistItemTrack{Track: nil}}, // deleted entry
			playlistItem(fullTrack("t2", "Two", 200000)),
		},
	}

	api := &fakeAPI{
		itemsFn: func(ctx context.Context, id spotifyapi.ID, opts ...spotifyapi.RequestOption) (*spotifyapi.PlaylistItemPage, error) {
			return page, nil
		},
	}

	client := newTestClient(api, nil)
	tracks, err := client.GetPlaylistTracks(context.Background(), "p1", 100)
	require.NoError(t, err)

	require.Len(t, tracks, 2)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, "t2", tracks[1].ID)
}

func TestGetPlaylistTracksPropagatesError(t *testing.T) {
	api := &fakeAPI{
		itemsFn: func(ctx context.Context, id spotifyapi.ID, opts ...spotifyapi.RequestOption) (*spotifyapi.PlaylistItemPage, error) {
			return nil, errors.New("rate limited")
		},
	}

	client := newTestClient(api, nil)
	tracks, err := client.GetPlaylistTracks(context.Background(), "p1", 100)
	require.Error(t, err)
	assert.Nil(t, tracks)
}

func TestNewTrackFields(t *testing.T) {
	ft := fullTrack("t1", "One", 222900)
	ft.Artists = []spotifyapi.SimpleArtist{
		{ID: "a1", Name: "First"},
		{ID: "a2", Name: "Second"},
	}
	ft.Explicit = true
	ft.Popularity = 73
	ft.ExternalIDs = map[string]string{"isrc": "USUM71900001"}

	track := newTrack(playlistItem(ft))

	assert.Equal(t, "t1", track.ID)
	assert.Equal(t, "First, Second", track.Artist)
	assert.Equal(t, "a1", track.ArtistID)
	assert.Equal(t, "Album One", track.Album)
	assert.Equal(t, "2021-06-01", track.ReleaseDate)
	assert.Equal(t, 222900, track.DurationMS)
	assert.Equal(t, 3.71, track.DurationMinutes)
	assert.Equal(t, 73, track.Popularity)
	assert.True(t, track.Explicit)
	require.NotNil(t, track.ISRC)
	assert.Equal(t, "USUM71900001", *track.ISRC)
	assert.Equal(t, "Adder", track.AddedBy)
}

func TestNewTrackAddedByFallsBackToID(t *testing.T) {
	item := playlistItem(fullTrack("t1", "One", 180000))
	item.AddedBy = spotifyapi.User{ID: "user123"}

	track := newTrack(item)
	assert.Equal(t, "user123", track.AddedBy)
	assert.Nil(t, track.ISRC)
}
