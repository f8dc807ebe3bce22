package spotify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	spotifyapi "github.com/zmb3/spotify/v2"
)

func simplePlaylist(id, name string) spotifyapi.SimplePlaylist {
	p := spotifyapi.SimplePlaylist{
		ID:            spotifyapi.ID(id),
		Name:          name,
		Collaborative: false,
		IsPublic:      true,
		Owner:         spotifyapi.User{ID: "owner-1", DisplayName: "Owner One"},
		ExternalURLs:  map[string]string{"spotify": "https://open.spotify.com/playlist/" + id},
		Images:        []spotifyapi.Image{{URL: "https://i.scdn.co/image/" + id}},
	}
	p.Tracks.Total = 42
	return p
}

func searchResult(playlists ...spotifyapi.SimplePlaylist) *spotifyapi.SearchResult {
	page := &spotifyapi.SimplePlaylistPage{Playlists: playlists}
	return &spotifyapi.SearchResult{Playlists: page}
}

func TestSearchPlaylistsMapsFields(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(ctx context.Context, query string, st spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error) {
			return searchResult(simplePlaylist("p1", "Morning Mix")), nil
		},
	}

	client := newTestClient(api, nil)
	playlists, err := client.SearchPlaylists(context.Background(), "morning", 50, 0)
	require.NoError(t, err)

	require.Len(t, playlists, 1)
	p := playlists[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Morning Mix", p.Name)
	assert.Equal(t, "Owner One", p.Owner)
	assert.Equal(t, "owner-1", p.OwnerID)
	assert.Equal(t, 42, p.TotalTracks)
	assert.True(t, p.Public)
	assert.False(t, p.Collaborative)
	assert.Equal(t, "https://open.spotify.com/playlist/p1", p.ExternalURL)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, "https://i.scdn.co/image/p1", *p.ImageURL)
	assert.Equal(t, 0, p.Followers, "search results carry no follower counts")
}

func TestSearchPlaylistsEmptyQueryUsesGenericTerm(t *testing.T) {
	var gotQuery string
	api := &fakeAPI{
		searchFn: func(ctx context.Context, query string, st spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error) {
			gotQuery = query
			return searchResult(), nil
		},
	}

	client := newTestClient(api, nil)
	_, err := client.SearchPlaylists(context.Background(), "", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, "playlist", gotQuery)
}

func TestSearchPlaylistsSkipsNullEntries(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(ctx context.Context, query string, st spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error) {
			return searchResult(simplePlaylist("p1", "One"), spotifyapi.SimplePlaylist{}, simplePlaylist("p2", "Two")), nil
		},
	}

	client := newTestClient(api, nil)
	playlists, err := client.SearchPlaylists(context.Background(), "pop", 50, 0)
	require.NoError(t, err)

	require.Len(t, playlists, 2)
	assert.Equal(t, "p1", playlists[0].ID)
	assert.Equal(t, "p2", playlists[1].ID)
}

func TestSearchPlaylistsReturnsError(t *testing.T) {
	api := &fakeAPI{
		searchFn: func(ctx context.Context, query string, st spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error) {
			return nil, errors.New("rate limited")
		},
	}

	client := newTestClient(api, nil)
	playlists, err := client.SearchPlaylists(context.Background(), "pop", 50, 0)
	require.Error(t, err)
	assert.Nil(t, playlists)
}

// The per-request delay applies after every call, success or failure.
func TestPacingAppliedUnconditionally(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		searchFn: func(ctx context.Context, query string, st spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error) {
			calls++
			if calls%2 == 0 {
				return nil, errors.New("transient")
			}
			return searchResult(), nil
		},
	}

	rec := &sleepRecorder{}
	client := newTestClient(api, rec)
	for i := 0; i < 10; i++ {
		_, _ = client.SearchPlaylists(context.Background(), "pop", 50, i*50)
	}

	sleeps := rec.recorded()
	require.Len(t, sleeps, 10, "one pacing delay per call, regardless of outcome")
	var total time.Duration
	for _, d := range sleeps {
		assert.Equal(t, client.requestDelay, d)
		total += d
	}
	assert.GreaterOrEqual(t, total, 1*time.Second)
}
