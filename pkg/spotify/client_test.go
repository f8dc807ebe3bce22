package spotify

import (
	"context"
	"errors"
	"sync"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// fakeAPI implements the api interface for tests.
type fakeAPI struct {
	searchFn   func(ctx context.Context, query string, t spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error)
	itemsFn    func(ctx context.Context, id spotifyapi.ID, opts ...spotifyapi.RequestOption) (*spotifyapi.PlaylistItemPage, error)
	featuresFn func(ctx context.Context, ids ...spotifyapi.ID) ([]*spotifyapi.AudioFeatures, error)
}

func (f *fakeAPI) Search(ctx context.Context, query string, t spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error) {
	if f.searchFn == nil {
		return nil, errors.New("search not implemented")
	}
	return f.searchFn(ctx, query, t, opts...)
}

func (f *fakeAPI) GetPlaylistItems(ctx context.Context, id spotifyapi.ID, opts ...spotifyapi.RequestOption) (*spotifyapi.PlaylistItemPage, error) {
	if f.itemsFn == nil {
		return nil, errors.New("playlist items not implemented")
	}
	return f.itemsFn(ctx, id, opts...)
}

func (f *fakeAPI) GetAudioFeatures(ctx context.Context, ids ...spotifyapi.ID) ([]*spotifyapi.AudioFeatures, error) {
	if f.featuresFn == nil {
		return nil, errors.New("audio features not implemented")
	}
	return f.featuresFn(ctx, ids...)
}

// sleepRecorder captures every delay the client applies instead of
// actually sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.sleeps))
	copy(out, r.sleeps)
	return out
}

func newTestClient(f *fakeAPI, rec *sleepRecorder) *Client {
	c := &Client{
		api:          f,
		log:          zap.NewNop(),
		requestDelay: 100 * time.Millisecond,
		batchDelay:   200 * time.Millisecond,
		batchSize:    50,
		sleep:        func(time.Duration) {},
	}
	if rec != nil {
		c.sleep = rec.sleep
	}
	return c
}

func fullTrack(id, name string, durationMS int) *spotifyapi.FullTrack {
	track := &spotifyapi.FullTrack{}
	track.ID = spotifyapi.ID(id)
	track.Name = name
	track.Duration = spotifyapi.Numeric(durationMS)
	track.Artists = []spotifyapi.SimpleArtist{{ID: "artist-1", Name: "Artist One"}}
	track.Album = spotifyapi.SimpleAlbum{ID: "album-1", Name: "Album One", ReleaseDate: "2021-06-01"}
	track.ExternalURLs = map[string]string{"spotify": "https://open.spotify.com/track/" + id}
	return track
}

func playlistItem(track *spotifyapi.FullTrack) spotifyapi.PlaylistItem {
	return spotifyapi.PlaylistItem{
		AddedAt: "2023-01-15T10:00:00Z",
		AddedBy: spotifyapi.User{ID: "adder", DisplayName: "Adder"},
		Track:   spotifyapi.PlaylistItemTrack{Track: track},
	}
}
