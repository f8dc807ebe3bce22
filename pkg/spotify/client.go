package spotify

import (
	"context"
	"fmt"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"spotifyharvester/pkg/config"
)

// api is the slice of the Spotify Web API the client depends on.
type api interface {
	Search(ctx context.Context, query string, t spotifyapi.SearchType, opts ...spotifyapi.RequestOption) (*spotifyapi.SearchResult, error)
	GetPlaylistItems(ctx context.Context, playlistID spotifyapi.ID, opts ...spotifyapi.RequestOption) (*spotifyapi.PlaylistItemPage, error)
	GetAudioFeatures(ctx context.Context, ids ...spotifyapi.ID) ([]*spotifyapi.AudioFeatures, error)
}

// Client wraps the Spotify Web API with request pacing and retry behavior
// so callers never deal with raw transient failures.
type Client struct {
	api api
	log *zap.Logger

	requestDelay time.Duration
	batchDelay   time.Duration
	batchSize    int

	sleep func(time.Duration)
}

// NewClient authenticates against the Spotify accounts service using the
// client-credentials flow and returns a paced client.
func NewClient(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Client, error) {
	creds := &clientcredentials.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	log.Info("connected to Spotify API")

	return &Client{
		api:          spotifyapi.New(httpClient),
		log:          log,
		requestDelay: cfg.DelayBetweenRequests,
		batchDelay:   cfg.DelayBetweenBatches,
		batchSize:    cfg.AudioFeaturesBatchSize,
		sleep:        time.Sleep,
	}, nil
}

// pause applies the per-request delay. It runs after every remote call,
// success or failure, to stay under the remote rate limit on all paths.
func (c *Client) pause() {
	c.sleep(c.requestDelay)
}

// batchPause applies the additional per-batch delay.
func (c *Client) batchPause() {
	c.sleep(c.batchDelay)
}
