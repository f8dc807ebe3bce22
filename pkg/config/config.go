package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// SearchQueries is the ordered list of discovery terms. The empty first
// entry surfaces trending playlists.
var SearchQueries = []string{
	"",
	"pop",
	"hip hop",
	"rock",
	"jazz",
	"electronic",
	"indie",
	"workout",
	"relax",
	"party",
	"love",
	"sleep",
	"focus",
	"discover",
	"new",
	"viral",
	"trending",
}

// Retry behavior for audio feature batches.
const (
	// MaxRetries is the number of attempts per feature batch.
	MaxRetries = 3
	// RetryBackoffFactor is the exponential backoff base: waits of
	// factor^attempt seconds between attempts.
	RetryBackoffFactor = 2
	// RecoveryBatchSize is the reduced batch size used when re-running
	// batches that exhausted their retries.
	RecoveryBatchSize = 20
)

type Config struct {
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID" required:"true"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" required:"true"`

	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/spotify_data.db"`

	DelayBetweenRequests   time.Duration `envconfig:"API_DELAY_BETWEEN_REQUESTS" default:"1.5s"`
	DelayBetweenBatches    time.Duration `envconfig:"API_DELAY_BETWEEN_BATCHES" default:"2s"`
	AudioFeaturesBatchSize int           `envconfig:"AUDIO_FEATURES_BATCH_SIZE" default:"50"`
	FetchWorkers           int           `envconfig:"PLAYLIST_FETCH_WORKERS" default:"3"`
	NumPlaylists           int           `envconfig:"DEFAULT_NUM_PLAYLISTS" default:"500"`

	SkipAudioFeatures bool `envconfig:"SKIP_AUDIO_FEATURES" default:"false"`
	SkipDatabase      bool `envconfig:"SKIP_DATABASE" default:"false"`
}

func NewConfig() (*Config, error) {
	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects invalid combinations before any remote call is made.
func (c *Config) Validate() error {
	if c.DelayBetweenRequests < 0 {
		return fmt.Errorf("API_DELAY_BETWEEN_REQUESTS cannot be negative")
	}
	if c.DelayBetweenBatches < 0 {
		return fmt.Errorf("API_DELAY_BETWEEN_BATCHES cannot be negative")
	}
	if c.AudioFeaturesBatchSize < 1 || c.AudioFeaturesBatchSize > 100 {
		return fmt.Errorf("AUDIO_FEATURES_BATCH_SIZE must be between 1 and 100, got %d", c.AudioFeaturesBatchSize)
	}
	if c.FetchWorkers < 1 {
		return fmt.Errorf("PLAYLIST_FETCH_WORKERS must be at least 1, got %d", c.FetchWorkers)
	}
	if c.NumPlaylists < 1 {
		return fmt.Errorf("DEFAULT_NUM_PLAYLISTS must be at least 1, got %d", c.NumPlaylists)
	}
	return nil
}
