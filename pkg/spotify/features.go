package spotify

import (
	"context"
	"math"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"spotifyharvester/pkg/config"
	"spotifyharvester/pkg/models"
)

type failedBatch struct {
	start int
	ids   []string
}

// GetAudioFeaturesBatch resolves audio features for the given track ids.
// Ids are deduplicated and blanks dropped before batching. Batches that
// exhaust their retries are re-run once in sub-batches of
// config.RecoveryBatchSize; ids that still fail are absent from the result,
// never an error.
func (c *Client) GetAudioFeaturesBatch(ctx context.Context, trackIDs []string) map[string]models.AudioFeatures {
	features := make(map[string]models.AudioFeatures)

	ids := dedupeIDs(trackIDs)
	if len(ids) == 0 {
		return features
	}

	totalBatches := (len(ids) + c.batchSize - 1) / c.batchSize
	c.log.Info("fetching audio features",
		zap.Int("tracks", len(ids)), zap.Int("batch_size", c.batchSize))

	var failed []failedBatch

	for i := 0; i < len(ids); i += c.batchSize {
		batchNum := i/c.batchSize + 1
		batch := ids[i:min(i+c.batchSize, len(ids))]

		for attempt := 1; attempt <= config.MaxRetries; attempt++ {
			err := c.fetchFeatures(ctx, batch, features)
			if err == nil {
				break
			}

			if attempt < config.MaxRetries {
				wait := backoff(attempt)
				c.log.Warn("retrying audio features batch",
					zap.Int("batch", batchNum),
					zap.Int("total_batches", totalBatches),
					zap.Int("attempt", attempt),
					zap.Duration("wait", wait),
					zap.Error(err))
				c.sleep(wait)
			} else {
				c.log.Error("audio features batch failed after retries",
					zap.Int("batch", batchNum),
					zap.Int("total_batches", totalBatches),
					zap.Error(err))
				failed = append(failed, failedBatch{start: i, ids: batch})
			}
		}

		c.batchPause()
	}

	if len(failed) > 0 {
		c.log.Info("retrying failed batches at reduced size", zap.Int("batches", len(failed)))
		c.recoverFailedBatches(ctx, failed, features)
	}

	c.log.Info("audio features fetched", zap.Int("resolved", len(features)))
	return features
}

// recoverFailedBatches re-runs failed batches in sub-batches of
// config.RecoveryBatchSize, one attempt each. Sub-batches that fail again
// are logged and skipped; their ids end up with no feature record.
func (c *Client) recoverFailedBatches(ctx context.Context, failed []failedBatch, features map[string]models.AudioFeatures) {
	for _, fb := range failed {
		for j := 0; j < len(fb.ids); j += config.RecoveryBatchSize {
			small := fb.ids[j:min(j+config.RecoveryBatchSize, len(fb.ids))]
			if err := c.fetchFeatures(ctx, small, features); err != nil {
				c.log.Error("unable to fetch audio features",
					zap.Int("batch_start", fb.start), zap.Error(err))
			}
			c.batchPause()
		}
	}
}

// fetchFeatures issues a single batch call and merges resolved records into
// out. Ids the remote reports as not found are simply skipped.
func (c *Client) fetchFeatures(ctx context.Context, batch []string, out map[string]models.AudioFeatures) error {
	ids := make([]spotifyapi.ID, len(batch))
	for i, id := range batch {
		ids[i] = spotifyapi.ID(id)
	}

	featuresList, err := c.api.GetAudioFeatures(ctx, ids...)
	c.pause()
	if err != nil {
		return err
	}

	for _, f := range featuresList {
		if f == nil {
			continue
		}
		out[string(f.ID)] = newAudioFeatures(f)
	}
	return nil
}

func newAudioFeatures(f *spotifyapi.AudioFeatures) models.AudioFeatures {
	return models.AudioFeatures{
		Danceability:     float64Ptr(f.Danceability),
		Energy:           float64Ptr(f.Energy),
		Key:              intPtr(f.Key),
		Loudness:         float64Ptr(f.Loudness),
		Mode:             intPtr(f.Mode),
		Speechiness:      float64Ptr(f.Speechiness),
		Acousticness:     float64Ptr(f.Acousticness),
		Instrumentalness: float64Ptr(f.Instrumentalness),
		Liveness:         float64Ptr(f.Liveness),
		Valence:          float64Ptr(f.Valence),
		Tempo:            float64Ptr(f.Tempo),
		TimeSignature:    intPtr(f.TimeSignature),
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(config.RetryBackoffFactor, float64(attempt))) * time.Second
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func float64Ptr(v float32) *float64 {
	f := float64(v)
	return &f
}

func intPtr(v spotifyapi.Numeric) *int {
	i := int(v)
	return &i
}
