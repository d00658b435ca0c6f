package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/apranova/bootcamp-api/internal/dto"
)

// TrackViewCache is a cache-aside store for per-student derived track views.
// Any ledger write (step toggle, submission, review decision) invalidates the
// student's entry so reads never serve stale unlock state past the TTL.
type TrackViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewTrackViewCache builds the cache wrapper. A nil client disables caching.
func NewTrackViewCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *TrackViewCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TrackViewCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "track_view_cache").Logger(),
	}
}

func trackViewKey(studentID uint) string {
	return fmt.Sprintf("tracks:student:%d", studentID)
}

// Get returns the cached track view for the student, if present.
func (c *TrackViewCache) Get(ctx context.Context, studentID uint) ([]dto.TrackResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, trackViewKey(studentID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read track view cache")
		}
		return nil, false
	}

	var tracks []dto.TrackResponse
	if err := json.Unmarshal([]byte(cached), &tracks); err != nil {
		return nil, false
	}

	return tracks, true
}

// Set stores the derived track view for the student.
func (c *TrackViewCache) Set(ctx context.Context, studentID uint, tracks []dto.TrackResponse) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(tracks)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, trackViewKey(studentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store track view cache")
	}
}

// Invalidate drops the student's cached view.
func (c *TrackViewCache) Invalidate(ctx context.Context, studentID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, trackViewKey(studentID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate track view cache")
	}
}
