package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/voice-service/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "voice:survey:"

// StructureCache holds the survey → sections → questions tree so that
// rendering a survey does not walk the bank on every request. A miss is
// reported as (nil, nil).
type StructureCache interface {
	GetSurvey(ctx context.Context, surveyID uint) (*models.Survey, error)
	SetSurvey(ctx context.Context, survey *models.Survey) error
	InvalidateSurvey(ctx context.Context, surveyID uint) error
}

type redisStructureCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStructureCache(client *redis.Client, ttl time.Duration) StructureCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisStructureCache{client: client, ttl: ttl}
}

func surveyKey(surveyID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, surveyID)
}

func (c *redisStructureCache) GetSurvey(ctx context.Context, surveyID uint) (*models.Survey, error) {
	data, err := c.client.Get(ctx, surveyKey(surveyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var survey models.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (c *redisStructureCache) SetSurvey(ctx context.Context, survey *models.Survey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, surveyKey(survey.ID), data, c.ttl).Err()
}

func (c *redisStructureCache) InvalidateSurvey(ctx context.Context, surveyID uint) error {
	return c.client.Del(ctx, surveyKey(surveyID)).Err()
}

type noopStructureCache struct{}

// NewNoopStructureCache is used when no Redis is configured; every lookup
// misses.
func NewNoopStructureCache() StructureCache {
	return noopStructureCache{}
}

func (noopStructureCache) GetSurvey(context.Context, uint) (*models.Survey, error) { return nil, nil }
func (noopStructureCache) SetSurvey(context.Context, *models.Survey) error         { return nil }
func (noopStructureCache) InvalidateSurvey(context.Context, uint) error            { return nil }
