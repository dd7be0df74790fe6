package services

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/voice-service/internal/models"
)

type memoryCache struct {
	mu      sync.Mutex
	surveys map[uint]*models.Survey
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{surveys: map[uint]*models.Survey{}}
}

func (c *memoryCache) GetSurvey(ctx context.Context, surveyID uint) (*models.Survey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surveys[surveyID], nil
}

func (c *memoryCache) SetSurvey(ctx context.Context, survey *models.Survey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surveys[survey.ID] = survey
	c.sets++
	return nil
}

func (c *memoryCache) InvalidateSurvey(ctx context.Context, surveyID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.surveys, surveyID)
	return nil
}
