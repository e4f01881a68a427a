package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// SettingsService keeps per-user display preferences. They are cosmetic, so they live in
// the cache and fall back to the defaults when evicted.
type SettingsService struct {
	logger ports.LoggerPort
	cache  ports.CachePort
	notifier
}

func NewSettingsService(logger ports.LoggerPort, cache ports.CachePort, feed ports.ChangeFeed) *SettingsService {
	return &SettingsService{
		logger:   logger,
		cache:    cache,
		notifier: notifier{logger: logger, cache: cache, feed: feed},
	}
}

func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (domain.UserSettings, error) {
	data, err := s.cache.Get(settingsCacheKey(userID))
	if errors.Is(err, ports.ErrCacheMiss) {
		return domain.DefaultUserSettings(), nil
	}
	if err != nil {
		s.logger.Warn("Failed to read settings", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return domain.DefaultUserSettings(), nil
	}
	var settings domain.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.DefaultUserSettings(), nil
	}
	return settings, nil
}

// Set stores the settings and announces the change so open views re-read them.
func (s *SettingsService) Set(ctx context.Context, userID uuid.UUID, settings domain.UserSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := s.cache.Set(settingsCacheKey(userID), data, 0); err != nil {
		s.logger.Error("Failed to store settings", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return err
	}
	s.publish(ctx, domain.TableSettings, domain.ChangeUpdate, userID)
	return nil
}
