package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

const (
	stockOverviewKey = "inventory:stock"
)

func bikeCacheKey(bikeID uuid.UUID) string {
	return fmt.Sprintf("bike:%s", bikeID.String())
}

func settingsCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("settings:%s", userID.String())
}

// notifier bundles the post-commit side effects every service performs: dropping stale
// cache entries and announcing the change on the feed. Neither failure fails the request.
type notifier struct {
	logger ports.LoggerPort
	cache  ports.CachePort
	feed   ports.ChangeFeed
}

func (n notifier) invalidate(keys ...string) {
	for _, key := range keys {
		if err := n.cache.Delete(key); err != nil {
			n.logger.Warn("Failed to invalidate cache", map[string]interface{}{
				"error": err.Error(),
				"key":   key,
			})
		}
	}
}

func (n notifier) publish(ctx context.Context, table string, typ domain.ChangeType, rowID uuid.UUID) {
	if n.feed == nil {
		return
	}
	ev := domain.ChangeEvent{Table: table, Type: typ, RowID: rowID}
	if err := n.feed.Publish(ctx, ev); err != nil {
		n.logger.Warn("Failed to publish change event", map[string]interface{}{
			"error":  err.Error(),
			"table":  table,
			"row_id": rowID,
		})
	}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
