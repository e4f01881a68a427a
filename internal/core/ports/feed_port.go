package ports

import (
	"context"

	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

// ChangeFeed carries row-level change events to subscribed views.
type ChangeFeed interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
	// Subscribe returns a channel of events for tables ("*" for all) narrowed to the
	// given event types (empty or "*" for all), and a cancel func that must be called
	// to release the subscription.
	Subscribe(ctx context.Context, tables []string, types []domain.ChangeType) (<-chan domain.ChangeEvent, func(), error)
}
