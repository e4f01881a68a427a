package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

const channelPrefix = "changes:"

// FeedAdapter distributes change events between service instances over Redis Pub/Sub.
// Every event is published on "changes:<table>"; "*" subscribers use a pattern.
// Event types are filtered on the receiving side.
type FeedAdapter struct {
	client *redis.Client
	logger ports.LoggerPort
}

var _ ports.ChangeFeed = (*FeedAdapter)(nil)

func NewFeedAdapter(client *redis.Client, logger ports.LoggerPort) *FeedAdapter {
	return &FeedAdapter{client: client, logger: logger}
}

func ChannelFor(table string) string {
	return channelPrefix + table
}

func (f *FeedAdapter) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return f.client.Publish(ctx, ChannelFor(ev.Table), payload).Err()
}

func (f *FeedAdapter) Subscribe(ctx context.Context, tables []string, types []domain.ChangeType) (<-chan domain.ChangeEvent, func(), error) {
	var pubsub *redis.PubSub
	if len(tables) == 0 || containsAll(tables) {
		pubsub = f.client.PSubscribe(ctx, ChannelFor("*"))
	} else {
		channels := make([]string, len(tables))
		for i, t := range tables {
			channels[i] = ChannelFor(t)
		}
		pubsub = f.client.Subscribe(ctx, channels...)
	}
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to change feed: %w", err)
	}

	out := make(chan domain.ChangeEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					f.logger.Warn("Dropping malformed change event", map[string]interface{}{
						"channel": msg.Channel,
						"error":   err.Error(),
					})
					continue
				}
				if !domain.MatchesType(types, ev.Type) {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	cancel := func() {
		select {
		case <-done:
		default:
			close(done)
			pubsub.Close()
		}
	}
	return out, cancel, nil
}

func containsAll(tables []string) bool {
	for _, t := range tables {
		if t == domain.TableAll {
			return true
		}
	}
	return false
}
