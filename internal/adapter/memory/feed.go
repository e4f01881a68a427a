package memory

import (
	"context"
	"sync"

	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// Feed fans change events out to in-process subscribers keyed by table name.
// Each subscriber keeps its own event type filter.
// Slow subscribers lose events rather than block publishers.
type Feed struct {
	mu   sync.RWMutex
	subs map[string]map[chan domain.ChangeEvent][]domain.ChangeType
	buf  int
}

var _ ports.ChangeFeed = (*Feed)(nil)

func NewFeed(buf int) *Feed {
	if buf <= 0 {
		buf = 16
	}
	return &Feed{subs: map[string]map[chan domain.ChangeEvent][]domain.ChangeType{}, buf: buf}
}

func (f *Feed) Subscribe(ctx context.Context, tables []string, types []domain.ChangeType) (<-chan domain.ChangeEvent, func(), error) {
	if len(tables) == 0 {
		tables = []string{domain.TableAll}
	}
	ch := make(chan domain.ChangeEvent, f.buf)

	f.mu.Lock()
	for _, t := range tables {
		if f.subs[t] == nil {
			f.subs[t] = map[chan domain.ChangeEvent][]domain.ChangeType{}
		}
		f.subs[t][ch] = types
	}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			for _, t := range tables {
				if set, ok := f.subs[t]; ok {
					delete(set, ch)
					if len(set) == 0 {
						delete(f.subs, t)
					}
				}
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

func (f *Feed) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := map[chan domain.ChangeEvent]struct{}{}
	for _, topic := range []string{ev.Table, domain.TableAll} {
		for ch, types := range f.subs[topic] {
			if _, dup := seen[ch]; dup {
				continue
			}
			seen[ch] = struct{}{}
			if !domain.MatchesType(types, ev.Type) {
				continue
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
	return nil
}
