package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type checklistRepo struct{ s *Store }

func (r checklistRepo) CreateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	var out domain.ChecklistItem
	err := r.s.run(func(t *tables) error {
		row := *item
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		t.checklistItems[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r checklistRepo) UpdateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	var out domain.ChecklistItem
	err := r.s.run(func(t *tables) error {
		existing, ok := t.checklistItems[item.ID]
		if !ok {
			return fmt.Errorf("checklist item: %w", domain.ErrNotFound)
		}
		row := *item
		row.CreatedAt = existing.CreatedAt
		t.checklistItems[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r checklistRepo) ListChecklistItems(ctx context.Context, activeOnly bool) ([]*domain.ChecklistItem, error) {
	var out []*domain.ChecklistItem
	err := r.s.run(func(t *tables) error {
		for _, it := range t.checklistItems {
			if activeOnly && !it.Active {
				continue
			}
			row := it
			out = append(out, &row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position == out[j].Position {
			return out[i].Label < out[j].Label
		}
		return out[i].Position < out[j].Position
	})
	return out, err
}

func (r checklistRepo) ListCompletions(ctx context.Context, bikeID uuid.UUID) ([]*domain.ChecklistCompletion, error) {
	var out []*domain.ChecklistCompletion
	err := r.s.run(func(t *tables) error {
		for k, c := range t.completions {
			if k.bike == bikeID {
				row := c
				out = append(out, &row)
			}
		}
		return nil
	})
	return out, err
}

func (r checklistRepo) UpsertCompletion(ctx context.Context, c *domain.ChecklistCompletion) error {
	return r.s.run(func(t *tables) error {
		if _, ok := t.bikes[c.BikeID]; !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		if _, ok := t.checklistItems[c.ChecklistItemID]; !ok {
			return fmt.Errorf("checklist item: %w", domain.ErrNotFound)
		}
		t.completions[completionKey{bike: c.BikeID, item: c.ChecklistItemID}] = *c
		return nil
	})
}

func (r checklistRepo) DeleteCompletion(ctx context.Context, bikeID, itemID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		delete(t.completions, completionKey{bike: bikeID, item: itemID})
		return nil
	})
}

func (r checklistRepo) DeleteCompletionsByBike(ctx context.Context, bikeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		for k := range t.completions {
			if k.bike == bikeID {
				delete(t.completions, k)
			}
		}
		return nil
	})
}
