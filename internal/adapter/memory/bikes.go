package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type bikeRepo struct{ s *Store }

func sortBikes(bikes []*domain.Bike) {
	sort.Slice(bikes, func(i, j int) bool {
		if bikes[i].CreatedAt.Equal(bikes[j].CreatedAt) {
			return bikes[i].FrameNumber < bikes[j].FrameNumber
		}
		return bikes[i].CreatedAt.Before(bikes[j].CreatedAt)
	})
}

func (r bikeRepo) CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	var out domain.Bike
	err := r.s.run(func(t *tables) error {
		for _, b := range t.bikes {
			if b.FrameNumber == bike.FrameNumber {
				return fmt.Errorf("frame number %s: %w", bike.FrameNumber, domain.ErrConflict)
			}
		}
		row := *bike
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		row.UpdatedAt = row.CreatedAt
		t.bikes[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r bikeRepo) GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	var out domain.Bike
	err := r.s.run(func(t *tables) error {
		b, ok := t.bikes[bikeID]
		if !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r bikeRepo) GetBikeForUpdate(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	return r.GetBikeByID(ctx, bikeID)
}

func (r bikeRepo) GetBikeByFrameNumber(ctx context.Context, frameNumber string) (*domain.Bike, error) {
	var out *domain.Bike
	err := r.s.run(func(t *tables) error {
		for _, b := range t.bikes {
			if b.FrameNumber == frameNumber {
				row := b
				out = &row
				return nil
			}
		}
		return fmt.Errorf("bike: %w", domain.ErrNotFound)
	})
	return out, err
}

func (r bikeRepo) ListBikes(ctx context.Context, status *domain.WorkflowStatus) ([]*domain.Bike, error) {
	var out []*domain.Bike
	err := r.s.run(func(t *tables) error {
		for _, b := range t.bikes {
			if status != nil && b.WorkflowStatus != *status {
				continue
			}
			row := b
			out = append(out, &row)
		}
		return nil
	})
	sortBikes(out)
	return out, err
}

func (r bikeRepo) ListBikesWithTable(ctx context.Context) ([]*domain.Bike, error) {
	var out []*domain.Bike
	err := r.s.run(func(t *tables) error {
		for _, b := range t.bikes {
			if b.TableNumber == nil || *b.TableNumber == "" {
				continue
			}
			row := b
			out = append(out, &row)
		}
		return nil
	})
	sortBikes(out)
	return out, err
}

func (r bikeRepo) UpdateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	var out domain.Bike
	err := r.s.run(func(t *tables) error {
		existing, ok := t.bikes[bike.ID]
		if !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		row := *bike
		row.CreatedAt = existing.CreatedAt
		row.UpdatedAt = now()
		t.bikes[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r bikeRepo) DeleteBike(ctx context.Context, bikeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		if _, ok := t.bikes[bikeID]; !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		delete(t.bikes, bikeID)
		for id, task := range t.tasks {
			if task.BikeID != nil && *task.BikeID == bikeID {
				task.BikeID = nil
				t.tasks[id] = task
			}
		}
		return nil
	})
}
