package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type commentRepo struct{ s *Store }

func (r commentRepo) CreateComment(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	var out domain.Comment
	err := r.s.run(func(t *tables) error {
		if _, ok := t.bikes[c.BikeID]; !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		row := *c
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		t.comments[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r commentRepo) ListCommentsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.Comment, error) {
	var out []*domain.Comment
	err := r.s.run(func(t *tables) error {
		for _, c := range t.comments {
			if c.BikeID == bikeID {
				row := c
				out = append(out, &row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r commentRepo) DeleteCommentsByBike(ctx context.Context, bikeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		for id, c := range t.comments {
			if c.BikeID == bikeID {
				delete(t.comments, id)
			}
		}
		return nil
	})
}

type callRepo struct{ s *Store }

func (r callRepo) ListCallStatuses(ctx context.Context) ([]*domain.CallStatus, error) {
	var out []*domain.CallStatus
	err := r.s.run(func(t *tables) error {
		for _, cs := range t.callStatuses {
			row := cs
			out = append(out, &row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, err
}

func (r callRepo) GetCallStatusByID(ctx context.Context, id uuid.UUID) (*domain.CallStatus, error) {
	var out domain.CallStatus
	err := r.s.run(func(t *tables) error {
		cs, ok := t.callStatuses[id]
		if !ok {
			return fmt.Errorf("call status: %w", domain.ErrNotFound)
		}
		out = cs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r callRepo) CreateCallRecord(ctx context.Context, rec *domain.CallRecord) (*domain.CallRecord, error) {
	var out domain.CallRecord
	err := r.s.run(func(t *tables) error {
		if _, ok := t.bikes[rec.BikeID]; !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		row := *rec
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CalledAt = now()
		t.calls[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r callRepo) ListCallsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.CallRecord, error) {
	var out []*domain.CallRecord
	err := r.s.run(func(t *tables) error {
		for _, c := range t.calls {
			if c.BikeID == bikeID {
				row := c
				out = append(out, &row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CalledAt.After(out[j].CalledAt) })
	return out, err
}

func (r callRepo) DeleteCallsByBike(ctx context.Context, bikeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		for id, c := range t.calls {
			if c.BikeID == bikeID {
				delete(t.calls, id)
			}
		}
		return nil
	})
}
