package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type profileRepo struct{ s *Store }

func (r profileRepo) CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	var out domain.Profile
	err := r.s.run(func(t *tables) error {
		for _, existing := range t.profiles {
			if strings.EqualFold(existing.Email, p.Email) {
				return fmt.Errorf("profile %s: %w", p.Email, domain.ErrConflict)
			}
		}
		row := *p
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		row.UpdatedAt = row.CreatedAt
		t.profiles[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r profileRepo) GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var out domain.Profile
	err := r.s.run(func(t *tables) error {
		p, ok := t.profiles[id]
		if !ok {
			return fmt.Errorf("profile: %w", domain.ErrNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r profileRepo) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var out *domain.Profile
	err := r.s.run(func(t *tables) error {
		for _, p := range t.profiles {
			if strings.EqualFold(p.Email, email) {
				row := p
				out = &row
				return nil
			}
		}
		return fmt.Errorf("profile: %w", domain.ErrNotFound)
	})
	return out, err
}

func (r profileRepo) ListProfiles(ctx context.Context, activeOnly bool) ([]*domain.Profile, error) {
	var out []*domain.Profile
	err := r.s.run(func(t *tables) error {
		for _, p := range t.profiles {
			if activeOnly && !p.Active {
				continue
			}
			row := p
			out = append(out, &row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, err
}

func (r profileRepo) UpdateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	var out domain.Profile
	err := r.s.run(func(t *tables) error {
		existing, ok := t.profiles[p.ID]
		if !ok {
			return fmt.Errorf("profile: %w", domain.ErrNotFound)
		}
		row := *p
		row.CreatedAt = existing.CreatedAt
		row.UpdatedAt = now()
		t.profiles[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type availabilityRepo struct{ s *Store }

func sortAvailability(list []*domain.MechanicAvailability) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].StartTime < list[j].StartTime
		}
		return list[i].Date.Before(list[j].Date)
	})
}

func (r availabilityRepo) CreateAvailability(ctx context.Context, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error) {
	var out domain.MechanicAvailability
	err := r.s.run(func(t *tables) error {
		row := *a
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		t.availability[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r availabilityRepo) GetAvailabilityByID(ctx context.Context, id uuid.UUID) (*domain.MechanicAvailability, error) {
	var out domain.MechanicAvailability
	err := r.s.run(func(t *tables) error {
		a, ok := t.availability[id]
		if !ok {
			return fmt.Errorf("availability: %w", domain.ErrNotFound)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r availabilityRepo) listWhere(keep func(domain.MechanicAvailability) bool) ([]*domain.MechanicAvailability, error) {
	var out []*domain.MechanicAvailability
	err := r.s.run(func(t *tables) error {
		for _, a := range t.availability {
			if keep(a) {
				row := a
				out = append(out, &row)
			}
		}
		return nil
	})
	sortAvailability(out)
	return out, err
}

func (r availabilityRepo) ListAvailabilityByMechanic(ctx context.Context, mechanicID uuid.UUID) ([]*domain.MechanicAvailability, error) {
	return r.listWhere(func(a domain.MechanicAvailability) bool { return a.MechanicID == mechanicID })
}

func (r availabilityRepo) ListAvailabilityByStatus(ctx context.Context, status domain.AvailabilityStatus) ([]*domain.MechanicAvailability, error) {
	return r.listWhere(func(a domain.MechanicAvailability) bool { return a.Status == status })
}

func (r availabilityRepo) UpdateAvailability(ctx context.Context, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error) {
	var out domain.MechanicAvailability
	err := r.s.run(func(t *tables) error {
		existing, ok := t.availability[a.ID]
		if !ok {
			return fmt.Errorf("availability: %w", domain.ErrNotFound)
		}
		row := *a
		row.CreatedAt = existing.CreatedAt
		t.availability[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
