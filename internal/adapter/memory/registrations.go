package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type registrationRepo struct{ s *Store }

func sortRegistrations(regs []*domain.WorkRegistration) {
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].ID.String() < regs[j].ID.String()
		}
		return regs[i].CreatedAt.Before(regs[j].CreatedAt)
	})
}

func (r registrationRepo) CreateRegistration(ctx context.Context, reg *domain.WorkRegistration) (*domain.WorkRegistration, error) {
	var out domain.WorkRegistration
	err := r.s.run(func(t *tables) error {
		if _, ok := t.bikes[reg.BikeID]; !ok {
			return fmt.Errorf("bike: %w", domain.ErrNotFound)
		}
		if _, ok := t.repairTypes[reg.RepairTypeID]; !ok {
			return fmt.Errorf("repair type: %w", domain.ErrNotFound)
		}
		row := *reg
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		t.registrations[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r registrationRepo) GetRegistrationByID(ctx context.Context, regID uuid.UUID) (*domain.WorkRegistration, error) {
	var out domain.WorkRegistration
	err := r.s.run(func(t *tables) error {
		reg, ok := t.registrations[regID]
		if !ok {
			return fmt.Errorf("work registration: %w", domain.ErrNotFound)
		}
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r registrationRepo) ListRegistrationsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.WorkRegistration, error) {
	var out []*domain.WorkRegistration
	err := r.s.run(func(t *tables) error {
		for _, reg := range t.registrations {
			if reg.BikeID == bikeID {
				row := reg
				out = append(out, &row)
			}
		}
		return nil
	})
	sortRegistrations(out)
	return out, err
}

func (r registrationRepo) ListCompletedRegistrations(ctx context.Context, bikeIDs []uuid.UUID) ([]*domain.WorkRegistration, error) {
	wanted := make(map[uuid.UUID]struct{}, len(bikeIDs))
	for _, id := range bikeIDs {
		wanted[id] = struct{}{}
	}
	var out []*domain.WorkRegistration
	err := r.s.run(func(t *tables) error {
		for _, reg := range t.registrations {
			if !reg.Completed {
				continue
			}
			if _, ok := wanted[reg.BikeID]; !ok {
				continue
			}
			row := reg
			out = append(out, &row)
		}
		return nil
	})
	sortRegistrations(out)
	return out, err
}

func (r registrationRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.WorkRegistration, error) {
	var out []*domain.WorkRegistration
	err := r.s.run(func(t *tables) error {
		for _, reg := range t.registrations {
			if !reg.Completed || reg.CompletedAt == nil {
				continue
			}
			if reg.CompletedAt.Before(from) || !reg.CompletedAt.Before(to) {
				continue
			}
			row := reg
			out = append(out, &row)
		}
		return nil
	})
	sortRegistrations(out)
	return out, err
}

func (r registrationRepo) CompletePendingRegistration(ctx context.Context, reg *domain.WorkRegistration) (bool, error) {
	var done bool
	err := r.s.run(func(t *tables) error {
		existing, ok := t.registrations[reg.ID]
		if !ok {
			return fmt.Errorf("work registration: %w", domain.ErrNotFound)
		}
		if existing.Completed {
			return nil
		}
		existing.Completed = true
		existing.CompletedAt = reg.CompletedAt
		existing.MechanicID = reg.MechanicID
		existing.LastModifiedBy = reg.LastModifiedBy
		existing.LastModifiedAt = reg.LastModifiedAt
		t.registrations[reg.ID] = existing
		done = true
		return nil
	})
	return done, err
}

func (r registrationRepo) DeletePendingRegistration(ctx context.Context, regID uuid.UUID) (bool, error) {
	var done bool
	err := r.s.run(func(t *tables) error {
		existing, ok := t.registrations[regID]
		if !ok || existing.Completed {
			return nil
		}
		delete(t.registrations, regID)
		done = true
		return nil
	})
	return done, err
}

func (r registrationRepo) DeleteRegistrationsByBike(ctx context.Context, bikeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		for id, reg := range t.registrations {
			if reg.BikeID == bikeID {
				delete(t.registrations, id)
			}
		}
		return nil
	})
}

func (r registrationRepo) DeleteRegistrationsByRepairType(ctx context.Context, repairTypeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		for id, reg := range t.registrations {
			if reg.RepairTypeID == repairTypeID {
				delete(t.registrations, id)
			}
		}
		return nil
	})
}
