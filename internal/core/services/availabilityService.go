package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

type AvailabilityService struct {
	store    ports.Store
	logger   ports.LoggerPort
	validate *validator.Validate
}

func NewAvailabilityService(store ports.Store, logger ports.LoggerPort, validate *validator.Validate) *AvailabilityService {
	return &AvailabilityService{store: store, logger: logger, validate: validate}
}

// Request files a pending availability interval for the mechanic.
func (s *AvailabilityService) Request(ctx context.Context, mechanicID uuid.UUID, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error) {
	if err := s.validate.Struct(a); err != nil {
		s.logger.Error("Availability validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, validationError(err)
	}
	if a.Hours() <= 0 {
		return nil, fmt.Errorf("%w: start %s must be before end %s", domain.ErrValidation, a.StartTime, a.EndTime)
	}
	if a.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	a.ID = uuid.New()
	a.MechanicID = mechanicID
	a.Date = time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(), 0, 0, 0, 0, time.UTC)
	a.Status = domain.AvailabilityPending
	a.ReviewedBy = nil
	a.ReviewedAt = nil

	created, err := s.store.Availability().CreateAvailability(ctx, a)
	if err != nil {
		s.logger.Error("Failed to request availability", map[string]interface{}{
			"error":       err.Error(),
			"mechanic_id": mechanicID,
		})
		return nil, err
	}

	s.logger.Info("Availability requested", map[string]interface{}{
		"availability_id": created.ID,
		"mechanic_id":     mechanicID,
		"date":            created.Date.Format("2006-01-02"),
	})
	return created, nil
}

// Review approves or rejects a pending request.
func (s *AvailabilityService) Review(ctx context.Context, adminID, availabilityID uuid.UUID, approve bool) (*domain.MechanicAvailability, error) {
	var updated *domain.MechanicAvailability
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		a, err := tx.Availability().GetAvailabilityByID(ctx, availabilityID)
		if err != nil {
			return err
		}
		if a.Status != domain.AvailabilityPending {
			return fmt.Errorf("%w: availability already %s", domain.ErrInvalidTransition, a.Status)
		}
		ts := time.Now().UTC()
		a.Status = domain.AvailabilityRejected
		if approve {
			a.Status = domain.AvailabilityApproved
		}
		a.ReviewedBy = &adminID
		a.ReviewedAt = &ts
		updated, err = tx.Availability().UpdateAvailability(ctx, a)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to review availability", map[string]interface{}{
			"error":           err.Error(),
			"availability_id": availabilityID,
		})
		return nil, err
	}

	s.logger.Info("Availability reviewed", map[string]interface{}{
		"availability_id": availabilityID,
		"status":          updated.Status,
	})
	return updated, nil
}

func (s *AvailabilityService) ListForMechanic(ctx context.Context, mechanicID uuid.UUID) ([]*domain.MechanicAvailability, error) {
	return s.store.Availability().ListAvailabilityByMechanic(ctx, mechanicID)
}

func (s *AvailabilityService) ListPending(ctx context.Context) ([]*domain.MechanicAvailability, error) {
	return s.store.Availability().ListAvailabilityByStatus(ctx, domain.AvailabilityPending)
}

// ApprovedHours sums the approved hours of the mechanic on days in [from, to).
func (s *AvailabilityService) ApprovedHours(ctx context.Context, mechanicID uuid.UUID, from, to time.Time) (float64, error) {
	list, err := s.store.Availability().ListAvailabilityByMechanic(ctx, mechanicID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, a := range list {
		if a.Status != domain.AvailabilityApproved {
			continue
		}
		if a.Date.Before(from) || !a.Date.Before(to) {
			continue
		}
		total += a.Hours()
	}
	return total, nil
}
