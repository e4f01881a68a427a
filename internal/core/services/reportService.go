package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// ReportService aggregates completed work. It never writes.
type ReportService struct {
	store  ports.Store
	logger ports.LoggerPort
}

func NewReportService(store ports.Store, logger ports.LoggerPort) *ReportService {
	return &ReportService{store: store, logger: logger}
}

func checkRange(from, to time.Time) error {
	if !from.Before(to) {
		return fmt.Errorf("%w: range start must be before its end", domain.ErrValidation)
	}
	return nil
}

// WarrantyReport lists the warranty cases completed in [from, to). Earlier completions
// up to one warranty window before from still count as the previous occurrence.
func (s *ReportService) WarrantyReport(ctx context.Context, from, to time.Time) ([]domain.WarrantyReportLine, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	regs, err := s.store.Registrations().ListCompletedBetween(ctx, from.Add(-domain.WarrantyWindow), to)
	if err != nil {
		s.logger.Error("Failed to load registrations for warranty report", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	bikes := map[uuid.UUID]string{}
	types := map[uuid.UUID]string{}
	lines := []domain.WarrantyReportLine{}
	for _, c := range domain.DetectWarrantyCases(regs) {
		if c.CompletedAt.Before(from) {
			continue
		}
		if _, ok := bikes[c.BikeID]; !ok {
			if b, err := s.store.Bikes().GetBikeByID(ctx, c.BikeID); err == nil {
				bikes[c.BikeID] = b.FrameNumber
			}
		}
		if _, ok := types[c.RepairTypeID]; !ok {
			if rt, err := s.store.RepairTypes().GetRepairTypeByID(ctx, c.RepairTypeID); err == nil {
				types[c.RepairTypeID] = rt.Name
			}
		}
		lines = append(lines, domain.WarrantyReportLine{
			WarrantyCase:   c,
			FrameNumber:    bikes[c.BikeID],
			RepairTypeName: types[c.RepairTypeID],
		})
	}

	s.logger.Info("Warranty report built", map[string]interface{}{
		"from":  from.Format(time.RFC3339),
		"to":    to.Format(time.RFC3339),
		"cases": len(lines),
	})
	return lines, nil
}

// MechanicPoints sums the points of the repairs each mechanic completed in [from, to),
// highest first.
func (s *ReportService) MechanicPoints(ctx context.Context, from, to time.Time) ([]domain.MechanicPoints, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	regs, err := s.store.Registrations().ListCompletedBetween(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load registrations for points report", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	repairTypes, err := s.store.RepairTypes().ListRepairTypes(ctx)
	if err != nil {
		return nil, err
	}
	points := make(map[uuid.UUID]float64, len(repairTypes))
	for _, rt := range repairTypes {
		points[rt.ID] = rt.Points
	}

	totals := map[uuid.UUID]*domain.MechanicPoints{}
	for _, reg := range regs {
		if reg.MechanicID == nil {
			continue
		}
		t, ok := totals[*reg.MechanicID]
		if !ok {
			t = &domain.MechanicPoints{MechanicID: *reg.MechanicID}
			totals[*reg.MechanicID] = t
		}
		t.Registrations++
		t.Points += points[reg.RepairTypeID]
	}

	out := make([]domain.MechanicPoints, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points == out[j].Points {
			return out[i].MechanicID.String() < out[j].MechanicID.String()
		}
		return out[i].Points > out[j].Points
	})
	return out, nil
}
