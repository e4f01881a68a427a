package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

func TestMechanicPoints(t *testing.T) {
	f := newFixture(t)
	rt, _ := f.product(t, "Wiel richten", 10, 0)
	second := f.profile(t, "Sam Sleutel", "sam@example.com", domain.Mechanic)
	ts := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f.fixedClock(ts)

	// Diagnose 0.5 and one repair of 1 point for the first mechanic.
	if _, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-7001",
		Model:             domain.ModelS3,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{rt.ID},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	bike, _ := f.store.Bikes().GetBikeByFrameNumber(f.ctx, "WB-7001")
	for _, ev := range []domain.WorkflowEvent{domain.EventApprove, domain.EventClaim, domain.EventFinish} {
		if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, ev); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}
	// Two repairs on a sales bike for the second mechanic.
	if _, err := f.workflow.RegisterBike(f.ctx, second.ID, &domain.BikeIntake{
		FrameNumber:   "WB-7002",
		Model:         domain.ModelS3,
		IsSalesBike:   true,
		RepairTypeIDs: []uuid.UUID{rt.ID},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sales, _ := f.store.Bikes().GetBikeByFrameNumber(f.ctx, "WB-7002")
	if _, err := f.workflow.AddRepairs(f.ctx, second.ID, sales.ID, []uuid.UUID{rt.ID}); err != nil {
		t.Fatalf("add repairs: %v", err)
	}

	totals, err := f.reports.MechanicPoints(f.ctx, ts.Add(-time.Hour), ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("got %d mechanics, want 2", len(totals))
	}
	if totals[0].MechanicID != second.ID || totals[0].Points != 2 || totals[0].Registrations != 2 {
		t.Fatalf("first line %+v", totals[0])
	}
	if totals[1].MechanicID != f.mechanic.ID || totals[1].Points != 1.5 {
		t.Fatalf("second line %+v", totals[1])
	}

	outside, err := f.reports.MechanicPoints(f.ctx, ts.Add(time.Hour), ts.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if len(outside) != 0 {
		t.Fatalf("completions outside the range counted: %+v", outside)
	}
}

func TestReportRangeMustBeOrdered(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	if _, err := f.reports.WarrantyReport(f.ctx, now, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.reports.MechanicPoints(f.ctx, now, now.Add(-time.Hour)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestWarrantyReportIgnoresRepeatsOutsideWindow(t *testing.T) {
	f := newFixture(t)
	rt, _ := f.product(t, "Trapas", 10, 0)
	first := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	f.fixedClock(first)
	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:   "WB-7101",
		Model:         domain.ModelS3,
		IsSalesBike:   true,
		RepairTypeIDs: []uuid.UUID{rt.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	repeat := first.Add(domain.WarrantyWindow + 24*time.Hour)
	f.fixedClock(repeat)
	if _, err := f.workflow.AddRepairs(f.ctx, f.mechanic.ID, bike.ID, []uuid.UUID{rt.ID}); err != nil {
		t.Fatalf("add repairs: %v", err)
	}

	lines, err := f.reports.WarrantyReport(f.ctx, repeat.Add(-time.Hour), repeat.Add(time.Hour))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("repeat after the window reported as warranty: %+v", lines)
	}
}
