package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func completedAt(bike, repair uuid.UUID, ts time.Time) *WorkRegistration {
	return &WorkRegistration{ID: uuid.New(), BikeID: bike, RepairTypeID: repair, Completed: true, CompletedAt: &ts}
}

func TestDetectWarrantyCasesWindow(t *testing.T) {
	bike, brake := uuid.New(), uuid.New()
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	inside := completedAt(bike, brake, t0.Add(WarrantyWindow))
	cases := DetectWarrantyCases([]*WorkRegistration{completedAt(bike, brake, t0), inside})
	if len(cases) != 1 || cases[0].RegistrationID != inside.ID || cases[0].DaysSincePrevious != 180 {
		t.Fatalf("expected one case at exactly 180 days, got %+v", cases)
	}

	outside := completedAt(bike, brake, t0.Add(WarrantyWindow+time.Second))
	if cases := DetectWarrantyCases([]*WorkRegistration{completedAt(bike, brake, t0), outside}); len(cases) != 0 {
		t.Fatalf("expected no case past the window, got %+v", cases)
	}
}

func TestDetectWarrantyCasesUsesNearestPrevious(t *testing.T) {
	bike, brake := uuid.New(), uuid.New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := completedAt(bike, brake, t0)
	second := completedAt(bike, brake, t0.AddDate(0, 0, 300))
	third := completedAt(bike, brake, t0.AddDate(0, 0, 330))

	cases := DetectWarrantyCases([]*WorkRegistration{third, first, second})
	if len(cases) != 1 {
		t.Fatalf("expected one case, got %+v", cases)
	}
	if cases[0].RegistrationID != third.ID || cases[0].PreviousRegistrationID != second.ID {
		t.Fatalf("expected third against second, got %+v", cases[0])
	}
	if cases[0].DaysSincePrevious != 30 {
		t.Fatalf("got %d days", cases[0].DaysSincePrevious)
	}
}

func TestDetectWarrantyCasesIsolatesBikeAndRepairType(t *testing.T) {
	bikeA, bikeB := uuid.New(), uuid.New()
	brake, tyre := uuid.New(), uuid.New()
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	regs := []*WorkRegistration{
		completedAt(bikeA, brake, t0),
		completedAt(bikeB, brake, t0.AddDate(0, 0, 10)),
		completedAt(bikeA, tyre, t0.AddDate(0, 0, 20)),
		completedAt(bikeA, tyre, t0.AddDate(0, 0, 40)),
		{ID: uuid.New(), BikeID: bikeA, RepairTypeID: brake},
	}
	cases := DetectWarrantyCases(regs)
	if len(cases) != 1 || cases[0].RepairTypeID != tyre || cases[0].BikeID != bikeA {
		t.Fatalf("expected a single tyre case on bike A, got %+v", cases)
	}
}
