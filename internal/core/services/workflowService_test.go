package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

func TestRegisterBikeWithCompleteDiagnosis(t *testing.T) {
	f := newFixture(t)
	brakes, _ := f.product(t, "Remblokken", 5, 1)
	chain, _ := f.product(t, "Ketting", 5, 1)

	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-1001",
		Model:             domain.ModelS3,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{brakes.ID, chain.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if bike.WorkflowStatus != domain.StatusWachtOpAkkoord {
		t.Fatalf("status = %s, want %s", bike.WorkflowStatus, domain.StatusWachtOpAkkoord)
	}
	if bike.DiagnosedBy == nil || *bike.DiagnosedBy != f.mechanic.ID || bike.DiagnosedAt == nil {
		t.Fatalf("diagnosis stamp missing: %+v", bike)
	}

	regs := f.registrations(t, bike.ID)
	if len(regs) != 3 {
		t.Fatalf("got %d registrations, want 3", len(regs))
	}
	pending, err := f.workflow.PendingRepairs(f.ctx, bike.ID)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending repairs, want 2", len(pending))
	}
	if n := f.diagnoseRegistrations(t, bike.ID); n != 1 {
		t.Fatalf("got %d diagnose registrations, want 1", n)
	}
}

func TestRegisterBikeWithoutDiagnosisBooksNothing(t *testing.T) {
	f := newFixture(t)
	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{
		FrameNumber: "WB-1002",
		Model:       domain.ModelX3,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if bike.WorkflowStatus != domain.StatusDiagnoseNodig {
		t.Fatalf("status = %s, want %s", bike.WorkflowStatus, domain.StatusDiagnoseNodig)
	}
	if bike.IsDiagnosed() {
		t.Fatal("bike must not be diagnosed yet")
	}
	if regs := f.registrations(t, bike.ID); len(regs) != 0 {
		t.Fatalf("got %d registrations, want none", len(regs))
	}
}

func TestRegisterSalesBikeCompletesEverything(t *testing.T) {
	f := newFixture(t)
	tyre, tyreItem := f.product(t, "Buitenband", 3, 1)

	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:   "WB-1003",
		Model:         domain.ModelS5,
		IsSalesBike:   true,
		RepairTypeIDs: []uuid.UUID{tyre.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if bike.WorkflowStatus != domain.StatusInReparatie {
		t.Fatalf("status = %s, want %s", bike.WorkflowStatus, domain.StatusInReparatie)
	}
	if bike.CurrentMechanicID == nil || *bike.CurrentMechanicID != f.mechanic.ID {
		t.Fatalf("sales bike should be claimed by the registering mechanic")
	}
	for _, r := range f.registrations(t, bike.ID) {
		if !r.Completed || r.MechanicID == nil || *r.MechanicID != f.mechanic.ID {
			t.Fatalf("sales bike registration not completed: %+v", r)
		}
	}
	if n := f.diagnoseRegistrations(t, bike.ID); n != 0 {
		t.Fatalf("sales bikes are not diagnosed, got %d diagnose registrations", n)
	}
	if q := f.quantity(t, tyreItem.ID); q != 2 {
		t.Fatalf("quantity = %d, want 2", q)
	}
}

func TestRegisterBikeRejectsDuplicateFrameNumber(t *testing.T) {
	f := newFixture(t)
	in := &domain.BikeIntake{FrameNumber: "WB-1004", Model: domain.ModelS2}
	if _, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: " WB-1004 ", Model: domain.ModelS2})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterBikeRejectsRepairForOtherModel(t *testing.T) {
	f := newFixture(t)
	rt, _, err := f.inventory.CreateProduct(f.ctx, &domain.Product{
		Name:   "Accu A5",
		Models: []domain.BikeModel{domain.ModelA5},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	_, err = f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-1005",
		Model:             domain.ModelS1,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{rt.ID},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.store.Bikes().GetBikeByFrameNumber(f.ctx, "WB-1005"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rejected intake must not leave a bike behind, got %v", err)
	}
}

func TestDiagnosisIsBookedOnceAcrossReopen(t *testing.T) {
	f := newFixture(t)
	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: "WB-1006", Model: domain.ModelS4})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	steps := []domain.WorkflowEvent{
		domain.EventStartDiagnosis,
		domain.EventSubmitDiagnosis,
		domain.EventApprove,
		domain.EventClaim,
		domain.EventFinish,
		domain.EventReopen,
		domain.EventSubmitDiagnosis,
	}
	for _, ev := range steps {
		if bike, err = f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, ev); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}
	if bike.WorkflowStatus != domain.StatusWachtOpAkkoord {
		t.Fatalf("status = %s, want %s", bike.WorkflowStatus, domain.StatusWachtOpAkkoord)
	}
	if n := f.diagnoseRegistrations(t, bike.ID); n != 1 {
		t.Fatalf("got %d diagnose registrations, want 1", n)
	}
}

func TestRepairFlowWithChecklist(t *testing.T) {
	f := newFixture(t)
	pads, padsItem := f.product(t, "Remblokken", 4, 1)
	light, _ := f.product(t, "Achterlicht", 4, 1)
	test := f.checklistItem(t, "Proefrit")
	bolts := f.checklistItem(t, "Bouten aangedraaid")

	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-2001",
		Model:             domain.ModelX4,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{pads.ID, light.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	pending, _ := f.workflow.PendingRepairs(f.ctx, bike.ID)
	if _, err := f.workflow.CompleteRegistration(f.ctx, f.mechanic.ID, pending[0].RegistrationID); !errors.Is(err, domain.ErrApprovalPending) {
		t.Fatalf("expected ErrApprovalPending before approval, got %v", err)
	}

	if _, err := f.workflow.FireEvent(f.ctx, f.admin.ID, bike.ID, domain.EventApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if bike, err = f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventClaim); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if bike.CurrentMechanicID == nil || *bike.CurrentMechanicID != f.mechanic.ID {
		t.Fatal("claim must set the current mechanic")
	}

	var padsReg uuid.UUID
	for _, p := range pending {
		if p.RepairTypeID == pads.ID {
			padsReg = p.RegistrationID
		}
	}
	if _, err := f.workflow.CompleteRegistration(f.ctx, f.mechanic.ID, padsReg); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if q := f.quantity(t, padsItem.ID); q != 3 {
		t.Fatalf("quantity = %d, want 3", q)
	}
	if _, err := f.workflow.CompleteRegistration(f.ctx, f.mechanic.ID, padsReg); !errors.Is(err, domain.ErrRegistrationCompleted) {
		t.Fatalf("expected ErrRegistrationCompleted, got %v", err)
	}

	if err := f.bikes.SetChecklistItem(f.ctx, f.mechanic.ID, bike.ID, test.ID, true); err != nil {
		t.Fatalf("check item: %v", err)
	}
	_, err = f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventFinish)
	if !errors.Is(err, domain.ErrChecklistIncomplete) {
		t.Fatalf("expected ErrChecklistIncomplete, got %v", err)
	}
	if !strings.Contains(err.Error(), bolts.Label) {
		t.Fatalf("error should name the missing item: %v", err)
	}
	current, _ := f.store.Bikes().GetBikeByID(f.ctx, bike.ID)
	if current.WorkflowStatus != domain.StatusInReparatie {
		t.Fatalf("rejected finish changed status to %s", current.WorkflowStatus)
	}
	if p, _ := f.workflow.PendingRepairs(f.ctx, bike.ID); len(p) != 1 {
		t.Fatalf("rejected finish must not complete registrations, %d pending", len(p))
	}

	if err := f.bikes.SetChecklistItem(f.ctx, f.mechanic.ID, bike.ID, bolts.ID, true); err != nil {
		t.Fatalf("check item: %v", err)
	}
	finished, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventFinish)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.WorkflowStatus != domain.StatusAfgerond {
		t.Fatalf("status = %s, want %s", finished.WorkflowStatus, domain.StatusAfgerond)
	}
	if finished.CurrentMechanicID == nil || *finished.CurrentMechanicID != f.mechanic.ID {
		t.Fatal("finish keeps the mechanic")
	}
	if p, _ := f.workflow.PendingRepairs(f.ctx, bike.ID); len(p) != 0 {
		t.Fatalf("finished bike has %d pending repairs", len(p))
	}
}

func TestInactiveChecklistItemsAreNotRequired(t *testing.T) {
	f := newFixture(t)
	item := f.checklistItem(t, "Bel werkt")
	item.Active = false
	if _, err := f.bikes.UpdateChecklistItem(f.ctx, item); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber: "WB-2002",
		Model:       domain.ModelS1,
		IsSalesBike: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventFinish); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

func TestInvalidTransitionLeavesBikeUntouched(t *testing.T) {
	f := newFixture(t)
	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: "WB-2003", Model: domain.ModelS2})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventClaim)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	_, err = f.workflow.TransitionTo(f.ctx, f.mechanic.ID, bike.ID, domain.StatusAfgerond)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	current, _ := f.store.Bikes().GetBikeByID(f.ctx, bike.ID)
	if current.WorkflowStatus != domain.StatusDiagnoseNodig || current.CurrentMechanicID != nil {
		t.Fatalf("bike changed by rejected transition: %+v", current)
	}
}

func TestTransitionToUsesTableRow(t *testing.T) {
	f := newFixture(t)
	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: "WB-2004", Model: domain.ModelS2})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	bike, err = f.workflow.TransitionTo(f.ctx, f.mechanic.ID, bike.ID, domain.StatusWachtOpAkkoord)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !bike.IsDiagnosed() {
		t.Fatal("moving to wacht_op_akkoord stamps the diagnosis")
	}
	if n := f.diagnoseRegistrations(t, bike.ID); n != 1 {
		t.Fatalf("got %d diagnose registrations, want 1", n)
	}
}

func TestCachedBikeIsInvalidatedOnTransition(t *testing.T) {
	f := newFixture(t)
	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: "WB-2005", Model: domain.ModelS3})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.bikes.GetBikeByID(f.ctx, bike.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventStartDiagnosis); err != nil {
		t.Fatalf("start diagnosis: %v", err)
	}
	got, err := f.bikes.GetBikeByID(f.ctx, bike.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.WorkflowStatus != domain.StatusDiagnoseBezig {
		t.Fatalf("stale cached status %s", got.WorkflowStatus)
	}
}

func TestTransitionPublishesChange(t *testing.T) {
	f := newFixture(t)
	events, cancel, err := f.feed.Subscribe(f.ctx, []string{domain.TableBikes}, nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: "WB-2006", Model: domain.ModelS3})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventStartDiagnosis); err != nil {
		t.Fatalf("start diagnosis: %v", err)
	}

	want := []domain.ChangeType{domain.ChangeInsert, domain.ChangeUpdate}
	for _, typ := range want {
		select {
		case ev := <-events:
			if ev.Type != typ || ev.RowID != bike.ID {
				t.Fatalf("got %+v, want %s for %s", ev, typ, bike.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s event", typ)
		}
	}
}

func TestAddRepairsRefusesFinishedBike(t *testing.T) {
	f := newFixture(t)
	rt, _ := f.product(t, "Spaak", 10, 2)
	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber: "WB-2007",
		Model:       domain.ModelS3,
		IsSalesBike: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	regs, err := f.workflow.AddRepairs(f.ctx, f.mechanic.ID, bike.ID, []uuid.UUID{rt.ID})
	if err != nil {
		t.Fatalf("add repairs: %v", err)
	}
	if len(regs) != 1 || !regs[0].Completed {
		t.Fatalf("repairs added to a sales bike are completed at once: %+v", regs)
	}
	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventFinish); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := f.workflow.AddRepairs(f.ctx, f.mechanic.ID, bike.ID, []uuid.UUID{rt.ID}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDeletePendingRegistration(t *testing.T) {
	f := newFixture(t)
	a, _ := f.product(t, "Derailleur", 2, 0)
	b, _ := f.product(t, "Kabel", 2, 0)
	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-2008",
		Model:             domain.ModelS3,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	pending, _ := f.workflow.PendingRepairs(f.ctx, bike.ID)
	if err := f.workflow.DeletePendingRegistration(f.ctx, pending[0].RegistrationID); err != nil {
		t.Fatalf("delete pending: %v", err)
	}

	if _, err := f.workflow.FireEvent(f.ctx, f.admin.ID, bike.ID, domain.EventApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.workflow.CompleteRegistration(f.ctx, f.mechanic.ID, pending[1].RegistrationID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	err = f.workflow.DeletePendingRegistration(f.ctx, pending[1].RegistrationID)
	if !errors.Is(err, domain.ErrRegistrationCompleted) {
		t.Fatalf("expected ErrRegistrationCompleted, got %v", err)
	}
}

func TestAssignTableReopensFinishedBikeAndDetectsWarranty(t *testing.T) {
	f := newFixture(t)
	pads, _ := f.product(t, "Remblokken", 10, 1)
	brakes := f.checklistItem(t, "Remmen getest")
	start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	f.fixedClock(start)

	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-3001",
		Model:             domain.ModelS3,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{pads.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.bikes.SetChecklistItem(f.ctx, f.mechanic.ID, bike.ID, brakes.ID, true); err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, ev := range []domain.WorkflowEvent{domain.EventApprove, domain.EventClaim, domain.EventFinish} {
		if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, ev); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}

	later := start.AddDate(0, 3, 0)
	f.fixedClock(later)
	table := " T7 "
	reopened, err := f.workflow.AssignTable(f.ctx, f.foh.ID, bike.ID, &table, nil)
	if err != nil {
		t.Fatalf("assign table: %v", err)
	}
	if reopened.WorkflowStatus != domain.StatusDiagnoseNodig {
		t.Fatalf("status = %s, want %s", reopened.WorkflowStatus, domain.StatusDiagnoseNodig)
	}
	if reopened.TableNumber == nil || *reopened.TableNumber != "T7" {
		t.Fatalf("table = %v, want T7", reopened.TableNumber)
	}
	if reopened.CurrentMechanicID != nil {
		t.Fatal("reopen clears the mechanic")
	}
	lines, err := f.bikes.BikeChecklist(f.ctx, bike.ID)
	if err != nil {
		t.Fatalf("checklist: %v", err)
	}
	for _, l := range lines {
		if l.Completed {
			t.Fatalf("item %s still completed after reopen", l.Item.Label)
		}
	}

	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventSubmitDiagnosis); err != nil {
		t.Fatalf("submit diagnosis: %v", err)
	}
	if _, err := f.workflow.AddRepairs(f.ctx, f.mechanic.ID, bike.ID, []uuid.UUID{pads.ID}); err != nil {
		t.Fatalf("add repairs: %v", err)
	}
	for _, ev := range []domain.WorkflowEvent{domain.EventApprove, domain.EventClaim} {
		if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, ev); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}
	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventFinish); !errors.Is(err, domain.ErrChecklistIncomplete) {
		t.Fatalf("expected ErrChecklistIncomplete on second finish, got %v", err)
	}
	if err := f.bikes.SetChecklistItem(f.ctx, f.mechanic.ID, bike.ID, brakes.ID, true); err != nil {
		t.Fatalf("check again: %v", err)
	}
	if _, err := f.workflow.FireEvent(f.ctx, f.mechanic.ID, bike.ID, domain.EventFinish); err != nil {
		t.Fatalf("finish: %v", err)
	}

	warranty, err := f.reports.WarrantyReport(f.ctx, later.AddDate(0, 0, -1), later.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("warranty report: %v", err)
	}
	if len(warranty) != 1 {
		t.Fatalf("got %d warranty cases, want 1", len(warranty))
	}
	got := warranty[0]
	if got.RepairTypeName != "Remblokken" || got.FrameNumber != "WB-3001" {
		t.Fatalf("unexpected line %+v", got)
	}
	if want := int(later.Sub(start).Hours() / 24); got.DaysSincePrevious != want {
		t.Fatalf("days since previous = %d, want %d", got.DaysSincePrevious, want)
	}
}

func TestAssignTableRejectsInactiveMechanic(t *testing.T) {
	f := newFixture(t)
	retired := f.profile(t, "Oud Monteur", "oud@example.com", domain.Mechanic)
	if _, err := f.store.Profiles().UpdateProfile(f.ctx, &domain.Profile{
		ID: retired.ID, FullName: retired.FullName, Email: retired.Email, Role: retired.Role, Active: false,
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	bike, err := f.workflow.RegisterBike(f.ctx, f.foh.ID, &domain.BikeIntake{FrameNumber: "WB-3002", Model: domain.ModelS3})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.workflow.AssignTable(f.ctx, f.foh.ID, bike.ID, nil, &retired.ID); !errors.Is(err, domain.ErrInactiveProfile) {
		t.Fatalf("expected ErrInactiveProfile, got %v", err)
	}
	if _, err := f.workflow.AssignTable(f.ctx, f.foh.ID, bike.ID, nil, &f.mechanic.ID); err != nil {
		t.Fatalf("assign active mechanic: %v", err)
	}
}
