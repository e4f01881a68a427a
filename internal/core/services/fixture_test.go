package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/logger"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/memory"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type fixture struct {
	ctx   context.Context
	store *memory.Store
	cache *memory.Cache
	feed  *memory.Feed

	workflow     *WorkflowService
	bikes        *BikeService
	tasks        *TaskService
	inventory    *InventoryService
	availability *AvailabilityService
	reports      *ReportService

	admin    *domain.Profile
	mechanic *domain.Profile
	foh      *domain.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	validate := validator.New()
	store := memory.NewStore()
	cache := memory.NewCache()
	feed := memory.NewFeed(64)

	f := &fixture{
		ctx:          context.Background(),
		store:        store,
		cache:        cache,
		feed:         feed,
		workflow:     NewWorkflowService(store, log, validate, cache, feed, nil),
		bikes:        NewBikeService(store, log, validate, cache, feed),
		tasks:        NewTaskService(store, log, validate, cache, feed),
		inventory:    NewInventoryService(store, log, validate, cache, feed, 50*time.Millisecond),
		availability: NewAvailabilityService(store, log, validate),
		reports:      NewReportService(store, log),
	}
	f.admin = f.profile(t, "Anna Admin", "admin@example.com", domain.Admin)
	f.mechanic = f.profile(t, "Mo Monteur", "mo@example.com", domain.Mechanic)
	f.foh = f.profile(t, "Fee Balie", "fee@example.com", domain.Foh)
	return f
}

func (f *fixture) profile(t *testing.T, name, email string, role domain.UserRole) *domain.Profile {
	t.Helper()
	p, err := f.store.Profiles().CreateProfile(f.ctx, &domain.Profile{
		FullName: name,
		Email:    email,
		Role:     role,
		Active:   true,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

// product creates a repair type with a limited stock row.
func (f *fixture) product(t *testing.T, name string, quantity, minStock int) (*domain.RepairType, *domain.InventoryItem) {
	t.Helper()
	rt, item, err := f.inventory.CreateProduct(f.ctx, &domain.Product{
		Name:          name,
		Price:         decimal.RequireFromString("12.50"),
		Points:        1,
		Quantity:      quantity,
		MinStockLevel: minStock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return rt, item
}

func (f *fixture) checklistItem(t *testing.T, label string) *domain.ChecklistItem {
	t.Helper()
	item, err := f.bikes.CreateChecklistItem(f.ctx, &domain.ChecklistItem{Label: label, Active: true})
	if err != nil {
		t.Fatalf("create checklist item: %v", err)
	}
	return item
}

func (f *fixture) registrations(t *testing.T, bikeID uuid.UUID) []*domain.WorkRegistration {
	t.Helper()
	regs, err := f.store.Registrations().ListRegistrationsByBike(f.ctx, bikeID)
	if err != nil {
		t.Fatalf("list registrations: %v", err)
	}
	return regs
}

func (f *fixture) diagnoseRegistrations(t *testing.T, bikeID uuid.UUID) int {
	t.Helper()
	diag, err := f.store.RepairTypes().GetRepairTypeByName(f.ctx, domain.DiagnoseRepairTypeName)
	if err != nil {
		t.Fatalf("diagnose repair type: %v", err)
	}
	n := 0
	for _, r := range f.registrations(t, bikeID) {
		if r.RepairTypeID == diag.ID {
			n++
		}
	}
	return n
}

func (f *fixture) quantity(t *testing.T, itemID uuid.UUID) int {
	t.Helper()
	item, err := f.store.Inventory().GetItemByID(f.ctx, itemID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	return item.Quantity
}

// fixedClock pins the workflow clock to ts.
func (f *fixture) fixedClock(ts time.Time) {
	f.workflow.now = func() time.Time { return ts }
}
