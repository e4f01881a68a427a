package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

func TestStockConsumptionAndLowStock(t *testing.T) {
	f := newFixture(t)
	chain, item := f.product(t, "Ketting", 2, 1)

	for i, frame := range []string{"WB-4001", "WB-4002"} {
		if _, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
			FrameNumber:   frame,
			Model:         domain.ModelS3,
			IsSalesBike:   true,
			RepairTypeIDs: []uuid.UUID{chain.ID},
		}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		line, err := f.inventory.ItemStatus(f.ctx, item.ID)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		want := []domain.StockStatus{domain.StockLow, domain.StockOut}[i]
		if line.Status != want {
			t.Fatalf("after %d consumptions status = %s, want %s", i+1, line.Status, want)
		}
	}

	if _, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:   "WB-4003",
		Model:         domain.ModelS3,
		IsSalesBike:   true,
		RepairTypeIDs: []uuid.UUID{chain.ID},
	}); err != nil {
		t.Fatalf("consuming from empty stock must not fail: %v", err)
	}
	if q := f.quantity(t, item.ID); q != 0 {
		t.Fatalf("quantity = %d, want 0", q)
	}
}

func TestAdjustQuantityClampsAtZero(t *testing.T) {
	f := newFixture(t)
	_, item := f.product(t, "Binnenband", 3, 1)

	got, err := f.inventory.AdjustQuantity(f.ctx, item.ID, -10)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0", got.Quantity)
	}
	got, err = f.inventory.SetQuantity(f.ctx, item.ID, -4)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if got.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0", got.Quantity)
	}
}

func TestUnlimitedStockIsNeverConsumed(t *testing.T) {
	f := newFixture(t)
	rt, item, err := f.inventory.CreateProduct(f.ctx, &domain.Product{
		Name:           "Afstellen",
		Price:          decimal.NewFromInt(15),
		Points:         1,
		UnlimitedStock: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:   "WB-4004",
		Model:         domain.ModelX5,
		IsSalesBike:   true,
		RepairTypeIDs: []uuid.UUID{rt.ID},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	line, err := f.inventory.ItemStatus(f.ctx, item.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if line.Status != domain.StockUnlimited || line.Item.Quantity != 0 {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestGroupedItemsShareStockStatus(t *testing.T) {
	f := newFixture(t)
	group, err := f.inventory.CreateGroup(f.ctx, &domain.InventoryGroup{Name: "Banden 28 inch", MinStockLevel: 5})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	_, a := f.product(t, "Band zwart", 2, 0)
	_, b := f.product(t, "Band reflectie", 2, 0)
	for _, it := range []*domain.InventoryItem{a, b} {
		if _, err := f.inventory.AssignGroup(f.ctx, it.ID, &group.ID); err != nil {
			t.Fatalf("assign group: %v", err)
		}
	}

	line, err := f.inventory.ItemStatus(f.ctx, a.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if line.Effective != 4 || line.Status != domain.StockLow || line.GroupName != group.Name {
		t.Fatalf("unexpected grouped line %+v", line)
	}

	if _, err := f.inventory.SetQuantity(f.ctx, b.ID, 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	overview, err := f.inventory.StockOverview(f.ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	for _, l := range overview {
		if l.Item.ID != a.ID && l.Item.ID != b.ID {
			continue
		}
		if l.Effective != 12 || l.Status != domain.StockOK {
			t.Fatalf("member %s: effective %d status %s, want 12 ok", l.RepairTypeName, l.Effective, l.Status)
		}
	}
}

func TestStockOverviewIsInvalidatedByConsumption(t *testing.T) {
	f := newFixture(t)
	rt, item := f.product(t, "Zadel", 3, 0)
	if _, err := f.inventory.StockOverview(f.ctx); err != nil {
		t.Fatalf("overview: %v", err)
	}
	if _, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:   "WB-4005",
		Model:         domain.ModelS2,
		IsSalesBike:   true,
		RepairTypeIDs: []uuid.UUID{rt.ID},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	overview, err := f.inventory.StockOverview(f.ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	for _, l := range overview {
		if l.Item.ID == item.ID && l.Item.Quantity != 2 {
			t.Fatalf("stale overview quantity %d", l.Item.Quantity)
		}
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]*domain.Product{
		"missing name":   {Price: decimal.NewFromInt(1)},
		"negative price": {Name: "Bel", Price: decimal.NewFromInt(-1)},
		"unknown model":  {Name: "Bel", Models: []domain.BikeModel{"Z9"}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := f.inventory.CreateProduct(f.ctx, p); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestDeleteProductCascades(t *testing.T) {
	f := newFixture(t)
	rt, item := f.product(t, "Standaard", 5, 1)
	bike, err := f.workflow.RegisterBike(f.ctx, f.mechanic.ID, &domain.BikeIntake{
		FrameNumber:       "WB-4006",
		Model:             domain.ModelS3,
		DiagnosisComplete: true,
		RepairTypeIDs:     []uuid.UUID{rt.ID},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := f.inventory.DeleteProduct(f.ctx, rt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.store.Inventory().GetItemByID(f.ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("item should be gone, got %v", err)
	}
	if p, _ := f.workflow.PendingRepairs(f.ctx, bike.ID); len(p) != 0 {
		t.Fatalf("registrations of a deleted product remain: %d", len(p))
	}

	diag, _ := f.store.RepairTypes().GetRepairTypeByName(f.ctx, domain.DiagnoseRepairTypeName)
	if err := f.inventory.DeleteProduct(f.ctx, diag.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListRepairTypesByModel(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.inventory.CreateProduct(f.ctx, &domain.Product{Name: "Accu A5", Models: []domain.BikeModel{domain.ModelA5}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.product(t, "Bel", 5, 1)

	model := domain.ModelS3
	list, err := f.inventory.ListRepairTypes(f.ctx, &model)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, rt := range list {
		if rt.Name == "Accu A5" {
			t.Fatal("model-specific repair type listed for another model")
		}
	}
	all, _ := f.inventory.ListRepairTypes(f.ctx, nil)
	if len(all) != len(list)+1 {
		t.Fatalf("got %d repair types unfiltered and %d for S3", len(all), len(list))
	}
}

func TestScheduledEditsCoalesce(t *testing.T) {
	f := newFixture(t)
	_, item := f.product(t, "Handvatten", 1, 0)

	for _, v := range []string{"3", "4", "5"} {
		if err := f.inventory.ScheduleEdit(item.ID, domain.FieldQuantity, v); err != nil {
			t.Fatalf("schedule %s: %v", v, err)
		}
	}
	if err := f.inventory.ScheduleEdit(item.ID, domain.FieldPurchasePrice, "7,25"); err != nil {
		t.Fatalf("schedule price: %v", err)
	}
	if q := f.quantity(t, item.ID); q != 1 {
		t.Fatalf("edit written before the delay: quantity %d", q)
	}

	want := decimal.RequireFromString("7.25")
	deadline := time.Now().Add(2 * time.Second)
	var got *domain.InventoryItem
	for {
		var err error
		got, err = f.store.Inventory().GetItemByID(f.ctx, item.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if (got.Quantity == 5 && got.PurchasePrice.Equal(want)) || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got.Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", got.Quantity)
	}
	if !got.PurchasePrice.Equal(want) {
		t.Fatalf("purchase price = %s, want %s", got.PurchasePrice, want)
	}
}

func TestScheduleEditRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	_, item := f.product(t, "Spatbord", 1, 0)
	cases := []struct {
		field domain.InventoryField
		value string
	}{
		{domain.FieldQuantity, "veel"},
		{domain.FieldMinStockLevel, "-1"},
		{domain.FieldPurchasePrice, "-3,00"},
		{"colour", "red"},
	}
	for _, c := range cases {
		if err := f.inventory.ScheduleEdit(item.ID, c.field, c.value); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s=%q: expected ErrValidation, got %v", c.field, c.value, err)
		}
	}
	if n := f.inventory.debouncer.Pending(); n != 0 {
		t.Fatalf("invalid edits were scheduled: %d", n)
	}
}

func TestFlushEditsWritesImmediately(t *testing.T) {
	f := newFixture(t)
	f.inventory.debouncer = NewDebouncer(time.Hour)
	_, item := f.product(t, "Slot", 1, 0)

	if err := f.inventory.ScheduleEdit(item.ID, domain.FieldMinStockLevel, "3"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if n := f.inventory.FlushEdits(); n != 1 {
		t.Fatalf("flushed %d edits, want 1", n)
	}
	got, _ := f.store.Inventory().GetItemByID(f.ctx, item.ID)
	if got.MinStockLevel != 3 {
		t.Fatalf("min stock level = %d, want 3", got.MinStockLevel)
	}
}
