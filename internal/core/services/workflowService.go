package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// WorkflowService drives bikes through the repair pipeline. Every operation runs in one
// store transaction so a rejected guard leaves no partial write behind.
type WorkflowService struct {
	store    ports.Store
	logger   ports.LoggerPort
	validate *validator.Validate
	metrics  ports.MetricsPort
	notifier
	now func() time.Time
}

func NewWorkflowService(
	store ports.Store,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	feed ports.ChangeFeed,
	metrics ports.MetricsPort,
) *WorkflowService {
	return &WorkflowService{
		store:    store,
		logger:   logger,
		validate: validate,
		metrics:  metrics,
		notifier: notifier{logger: logger, cache: cache, feed: feed},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// sideEffects collects rows touched inside a transaction so events go out after commit.
type sideEffects struct {
	regsCreated   []uuid.UUID
	regsCompleted []uuid.UUID
	itemsTouched  []uuid.UUID
}

func (e *sideEffects) consumed(item *domain.InventoryItem) {
	if item != nil {
		e.itemsTouched = append(e.itemsTouched, item.ID)
	}
}

func (s *WorkflowService) flush(ctx context.Context, fx *sideEffects) {
	for _, id := range fx.regsCreated {
		s.publish(ctx, domain.TableWorkRegistrations, domain.ChangeInsert, id)
	}
	for _, id := range fx.regsCompleted {
		s.publish(ctx, domain.TableWorkRegistrations, domain.ChangeUpdate, id)
	}
	if len(fx.itemsTouched) > 0 {
		s.invalidate(stockOverviewKey)
	}
	for _, id := range fx.itemsTouched {
		s.publish(ctx, domain.TableInventoryItems, domain.ChangeUpdate, id)
	}
}

// RegisterBike creates a bike and its initial registrations. The starting status follows
// the intake path: sales bikes go straight into repair with every repair booked as done,
// other bikes wait for approval once the diagnosis is complete.
func (s *WorkflowService) RegisterBike(ctx context.Context, actorID uuid.UUID, in *domain.BikeIntake) (*domain.Bike, error) {
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Bike intake validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, validationError(err)
	}
	if !in.Model.Valid() {
		return nil, fmt.Errorf("%w: unknown bike model %q", domain.ErrValidation, in.Model)
	}
	in.FrameNumber = strings.TrimSpace(in.FrameNumber)

	var created *domain.Bike
	fx := &sideEffects{}
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		if _, err := tx.Bikes().GetBikeByFrameNumber(ctx, in.FrameNumber); err == nil {
			return fmt.Errorf("bike with frame number %s: %w", in.FrameNumber, domain.ErrConflict)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		repairTypes, err := s.resolveRepairTypes(ctx, tx, in.Model, in.RepairTypeIDs)
		if err != nil {
			return err
		}

		ts := s.now()
		bike := &domain.Bike{
			ID:             uuid.New(),
			FrameNumber:    in.FrameNumber,
			Model:          in.Model,
			WorkflowStatus: domain.InitialStatus(in.IsSalesBike, in.DiagnosisComplete),
			TableNumber:    normalizeTable(in.TableNumber),
			IsSalesBike:    in.IsSalesBike,
			CustomerPhone:  in.CustomerPhone,
		}
		if in.IsSalesBike {
			bike.CurrentMechanicID = &actorID
		}
		if !in.IsSalesBike && in.DiagnosisComplete {
			bike.DiagnosedBy = &actorID
			bike.DiagnosedAt = &ts
		}

		created, err = tx.Bikes().CreateBike(ctx, bike)
		if err != nil {
			return err
		}

		for _, rt := range repairTypes {
			if err := s.bookRepair(ctx, tx, created, rt, actorID, ts, fx); err != nil {
				return err
			}
		}
		if created.IsDiagnosed() {
			if err := s.bookDiagnosis(ctx, tx, created, actorID, ts, fx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to register bike", map[string]interface{}{
			"error":        err.Error(),
			"frame_number": in.FrameNumber,
		})
		return nil, err
	}

	s.publish(ctx, domain.TableBikes, domain.ChangeInsert, created.ID)
	s.flush(ctx, fx)

	s.logger.Info("Bike registered", map[string]interface{}{
		"bike_id":         created.ID,
		"frame_number":    created.FrameNumber,
		"workflow_status": created.WorkflowStatus,
		"repairs":         len(in.RepairTypeIDs),
	})

	return created, nil
}

func (s *WorkflowService) resolveRepairTypes(ctx context.Context, tx ports.Store, model domain.BikeModel, ids []uuid.UUID) ([]*domain.RepairType, error) {
	out := make([]*domain.RepairType, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rt, err := tx.RepairTypes().GetRepairTypeByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rt.Name == domain.DiagnoseRepairTypeName {
			return nil, fmt.Errorf("%w: %s is booked automatically", domain.ErrValidation, rt.Name)
		}
		if !rt.AppliesTo(model) {
			return nil, fmt.Errorf("%w: %s does not apply to model %s", domain.ErrValidation, rt.Name, model)
		}
		out = append(out, rt)
	}
	return out, nil
}

// bookRepair inserts one registration. Sales bike repairs are booked as already
// performed and consume stock immediately.
func (s *WorkflowService) bookRepair(ctx context.Context, tx ports.Store, bike *domain.Bike, rt *domain.RepairType, actorID uuid.UUID, ts time.Time, fx *sideEffects) error {
	reg := &domain.WorkRegistration{
		BikeID:       bike.ID,
		RepairTypeID: rt.ID,
	}
	if bike.IsSalesBike {
		reg.Complete(actorID, ts)
	}
	created, err := tx.Registrations().CreateRegistration(ctx, reg)
	if err != nil {
		return err
	}
	fx.regsCreated = append(fx.regsCreated, created.ID)
	if created.Completed {
		item, err := consumeStock(ctx, tx, rt.ID)
		if err != nil {
			return err
		}
		fx.consumed(item)
	}
	return nil
}

func (s *WorkflowService) bookDiagnosis(ctx context.Context, tx ports.Store, bike *domain.Bike, actorID uuid.UUID, ts time.Time, fx *sideEffects) error {
	diag, err := tx.RepairTypes().GetRepairTypeByName(ctx, domain.DiagnoseRepairTypeName)
	if err != nil {
		return fmt.Errorf("diagnose repair type missing from catalog: %w", err)
	}
	reg := &domain.WorkRegistration{BikeID: bike.ID, RepairTypeID: diag.ID}
	reg.Complete(actorID, ts)
	created, err := tx.Registrations().CreateRegistration(ctx, reg)
	if err != nil {
		return err
	}
	fx.regsCreated = append(fx.regsCreated, created.ID)
	return nil
}

// FireEvent applies event to the bike on behalf of actorID.
func (s *WorkflowService) FireEvent(ctx context.Context, actorID, bikeID uuid.UUID, event domain.WorkflowEvent) (*domain.Bike, error) {
	return s.apply(ctx, actorID, bikeID, func(from domain.WorkflowStatus) (domain.Transition, error) {
		return domain.NextTransition(from, event)
	})
}

// TransitionTo moves the bike to status using the single table row that connects them.
func (s *WorkflowService) TransitionTo(ctx context.Context, actorID, bikeID uuid.UUID, status domain.WorkflowStatus) (*domain.Bike, error) {
	return s.apply(ctx, actorID, bikeID, func(from domain.WorkflowStatus) (domain.Transition, error) {
		return domain.TransitionTo(from, status)
	})
}

func (s *WorkflowService) apply(ctx context.Context, actorID, bikeID uuid.UUID, resolve func(domain.WorkflowStatus) (domain.Transition, error)) (*domain.Bike, error) {
	var (
		updated *domain.Bike
		from    domain.WorkflowStatus
	)
	fx := &sideEffects{}
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		bike, err := tx.Bikes().GetBikeForUpdate(ctx, bikeID)
		if err != nil {
			return err
		}
		from = bike.WorkflowStatus

		t, err := resolve(from)
		if err != nil {
			return err
		}

		if t.RequiresChecklist {
			if err := s.checkChecklist(ctx, tx, bike.ID); err != nil {
				return err
			}
		}

		ts := s.now()
		if t.StampsDiagnosis && !bike.IsDiagnosed() {
			bike.DiagnosedBy = &actorID
			bike.DiagnosedAt = &ts
			if err := s.bookDiagnosis(ctx, tx, bike, actorID, ts, fx); err != nil {
				return err
			}
		}

		if t.ForceCompletes {
			if err := s.forceComplete(ctx, tx, bike.ID, actorID, ts, fx); err != nil {
				return err
			}
		}

		switch {
		case t.ClaimsMechanic:
			bike.CurrentMechanicID = &actorID
		case t.ClearsMechanic:
			bike.CurrentMechanicID = nil
		}
		bike.WorkflowStatus = t.To

		updated, err = tx.Bikes().UpdateBike(ctx, bike)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to transition bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
			"from":    from,
		})
		return nil, err
	}

	s.invalidate(bikeCacheKey(bikeID))
	s.publish(ctx, domain.TableBikes, domain.ChangeUpdate, bikeID)
	s.flush(ctx, fx)
	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(updated.WorkflowStatus))
	}

	s.logger.Info("Bike transitioned", map[string]interface{}{
		"bike_id": bikeID,
		"from":    from,
		"to":      updated.WorkflowStatus,
		"actor":   actorID,
	})

	return updated, nil
}

func (s *WorkflowService) checkChecklist(ctx context.Context, tx ports.Store, bikeID uuid.UUID) error {
	items, err := tx.Checklist().ListChecklistItems(ctx, true)
	if err != nil {
		return err
	}
	completions, err := tx.Checklist().ListCompletions(ctx, bikeID)
	if err != nil {
		return err
	}
	missing := domain.MissingChecklistItems(items, completions)
	if len(missing) == 0 {
		return nil
	}
	labels := make([]string, len(missing))
	for i, it := range missing {
		labels[i] = it.Label
	}
	return fmt.Errorf("%w: missing %s", domain.ErrChecklistIncomplete, strings.Join(labels, ", "))
}

func (s *WorkflowService) forceComplete(ctx context.Context, tx ports.Store, bikeID, actorID uuid.UUID, ts time.Time, fx *sideEffects) error {
	regs, err := tx.Registrations().ListRegistrationsByBike(ctx, bikeID)
	if err != nil {
		return err
	}
	for _, reg := range regs {
		if reg.Completed {
			continue
		}
		reg.Complete(actorID, ts)
		done, err := tx.Registrations().CompletePendingRegistration(ctx, reg)
		if err != nil {
			return err
		}
		if !done {
			continue
		}
		fx.regsCompleted = append(fx.regsCompleted, reg.ID)
		item, err := consumeStock(ctx, tx, reg.RepairTypeID)
		if err != nil {
			return err
		}
		fx.consumed(item)
	}
	return nil
}

// AddRepairs books further repairs on an existing bike.
func (s *WorkflowService) AddRepairs(ctx context.Context, actorID, bikeID uuid.UUID, repairTypeIDs []uuid.UUID) ([]*domain.WorkRegistration, error) {
	if len(repairTypeIDs) == 0 {
		return nil, fmt.Errorf("%w: no repair types selected", domain.ErrValidation)
	}

	fx := &sideEffects{}
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		bike, err := tx.Bikes().GetBikeForUpdate(ctx, bikeID)
		if err != nil {
			return err
		}
		if bike.WorkflowStatus == domain.StatusAfgerond {
			return fmt.Errorf("%w: bike is finished, reopen it first", domain.ErrInvalidTransition)
		}
		repairTypes, err := s.resolveRepairTypes(ctx, tx, bike.Model, repairTypeIDs)
		if err != nil {
			return err
		}
		ts := s.now()
		for _, rt := range repairTypes {
			if err := s.bookRepair(ctx, tx, bike, rt, actorID, ts, fx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to add repairs", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	s.flush(ctx, fx)

	regs := make([]*domain.WorkRegistration, 0, len(fx.regsCreated))
	for _, id := range fx.regsCreated {
		reg, err := s.store.Registrations().GetRegistrationByID(ctx, id)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	s.logger.Info("Repairs added", map[string]interface{}{
		"bike_id": bikeID,
		"count":   len(regs),
	})

	return regs, nil
}

// CompleteRegistration marks one pending repair as performed by actorID. Only bikes the
// customer approved accept completions.
func (s *WorkflowService) CompleteRegistration(ctx context.Context, actorID, regID uuid.UUID) (*domain.WorkRegistration, error) {
	var completed *domain.WorkRegistration
	fx := &sideEffects{}
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		reg, err := tx.Registrations().GetRegistrationByID(ctx, regID)
		if err != nil {
			return err
		}
		bike, err := tx.Bikes().GetBikeForUpdate(ctx, reg.BikeID)
		if err != nil {
			return err
		}
		if reg.Completed {
			return fmt.Errorf("registration %s: %w", regID, domain.ErrRegistrationCompleted)
		}
		if !bike.WorkflowStatus.AcceptsCompletions() {
			return fmt.Errorf("bike in %s: %w", bike.WorkflowStatus, domain.ErrApprovalPending)
		}

		reg.Complete(actorID, s.now())
		done, err := tx.Registrations().CompletePendingRegistration(ctx, reg)
		if err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("registration %s: %w", regID, domain.ErrAlreadyCompleted)
		}
		fx.regsCompleted = append(fx.regsCompleted, reg.ID)

		item, err := consumeStock(ctx, tx, reg.RepairTypeID)
		if err != nil {
			return err
		}
		fx.consumed(item)
		completed = reg
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to complete registration", map[string]interface{}{
			"error":           err.Error(),
			"registration_id": regID,
		})
		return nil, err
	}

	s.flush(ctx, fx)

	s.logger.Info("Registration completed", map[string]interface{}{
		"registration_id": regID,
		"bike_id":         completed.BikeID,
		"mechanic_id":     actorID,
	})

	return completed, nil
}

// DeletePendingRegistration removes a repair that has not been performed yet.
func (s *WorkflowService) DeletePendingRegistration(ctx context.Context, regID uuid.UUID) error {
	deleted, err := s.store.Registrations().DeletePendingRegistration(ctx, regID)
	if err != nil {
		s.logger.Error("Failed to delete registration", map[string]interface{}{
			"error":           err.Error(),
			"registration_id": regID,
		})
		return err
	}
	if !deleted {
		reg, err := s.store.Registrations().GetRegistrationByID(ctx, regID)
		if err != nil {
			return err
		}
		if reg.Completed {
			return fmt.Errorf("registration %s: %w", regID, domain.ErrRegistrationCompleted)
		}
		return fmt.Errorf("registration %s: %w", regID, domain.ErrConflict)
	}

	s.publish(ctx, domain.TableWorkRegistrations, domain.ChangeDelete, regID)

	s.logger.Info("Registration deleted", map[string]interface{}{
		"registration_id": regID,
	})
	return nil
}

// PendingRepairs is the pending-repairs-by-bike read model.
func (s *WorkflowService) PendingRepairs(ctx context.Context, bikeID uuid.UUID) ([]domain.PendingRepair, error) {
	regs, err := s.store.Registrations().ListRegistrationsByBike(ctx, bikeID)
	if err != nil {
		s.logger.Error("Failed to list registrations", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	names := map[uuid.UUID]*domain.RepairType{}
	out := []domain.PendingRepair{}
	for _, reg := range regs {
		if reg.Completed {
			continue
		}
		rt, ok := names[reg.RepairTypeID]
		if !ok {
			rt, err = s.store.RepairTypes().GetRepairTypeByID(ctx, reg.RepairTypeID)
			if err != nil {
				return nil, err
			}
			names[reg.RepairTypeID] = rt
		}
		out = append(out, domain.PendingRepair{
			RegistrationID: reg.ID,
			RepairTypeID:   rt.ID,
			RepairTypeName: rt.Name,
			Points:         rt.Points,
			CreatedAt:      reg.CreatedAt,
		})
	}
	return out, nil
}

// AssignTable sets or clears the table of a bike. A table put on a finished bike reopens
// it for a fresh diagnosis. A mechanic given here is kept regardless of status.
func (s *WorkflowService) AssignTable(ctx context.Context, actorID, bikeID uuid.UUID, table *string, mechanicID *uuid.UUID) (*domain.Bike, error) {
	table = normalizeTable(table)
	if table != nil && len(*table) > 16 {
		return nil, fmt.Errorf("%w: table number too long", domain.ErrValidation)
	}

	var (
		updated  *domain.Bike
		from     domain.WorkflowStatus
		reopened bool
	)
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		bike, err := tx.Bikes().GetBikeForUpdate(ctx, bikeID)
		if err != nil {
			return err
		}
		from = bike.WorkflowStatus
		bike.TableNumber = table

		if table != nil && bike.WorkflowStatus == domain.StatusAfgerond {
			t, err := domain.NextTransition(bike.WorkflowStatus, domain.EventReopen)
			if err != nil {
				return err
			}
			bike.WorkflowStatus = t.To
			bike.CurrentMechanicID = nil
			reopened = true
			if err := tx.Checklist().DeleteCompletionsByBike(ctx, bike.ID); err != nil {
				return err
			}
		}

		if mechanicID != nil {
			p, err := tx.Profiles().GetProfileByID(ctx, *mechanicID)
			if err != nil {
				return err
			}
			if !p.Active {
				return fmt.Errorf("mechanic %s: %w", p.ID, domain.ErrInactiveProfile)
			}
			bike.CurrentMechanicID = mechanicID
		}

		updated, err = tx.Bikes().UpdateBike(ctx, bike)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to assign table", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	s.invalidate(bikeCacheKey(bikeID))
	s.publish(ctx, domain.TableBikes, domain.ChangeUpdate, bikeID)
	if reopened {
		s.publish(ctx, domain.TableChecklist, domain.ChangeDelete, bikeID)
		if s.metrics != nil {
			s.metrics.RecordTransition(string(from), string(updated.WorkflowStatus))
		}
	}

	s.logger.Info("Table assigned", map[string]interface{}{
		"bike_id":  bikeID,
		"table":    table,
		"reopened": reopened,
		"actor":    actorID,
	})

	return updated, nil
}

func normalizeTable(table *string) *string {
	if table == nil {
		return nil
	}
	t := strings.TrimSpace(*table)
	if t == "" {
		return nil
	}
	return &t
}
