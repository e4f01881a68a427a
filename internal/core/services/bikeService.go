package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// BikeService serves the read side of the bike board and the front-of-house tools that
// do not move a bike through the workflow.
type BikeService struct {
	store    ports.Store
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
	notifier
}

func NewBikeService(
	store ports.Store,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	feed ports.ChangeFeed,
) *BikeService {
	return &BikeService{
		store:    store,
		logger:   logger,
		validate: validate,
		cache:    cache,
		notifier: notifier{logger: logger, cache: cache, feed: feed},
	}
}

func (s *BikeService) GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	cacheKey := bikeCacheKey(bikeID)
	cachedData, err := s.cache.Get(cacheKey)
	if err == nil {
		var cachedBike domain.Bike
		if err := json.Unmarshal(cachedData, &cachedBike); err == nil {
			s.logger.Debug("Bike found in cache", map[string]interface{}{
				"bike_id": bikeID,
			})
			return &cachedBike, nil
		}
	}

	bike, err := s.store.Bikes().GetBikeByID(ctx, bikeID)
	if err != nil {
		s.logger.Error("Failed to get bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	bikeData, err := json.Marshal(bike)
	if err != nil {
		s.logger.Warn("Failed to marshal bike for cache", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
	} else if err := s.cache.Set(cacheKey, bikeData, 15*time.Minute); err != nil {
		s.logger.Warn("Failed to cache bike", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
	}

	return bike, nil
}

func (s *BikeService) GetBikeByFrameNumber(ctx context.Context, frameNumber string) (*domain.Bike, error) {
	bike, err := s.store.Bikes().GetBikeByFrameNumber(ctx, strings.TrimSpace(frameNumber))
	if err != nil {
		s.logger.Error("Failed to get bike by frame number", map[string]interface{}{
			"error":        err.Error(),
			"frame_number": frameNumber,
		})
		return nil, err
	}
	return bike, nil
}

func (s *BikeService) ListBikes(ctx context.Context, status *domain.WorkflowStatus) ([]*domain.Bike, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *status)
	}
	bikes, err := s.store.Bikes().ListBikes(ctx, status)
	if err != nil {
		s.logger.Error("Failed to list bikes", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return bikes, nil
}

// ListByTable is the bikes-by-table read model, ordered by table number.
func (s *BikeService) ListByTable(ctx context.Context) ([]domain.TableGroup, error) {
	bikes, err := s.store.Bikes().ListBikesWithTable(ctx)
	if err != nil {
		s.logger.Error("Failed to list bikes by table", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	index := map[string]int{}
	groups := []domain.TableGroup{}
	for _, b := range bikes {
		if b.TableNumber == nil {
			continue
		}
		i, ok := index[*b.TableNumber]
		if !ok {
			i = len(groups)
			index[*b.TableNumber] = i
			groups = append(groups, domain.TableGroup{TableNumber: *b.TableNumber})
		}
		groups[i].Bikes = append(groups[i].Bikes, b)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].TableNumber < groups[j].TableNumber })
	return groups, nil
}

// DeleteBikes removes the bikes and every row owned by them in one transaction.
func (s *BikeService) DeleteBikes(ctx context.Context, bikeIDs []uuid.UUID) error {
	if len(bikeIDs) == 0 {
		return fmt.Errorf("%w: no bikes selected", domain.ErrValidation)
	}

	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		for _, id := range bikeIDs {
			if err := tx.Checklist().DeleteCompletionsByBike(ctx, id); err != nil {
				return err
			}
			if err := tx.Comments().DeleteCommentsByBike(ctx, id); err != nil {
				return err
			}
			if err := tx.Calls().DeleteCallsByBike(ctx, id); err != nil {
				return err
			}
			if err := tx.Registrations().DeleteRegistrationsByBike(ctx, id); err != nil {
				return err
			}
			if err := tx.Bikes().DeleteBike(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete bikes", map[string]interface{}{
			"error": err.Error(),
			"count": len(bikeIDs),
		})
		return err
	}

	for _, id := range bikeIDs {
		s.invalidate(bikeCacheKey(id))
		s.publish(ctx, domain.TableBikes, domain.ChangeDelete, id)
	}

	s.logger.Info("Bikes deleted", map[string]interface{}{
		"count": len(bikeIDs),
	})
	return nil
}

func (s *BikeService) AddComment(ctx context.Context, authorID, bikeID uuid.UUID, body string) (*domain.Comment, error) {
	comment := &domain.Comment{BikeID: bikeID, AuthorID: authorID, Body: strings.TrimSpace(body)}
	if err := s.validate.Struct(comment); err != nil {
		s.logger.Error("Comment validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, validationError(err)
	}
	if _, err := s.store.Bikes().GetBikeByID(ctx, bikeID); err != nil {
		return nil, err
	}

	created, err := s.store.Comments().CreateComment(ctx, comment)
	if err != nil {
		s.logger.Error("Failed to create comment", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	s.publish(ctx, domain.TableComments, domain.ChangeInsert, created.ID)
	return created, nil
}

func (s *BikeService) ListComments(ctx context.Context, bikeID uuid.UUID) ([]*domain.Comment, error) {
	return s.store.Comments().ListCommentsByBike(ctx, bikeID)
}

func (s *BikeService) ListCallStatuses(ctx context.Context) ([]*domain.CallStatus, error) {
	return s.store.Calls().ListCallStatuses(ctx)
}

// RecordCall logs a customer call and makes its outcome the bike's current call status.
func (s *BikeService) RecordCall(ctx context.Context, actorID, bikeID, callStatusID uuid.UUID, notes string) (*domain.CallRecord, error) {
	rec := &domain.CallRecord{
		BikeID:       bikeID,
		CallStatusID: callStatusID,
		Notes:        strings.TrimSpace(notes),
		CalledBy:     actorID,
	}
	if err := s.validate.Struct(rec); err != nil {
		return nil, validationError(err)
	}

	var created *domain.CallRecord
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		if _, err := tx.Calls().GetCallStatusByID(ctx, callStatusID); err != nil {
			return err
		}
		bike, err := tx.Bikes().GetBikeForUpdate(ctx, bikeID)
		if err != nil {
			return err
		}
		created, err = tx.Calls().CreateCallRecord(ctx, rec)
		if err != nil {
			return err
		}
		bike.CallStatusID = &callStatusID
		_, err = tx.Bikes().UpdateBike(ctx, bike)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to record call", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	s.invalidate(bikeCacheKey(bikeID))
	s.publish(ctx, domain.TableCallHistory, domain.ChangeInsert, created.ID)
	s.publish(ctx, domain.TableBikes, domain.ChangeUpdate, bikeID)

	s.logger.Info("Call recorded", map[string]interface{}{
		"bike_id":        bikeID,
		"call_status_id": callStatusID,
	})
	return created, nil
}

func (s *BikeService) ListCalls(ctx context.Context, bikeID uuid.UUID) ([]*domain.CallRecord, error) {
	return s.store.Calls().ListCallsByBike(ctx, bikeID)
}

func (s *BikeService) CreateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	item.Label = strings.TrimSpace(item.Label)
	if err := s.validate.Struct(item); err != nil {
		return nil, validationError(err)
	}
	created, err := s.store.Checklist().CreateChecklistItem(ctx, item)
	if err != nil {
		s.logger.Error("Failed to create checklist item", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	s.logger.Info("Checklist item created", map[string]interface{}{
		"item_id": created.ID,
		"label":   created.Label,
	})
	return created, nil
}

func (s *BikeService) UpdateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	item.Label = strings.TrimSpace(item.Label)
	if err := s.validate.Struct(item); err != nil {
		return nil, validationError(err)
	}
	updated, err := s.store.Checklist().UpdateChecklistItem(ctx, item)
	if err != nil {
		s.logger.Error("Failed to update checklist item", map[string]interface{}{
			"error":   err.Error(),
			"item_id": item.ID,
		})
		return nil, err
	}
	return updated, nil
}

func (s *BikeService) ListChecklistItems(ctx context.Context, activeOnly bool) ([]*domain.ChecklistItem, error) {
	return s.store.Checklist().ListChecklistItems(ctx, activeOnly)
}

// SetChecklistItem checks or unchecks one checklist item for a bike.
func (s *BikeService) SetChecklistItem(ctx context.Context, actorID, bikeID, itemID uuid.UUID, done bool) error {
	if _, err := s.store.Bikes().GetBikeByID(ctx, bikeID); err != nil {
		return err
	}
	var err error
	if done {
		err = s.store.Checklist().UpsertCompletion(ctx, &domain.ChecklistCompletion{
			BikeID:          bikeID,
			ChecklistItemID: itemID,
			CompletedBy:     actorID,
			CompletedAt:     time.Now().UTC(),
		})
	} else {
		err = s.store.Checklist().DeleteCompletion(ctx, bikeID, itemID)
	}
	if err != nil {
		s.logger.Error("Failed to update checklist", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
			"item_id": itemID,
		})
		return err
	}

	typ := domain.ChangeInsert
	if !done {
		typ = domain.ChangeDelete
	}
	s.publish(ctx, domain.TableChecklist, typ, bikeID)
	return nil
}

// BikeChecklist lists every active item with its completion state for the bike.
func (s *BikeService) BikeChecklist(ctx context.Context, bikeID uuid.UUID) ([]domain.ChecklistLine, error) {
	items, err := s.store.Checklist().ListChecklistItems(ctx, true)
	if err != nil {
		return nil, err
	}
	completions, err := s.store.Checklist().ListCompletions(ctx, bikeID)
	if err != nil {
		return nil, err
	}
	by := make(map[uuid.UUID]*domain.ChecklistCompletion, len(completions))
	for _, c := range completions {
		by[c.ChecklistItemID] = c
	}
	lines := make([]domain.ChecklistLine, 0, len(items))
	for _, it := range items {
		line := domain.ChecklistLine{Item: *it}
		if c, ok := by[it.ID]; ok {
			line.Completed = true
			who := c.CompletedBy
			line.CompletedBy = &who
		}
		lines = append(lines, line)
	}
	return lines, nil
}
