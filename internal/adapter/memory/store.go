// Package memory keeps every table in process memory. It backs STORAGE_DRIVER=memory
// runs and the service test-suites.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

type completionKey struct {
	bike uuid.UUID
	item uuid.UUID
}

type tables struct {
	bikes          map[uuid.UUID]domain.Bike
	registrations  map[uuid.UUID]domain.WorkRegistration
	repairTypes    map[uuid.UUID]domain.RepairType
	checklistItems map[uuid.UUID]domain.ChecklistItem
	completions    map[completionKey]domain.ChecklistCompletion
	items          map[uuid.UUID]domain.InventoryItem
	groups         map[uuid.UUID]domain.InventoryGroup
	tasks          map[uuid.UUID]domain.FohTask
	taskSeq        int64
	availability   map[uuid.UUID]domain.MechanicAvailability
	profiles       map[uuid.UUID]domain.Profile
	comments       map[uuid.UUID]domain.Comment
	callStatuses   map[uuid.UUID]domain.CallStatus
	calls          map[uuid.UUID]domain.CallRecord
}

func newTables() *tables {
	return &tables{
		bikes:          map[uuid.UUID]domain.Bike{},
		registrations:  map[uuid.UUID]domain.WorkRegistration{},
		repairTypes:    map[uuid.UUID]domain.RepairType{},
		checklistItems: map[uuid.UUID]domain.ChecklistItem{},
		completions:    map[completionKey]domain.ChecklistCompletion{},
		items:          map[uuid.UUID]domain.InventoryItem{},
		groups:         map[uuid.UUID]domain.InventoryGroup{},
		tasks:          map[uuid.UUID]domain.FohTask{},
		availability:   map[uuid.UUID]domain.MechanicAvailability{},
		profiles:       map[uuid.UUID]domain.Profile{},
		comments:       map[uuid.UUID]domain.Comment{},
		callStatuses:   map[uuid.UUID]domain.CallStatus{},
		calls:          map[uuid.UUID]domain.CallRecord{},
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// clone copies every table. Rows are stored by value and replaced, never mutated in
// place, so a shallow copy per map is a full snapshot.
func (t *tables) clone() *tables {
	return &tables{
		bikes:          cloneMap(t.bikes),
		registrations:  cloneMap(t.registrations),
		repairTypes:    cloneMap(t.repairTypes),
		checklistItems: cloneMap(t.checklistItems),
		completions:    cloneMap(t.completions),
		items:          cloneMap(t.items),
		groups:         cloneMap(t.groups),
		tasks:          cloneMap(t.tasks),
		taskSeq:        t.taskSeq,
		availability:   cloneMap(t.availability),
		profiles:       cloneMap(t.profiles),
		comments:       cloneMap(t.comments),
		callStatuses:   cloneMap(t.callStatuses),
		calls:          cloneMap(t.calls),
	}
}

type database struct {
	mu sync.Mutex
	t  *tables
}

type Store struct {
	db   *database
	inTx bool
}

var _ ports.Store = (*Store)(nil)

// NewStore returns an empty store seeded with the Diagnose repair type and the default
// call statuses.
func NewStore() *Store {
	t := newTables()
	diag := domain.RepairType{
		ID:        uuid.New(),
		Name:      domain.DiagnoseRepairTypeName,
		Points:    domain.DiagnosisBonusPoints,
		CreatedAt: now(),
	}
	t.repairTypes[diag.ID] = diag
	for _, label := range []string{"Gebeld", "Geen gehoor", "Voicemail ingesproken", "Klant belt terug"} {
		cs := domain.CallStatus{ID: uuid.New(), Label: label}
		t.callStatuses[cs.ID] = cs
	}
	return &Store{db: &database{t: t}}
}

func now() time.Time {
	return time.Now().UTC()
}

func (s *Store) run(fn func(t *tables) error) error {
	if !s.inTx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return fn(s.db.t)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.t.clone()
	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.t = snapshot
		return err
	}
	return nil
}

func (s *Store) Bikes() ports.BikeRepository                     { return bikeRepo{s} }
func (s *Store) Registrations() ports.WorkRegistrationRepository { return registrationRepo{s} }
func (s *Store) RepairTypes() ports.RepairTypeRepository         { return repairTypeRepo{s} }
func (s *Store) Checklist() ports.ChecklistRepository            { return checklistRepo{s} }
func (s *Store) Inventory() ports.InventoryRepository            { return inventoryRepo{s} }
func (s *Store) Tasks() ports.TaskRepository                     { return taskRepo{s} }
func (s *Store) Availability() ports.AvailabilityRepository      { return availabilityRepo{s} }
func (s *Store) Profiles() ports.ProfileRepository               { return profileRepo{s} }
func (s *Store) Comments() ports.CommentRepository               { return commentRepo{s} }
func (s *Store) Calls() ports.CallRepository                     { return callRepo{s} }
