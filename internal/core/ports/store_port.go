package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

// Store is the persistence boundary. Repositories obtained from the Store passed to a
// WithinTx callback share one transaction; the callback's error rolls every write back.
type Store interface {
	Bikes() BikeRepository
	Registrations() WorkRegistrationRepository
	RepairTypes() RepairTypeRepository
	Checklist() ChecklistRepository
	Inventory() InventoryRepository
	Tasks() TaskRepository
	Availability() AvailabilityRepository
	Profiles() ProfileRepository
	Comments() CommentRepository
	Calls() CallRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type BikeRepository interface {
	CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error)
	GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error)
	// GetBikeForUpdate reads the row and locks it until the surrounding transaction ends.
	GetBikeForUpdate(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error)
	GetBikeByFrameNumber(ctx context.Context, frameNumber string) (*domain.Bike, error)
	ListBikes(ctx context.Context, status *domain.WorkflowStatus) ([]*domain.Bike, error)
	ListBikesWithTable(ctx context.Context) ([]*domain.Bike, error)
	UpdateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error)
	DeleteBike(ctx context.Context, bikeID uuid.UUID) error
}

type WorkRegistrationRepository interface {
	CreateRegistration(ctx context.Context, reg *domain.WorkRegistration) (*domain.WorkRegistration, error)
	GetRegistrationByID(ctx context.Context, regID uuid.UUID) (*domain.WorkRegistration, error)
	ListRegistrationsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.WorkRegistration, error)
	ListCompletedRegistrations(ctx context.Context, bikeIDs []uuid.UUID) ([]*domain.WorkRegistration, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.WorkRegistration, error)
	// CompletePendingRegistration completes the row only while it is still pending and
	// reports whether it did.
	CompletePendingRegistration(ctx context.Context, reg *domain.WorkRegistration) (bool, error)
	DeletePendingRegistration(ctx context.Context, regID uuid.UUID) (bool, error)
	DeleteRegistrationsByBike(ctx context.Context, bikeID uuid.UUID) error
	DeleteRegistrationsByRepairType(ctx context.Context, repairTypeID uuid.UUID) error
}

type RepairTypeRepository interface {
	CreateRepairType(ctx context.Context, rt *domain.RepairType) (*domain.RepairType, error)
	GetRepairTypeByID(ctx context.Context, id uuid.UUID) (*domain.RepairType, error)
	GetRepairTypeByName(ctx context.Context, name string) (*domain.RepairType, error)
	ListRepairTypes(ctx context.Context) ([]*domain.RepairType, error)
	DeleteRepairTypeModels(ctx context.Context, repairTypeID uuid.UUID) error
	DeleteRepairType(ctx context.Context, id uuid.UUID) error
}

type ChecklistRepository interface {
	CreateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error)
	ListChecklistItems(ctx context.Context, activeOnly bool) ([]*domain.ChecklistItem, error)
	ListCompletions(ctx context.Context, bikeID uuid.UUID) ([]*domain.ChecklistCompletion, error)
	UpsertCompletion(ctx context.Context, c *domain.ChecklistCompletion) error
	DeleteCompletion(ctx context.Context, bikeID, itemID uuid.UUID) error
	DeleteCompletionsByBike(ctx context.Context, bikeID uuid.UUID) error
}

type InventoryRepository interface {
	CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	GetItemByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	GetItemByRepairType(ctx context.Context, repairTypeID uuid.UUID) (*domain.InventoryItem, error)
	ListItems(ctx context.Context) ([]*domain.InventoryItem, error)
	ListItemsByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.InventoryItem, error)
	// AdjustQuantity adds delta and stores max(result, 0).
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*domain.InventoryItem, error)
	UpdateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	DeleteItemByRepairType(ctx context.Context, repairTypeID uuid.UUID) error
	CreateGroup(ctx context.Context, group *domain.InventoryGroup) (*domain.InventoryGroup, error)
	GetGroupByID(ctx context.Context, id uuid.UUID) (*domain.InventoryGroup, error)
	ListGroups(ctx context.Context) ([]*domain.InventoryGroup, error)
}

type TaskRepository interface {
	// CreateTask assigns the next task number from the installation-wide sequence.
	CreateTask(ctx context.Context, task *domain.FohTask) (*domain.FohTask, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*domain.FohTask, error)
	ListTasksAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error)
	ListTasksCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error)
	UpdateTask(ctx context.Context, task *domain.FohTask) (*domain.FohTask, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type AvailabilityRepository interface {
	CreateAvailability(ctx context.Context, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error)
	GetAvailabilityByID(ctx context.Context, id uuid.UUID) (*domain.MechanicAvailability, error)
	ListAvailabilityByMechanic(ctx context.Context, mechanicID uuid.UUID) ([]*domain.MechanicAvailability, error)
	ListAvailabilityByStatus(ctx context.Context, status domain.AvailabilityStatus) ([]*domain.MechanicAvailability, error)
	UpdateAvailability(ctx context.Context, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error)
}

type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, activeOnly bool) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	ListCommentsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.Comment, error)
	DeleteCommentsByBike(ctx context.Context, bikeID uuid.UUID) error
}

type CallRepository interface {
	ListCallStatuses(ctx context.Context) ([]*domain.CallStatus, error)
	GetCallStatusByID(ctx context.Context, id uuid.UUID) (*domain.CallStatus, error)
	CreateCallRecord(ctx context.Context, rec *domain.CallRecord) (*domain.CallRecord, error)
	ListCallsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.CallRecord, error)
	DeleteCallsByBike(ctx context.Context, bikeID uuid.UUID) error
}
