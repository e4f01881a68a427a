package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	q  dbtx
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Bikes() ports.BikeRepository                     { return NewBikeRepository(s.q) }
func (s *Store) Registrations() ports.WorkRegistrationRepository { return NewRegistrationRepository(s.q) }
func (s *Store) RepairTypes() ports.RepairTypeRepository         { return NewRepairTypeRepository(s.q) }
func (s *Store) Checklist() ports.ChecklistRepository            { return NewChecklistRepository(s.q) }
func (s *Store) Inventory() ports.InventoryRepository            { return NewInventoryRepository(s.q) }
func (s *Store) Tasks() ports.TaskRepository                     { return NewTaskRepository(s.q) }
func (s *Store) Availability() ports.AvailabilityRepository      { return NewAvailabilityRepository(s.q) }
func (s *Store) Profiles() ports.ProfileRepository               { return NewProfileRepository(s.q) }
func (s *Store) Comments() ports.CommentRepository               { return NewCommentRepository(s.q) }
func (s *Store) Calls() ports.CallRepository                     { return NewCallRepository(s.q) }

// mapError converts driver errors into domain sentinels. entity names the row kind.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%s already exists: %w", entity, domain.ErrConflict)
		case "23503":
			return fmt.Errorf("%s references a missing or still referenced row (%s): %w", entity, pqErr.Constraint, domain.ErrConflict)
		case "23502":
			return fmt.Errorf("%s: required field is missing: %w", entity, domain.ErrValidation)
		case "23514":
			return fmt.Errorf("%s: check constraint %s violated: %w", entity, pqErr.Constraint, domain.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func expectOneRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, domain.ErrNotFound)
	}
	return nil
}
