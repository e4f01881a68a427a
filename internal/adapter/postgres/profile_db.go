package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const profileColumns = `id, full_name, email, role, active, password_hash, created_at, updated_at`

type ProfileRepository struct {
	db dbtx
}

func NewProfileRepository(db dbtx) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Role, &p.Active, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `INSERT INTO profiles (id, full_name, email, role, active, password_hash)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.FullName,
		p.Email,
		p.Role,
		p.Active,
		p.PasswordHash,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "profile")
	}
	return p, nil
}

func (r *ProfileRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "profile")
	}
	return p, nil
}

func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email))
	if err != nil {
		return nil, mapError(err, "profile")
	}
	return p, nil
}

func (r *ProfileRepository) ListProfiles(ctx context.Context, activeOnly bool) ([]*domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE active OR NOT $1 ORDER BY full_name`, activeOnly)
	if err != nil {
		return nil, mapError(err, "profiles")
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	query := `UPDATE profiles
		SET
			full_name = $1,
			email = $2,
			role = $3,
			active = $4,
			password_hash = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + profileColumns

	updated, err := scanProfile(r.db.QueryRowContext(ctx, query,
		p.FullName,
		p.Email,
		p.Role,
		p.Active,
		p.PasswordHash,
		p.ID,
	))
	if err != nil {
		return nil, mapError(err, "profile")
	}
	return updated, nil
}
