package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

type ProfileService struct {
	store    ports.Store
	logger   ports.LoggerPort
	validate *validator.Validate
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
}

func NewProfileService(
	store ports.Store,
	logger ports.LoggerPort,
	validate *validator.Validate,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
) *ProfileService {
	return &ProfileService{
		store:    store,
		logger:   logger,
		validate: validate,
		hasher:   hasher,
		tokens:   tokens,
	}
}

func (s *ProfileService) CreateProfile(ctx context.Context, in *domain.NewProfile) (*domain.Profile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Profile validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, validationError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	created, err := s.store.Profiles().CreateProfile(ctx, &domain.Profile{
		ID:           uuid.New(),
		FullName:     in.FullName,
		Email:        in.Email,
		Role:         in.Role,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		s.logger.Error("Failed to create profile", map[string]interface{}{
			"error": err.Error(),
			"email": in.Email,
		})
		return nil, err
	}

	s.logger.Info("Profile created", map[string]interface{}{
		"profile_id": created.ID,
		"role":       created.Role,
	})
	return created, nil
}

// Login checks the credentials and issues a token for the profile.
func (s *ProfileService) Login(ctx context.Context, email, password string) (string, *domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := s.store.Profiles().GetProfileByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !s.hasher.Compare(p.PasswordHash, password) {
		s.logger.Warn("Login rejected", map[string]interface{}{
			"profile_id": p.ID,
		})
		return "", nil, domain.ErrInvalidCredentials
	}
	if !p.Active {
		return "", nil, domain.ErrInactiveProfile
	}

	token, err := s.tokens.CreateToken(p)
	if err != nil {
		s.logger.Error("Failed to create token", map[string]interface{}{
			"error":      err.Error(),
			"profile_id": p.ID,
		})
		return "", nil, err
	}

	s.logger.Info("Profile logged in", map[string]interface{}{
		"profile_id": p.ID,
	})
	return token, p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.store.Profiles().GetProfileByID(ctx, id)
}

func (s *ProfileService) ListProfiles(ctx context.Context, activeOnly bool) ([]*domain.Profile, error) {
	return s.store.Profiles().ListProfiles(ctx, activeOnly)
}

// SetActive enables or disables a profile. Inactive profiles cannot log in or be assigned.
func (s *ProfileService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Profile, error) {
	var updated *domain.Profile
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		p, err := tx.Profiles().GetProfileByID(ctx, id)
		if err != nil {
			return err
		}
		p.Active = active
		updated, err = tx.Profiles().UpdateProfile(ctx, p)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to update profile", map[string]interface{}{
			"error":      err.Error(),
			"profile_id": id,
		})
		return nil, err
	}
	s.logger.Info("Profile activation changed", map[string]interface{}{
		"profile_id": id,
		"active":     active,
	})
	return updated, nil
}

// EnsureAdmin creates the bootstrap admin when no profile with email exists yet.
func (s *ProfileService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.store.Profiles().GetProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}
	_, err = s.CreateProfile(ctx, &domain.NewProfile{
		FullName: "Administrator",
		Email:    email,
		Role:     domain.Admin,
		Password: password,
	})
	return err
}
