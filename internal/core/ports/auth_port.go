package ports

import "github.com/sm8ta/webike_workshop_service/internal/core/domain"

type TokenService interface {
	CreateToken(profile *domain.Profile) (string, error)
	VerifyToken(token string) (*domain.TokenPayload, error)
}

// PasswordHasher hashes and checks profile passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
