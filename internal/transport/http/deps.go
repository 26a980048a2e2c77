package http

import (
	"context"
	"time"

	"github.com/go-auth-nosql/internal/application/verification"
	"github.com/go-auth-nosql/internal/domain"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

// VerificationRepository is the minimal interface the router requires from a verification code store.
type VerificationRepository interface {
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*domain.VerificationCode, error)
	Find(ctx context.Context, email, code string) (*domain.VerificationCode, error)
}

// TokenProvider signs tokens at login and verifies them on protected routes.
type TokenProvider interface {
	Sign(accountID, name string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// PasswordHasher hashes new passwords and checks login attempts.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo      AccountRepository
	VerificationRepo VerificationRepository
	Notifier         verification.Notifier
	Hasher           PasswordHasher
	Tokens           TokenProvider
}
