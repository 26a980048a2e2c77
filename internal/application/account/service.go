package account

import (
	"context"
	"errors"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/id"
	"github.com/samber/oops"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, req domain.LoginRequest) (token string, err error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type tokenSigner interface {
	Sign(accountID, name string) (string, error)
}

type ServiceDeps struct {
	AccountRepo accountStore
	Hasher      passwordHasher
	JWTProvider tokenSigner
}

type service struct {
	repo   accountStore
	hasher passwordHasher
	jwt    tokenSigner
	now    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:   deps.AccountRepo,
		hasher: deps.Hasher,
		jwt:    deps.JWTProvider,
		now:    time.Now,
	}
}

func errEmailExists() error {
	return domain.NewFieldError(domain.ErrConflict, "email", "Email already exists")
}

// Register creates an account for a validated request. The early lookup only
// gives a fast answer; the conditional create is what guarantees uniqueness.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Account, error) {
	errb := oops.In("account").With("email", req.Email)

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errb.Code("store_error").Wrapf(err, "look up account")
	}
	if existing != nil {
		return nil, errEmailExists()
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errb.Code("hash_error").Wrapf(err, "hash password")
	}

	a := &domain.Account{
		AccountID:    id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errEmailExists()
		}
		return nil, errb.Code("store_error").Wrapf(err, "create account")
	}
	return a, nil
}

// Login checks the credentials and returns a signed token for the account.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	errb := oops.In("account").With("email", req.Email)

	a, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", errb.Code("store_error").Wrapf(err, "look up account")
	}
	if a == nil {
		return "", domain.NewFieldError(domain.ErrNotFound, "emailnotfound", "Email not found")
	}
	if !s.hasher.Verify(req.Password, a.PasswordHash) {
		return "", domain.NewFieldError(domain.ErrUnauthorized, "passwordincorrect", "Password incorrect")
	}
	token, err := s.jwt.Sign(a.AccountID, a.Name)
	if err != nil {
		return "", errb.Code("sign_error").With("account_id", a.AccountID).Wrapf(err, "sign token")
	}
	return token, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, oops.In("account").Code("store_error").With("account_id", accountID).Wrapf(err, "get account")
	}
	return a, nil
}
