package verification

import (
	"context"
	"time"

	"github.com/go-auth-nosql/internal/domain"
	"github.com/go-auth-nosql/internal/pkg/token"
	"github.com/samber/oops"
)

// CodeLength is the number of characters in an issued code.
const CodeLength = 8

// Notifier delivers a code to its recipient. A nil error means the message
// was accepted for delivery.
type Notifier interface {
	SendCode(ctx context.Context, to, code string) error
}

type Service interface {
	Issue(ctx context.Context, email string) (*domain.VerificationCode, error)
	Check(ctx context.Context, email, code string) (*domain.VerificationCode, error)
}

type codeStore interface {
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*domain.VerificationCode, error)
	Find(ctx context.Context, email, code string) (*domain.VerificationCode, error)
}

type ServiceDeps struct {
	Store    codeStore
	Notifier Notifier
	CodeTTL  time.Duration
}

type service struct {
	store    codeStore
	notifier Notifier
	ttl      time.Duration
	now      func() time.Time
	newCode  func(n int) (string, error)
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		store:    deps.Store,
		notifier: deps.Notifier,
		ttl:      ttl,
		now:      time.Now,
		newCode:  token.NewCode,
	}
}

// Issue generates a code for email, sends it and then records it, replacing
// any earlier code. Nothing is written when sending fails.
func (s *service) Issue(ctx context.Context, email string) (*domain.VerificationCode, error) {
	if email == "" {
		return nil, domain.NewFieldError(domain.ErrBadRequest, "email", "An email is required")
	}
	errb := oops.In("verification").With("email", email)

	code, err := s.newCode(CodeLength)
	if err != nil {
		return nil, errb.Code("code_error").Wrapf(err, "generate code")
	}
	expiresAt := s.now().Add(s.ttl)

	if err := s.notifier.SendCode(ctx, email, code); err != nil {
		return nil, errb.Code("send_error").Wrapf(err, "send verification code")
	}
	v, err := s.store.Upsert(ctx, email, code, expiresAt)
	if err != nil {
		return nil, errb.Code("store_error").Wrapf(err, "store verification code")
	}
	return v, nil
}

// Check returns the stored record when code is the latest one issued for
// email, and nil otherwise. Expiry is not enforced and the record is kept.
func (s *service) Check(ctx context.Context, email, code string) (*domain.VerificationCode, error) {
	missing := map[string]string{}
	if email == "" {
		missing["email"] = "An email is required"
	}
	if code == "" {
		missing["code"] = "A code is required"
	}
	if len(missing) > 0 {
		return nil, &domain.FieldError{Kind: domain.ErrBadRequest, Fields: missing}
	}

	v, err := s.store.Find(ctx, email, code)
	if err != nil {
		return nil, oops.In("verification").Code("store_error").With("email", email).Wrapf(err, "find verification code")
	}
	return v, nil
}
