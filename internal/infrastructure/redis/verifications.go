package redisinfra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewClient builds a client from cfg and checks connectivity.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// VerificationStore keeps the latest code per email in a Redis hash.
// Keys carry no expiry; expires_at is stored as data only.
type VerificationStore struct {
	client redis.Cmdable
}

func NewVerificationStore(client redis.Cmdable) *VerificationStore {
	return &VerificationStore{client: client}
}

func codeKey(email string) string {
	return fmt.Sprintf("verification_code:%s", email)
}

// Upsert overwrites code and expiry and bumps the revision in one MULTI/EXEC.
func (s *VerificationStore) Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*domain.VerificationCode, error) {
	key := codeKey(email)
	var rev *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"email":      email,
			"code":       code,
			"expires_at": expiresAt.Unix(),
		})
		rev = pipe.HIncrBy(ctx, key, "revision", 1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}
	return &domain.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Unix(expiresAt.Unix(), 0).UTC(),
		Revision:  rev.Val(),
	}, nil
}

// Find returns the record for email when its code equals code, else nil.
func (s *VerificationStore) Find(ctx context.Context, email, code string) (*domain.VerificationCode, error) {
	data, err := s.client.HGetAll(ctx, codeKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("get verification code: %w", err)
	}
	if len(data) == 0 || data["code"] != code {
		return nil, nil
	}
	return fromHash(email, data)
}

func fromHash(email string, data map[string]string) (*domain.VerificationCode, error) {
	exp, err := strconv.ParseInt(data["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	rev, err := strconv.ParseInt(data["revision"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse revision: %w", err)
	}
	return &domain.VerificationCode{
		Email:     email,
		Code:      data["code"],
		ExpiresAt: time.Unix(exp, 0).UTC(),
		Revision:  rev,
	}, nil
}
