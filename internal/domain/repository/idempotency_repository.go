package repository

import (
	"context"

	"github.com/kassahq/terminal-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key record
	GetByKey(ctx context.Context, key string) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key with its cached response
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired keys
	DeleteExpired(ctx context.Context) error
}
