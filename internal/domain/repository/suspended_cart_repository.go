package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
)

// SuspendedCartRepository persists parked carts in the terminal's local
// database.
type SuspendedCartRepository interface {
	Save(ctx context.Context, cart *entity.SuspendedCart) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SuspendedCart, error)
	List(ctx context.Context) ([]entity.SuspendedCart, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
