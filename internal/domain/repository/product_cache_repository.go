package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/pkg/pagination"
)

// ProductCacheRepository manages the locally mirrored product catalog used
// for offline lookups.
type ProductCacheRepository interface {
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// ReplaceAll swaps the cached catalog for a fresh snapshot from the back
	// office and invalidates any derived caches.
	ReplaceAll(ctx context.Context, products []entity.Product) error
}
