package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/pkg/pagination"
)

// SaleQueueRepository is the narrow interface over the terminal's local
// durable store for finalized sales. Each record is independent; no operation
// spans more than the IDs it is given.
type SaleQueueRepository interface {
	// Save writes a finalized sale and its items. It is the first step of
	// every checkout, before any network attempt.
	Save(ctx context.Context, sale *entity.PendingSale) error
	// GetByLocalID returns a sale with its items, or nil if absent.
	GetByLocalID(ctx context.Context, localID uuid.UUID) (*entity.PendingSale, error)
	// ListPending returns all pending sales with items, oldest first.
	ListPending(ctx context.Context) ([]entity.PendingSale, error)
	// ListPendingPage returns a page of pending sales for the API.
	ListPendingPage(ctx context.Context, params *pagination.PaginationParams) ([]entity.PendingSale, int64, error)
	// MarkSynced transitions the given sales to synced.
	MarkSynced(ctx context.Context, localIDs []uuid.UUID) error
	// DeleteSynced removes the given sales, but only rows already synced.
	DeleteSynced(ctx context.Context, localIDs []uuid.UUID) error
	// ListSynced returns sales stuck in synced (a crash between mark and
	// delete); the startup sweep clears them.
	ListSynced(ctx context.Context) ([]entity.PendingSale, error)
	// CountPending returns the size of the offline backlog.
	CountPending(ctx context.Context) (int64, error)
}
