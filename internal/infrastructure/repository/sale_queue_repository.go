package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	domainRepo "github.com/kassahq/terminal-api/internal/domain/repository"
	"github.com/kassahq/terminal-api/pkg/pagination"
	"gorm.io/gorm"
)

type saleQueueRepository struct {
	db *gorm.DB
}

// NewSaleQueueRepository creates a new sale queue repository
func NewSaleQueueRepository(db *gorm.DB) domainRepo.SaleQueueRepository {
	return &saleQueueRepository{db: db}
}

func (r *saleQueueRepository) Save(ctx context.Context, sale *entity.PendingSale) error {
	// Sale and items land together or not at all
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := sale.Items
		sale.Items = nil
		if err := tx.Create(sale).Error; err != nil {
			sale.Items = items
			return err
		}
		sale.Items = items
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *saleQueueRepository) GetByLocalID(ctx context.Context, localID uuid.UUID) (*entity.PendingSale, error) {
	var sale entity.PendingSale
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "local_id = ?", localID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleQueueRepository) ListPending(ctx context.Context) ([]entity.PendingSale, error) {
	var sales []entity.PendingSale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", entity.SyncStatusPending).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleQueueRepository) ListPendingPage(ctx context.Context, params *pagination.PaginationParams) ([]entity.PendingSale, int64, error) {
	var sales []entity.PendingSale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PendingSale{}).
		Where("status = ?", entity.SyncStatusPending)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items").
		Order("created_at ASC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleQueueRepository) MarkSynced(ctx context.Context, localIDs []uuid.UUID) error {
	if len(localIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.PendingSale{}).
		Where("local_id IN ?", localIDs).
		Update("status", entity.SyncStatusSynced).Error
}

func (r *saleQueueRepository) DeleteSynced(ctx context.Context, localIDs []uuid.UUID) error {
	if len(localIDs) == 0 {
		return nil
	}
	// Guarded by status: a pending row is never deleted by cleanup
	return r.db.WithContext(ctx).
		Where("local_id IN ? AND status = ?", localIDs, entity.SyncStatusSynced).
		Delete(&entity.PendingSale{}).Error
}

func (r *saleQueueRepository) ListSynced(ctx context.Context) ([]entity.PendingSale, error) {
	var sales []entity.PendingSale
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.SyncStatusSynced).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleQueueRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.PendingSale{}).
		Where("status = ?", entity.SyncStatusPending).
		Count(&count).Error
	return count, err
}
