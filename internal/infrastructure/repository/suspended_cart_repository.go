package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	domainRepo "github.com/kassahq/terminal-api/internal/domain/repository"
	"gorm.io/gorm"
)

type suspendedCartRepository struct {
	db *gorm.DB
}

// NewSuspendedCartRepository creates a new suspended cart repository
func NewSuspendedCartRepository(db *gorm.DB) domainRepo.SuspendedCartRepository {
	return &suspendedCartRepository{db: db}
}

func (r *suspendedCartRepository) Save(ctx context.Context, cart *entity.SuspendedCart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := cart.Items
		cart.Items = nil
		if err := tx.Create(cart).Error; err != nil {
			cart.Items = items
			return err
		}
		cart.Items = items
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *suspendedCartRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SuspendedCart, error) {
	var cart entity.SuspendedCart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cart, err
}

func (r *suspendedCartRepository) List(ctx context.Context) ([]entity.SuspendedCart, error) {
	var carts []entity.SuspendedCart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at ASC").
		Find(&carts).Error
	return carts, err
}

func (r *suspendedCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.SuspendedCart{}, "id = ?", id).Error
}
