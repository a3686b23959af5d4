package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	domainRepo "github.com/kassahq/terminal-api/internal/domain/repository"
	"github.com/kassahq/terminal-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const productListCacheKey = "terminal:products"

type productCacheRepository struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewProductCacheRepository creates a product catalog repository backed by the
// local database with a Redis read-through cache for the unfiltered list.
func NewProductCacheRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) domainRepo.ProductCacheRepository {
	return &productCacheRepository{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

func (r *productCacheRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Product, int64, error) {
	// The first page of the unfiltered list is the register's hot path; serve
	// it from Redis when possible.
	params.Validate()
	if search == "" && params.Page == 1 && r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, productListCacheKey).Bytes(); err == nil {
			var products []entity.Product
			if json.Unmarshal(cached, &products) == nil {
				total := int64(len(products))
				if len(products) > params.PerPage {
					products = products[:params.PerPage]
				}
				return products, total, nil
			}
		}
	}

	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).Where("is_active = ?", true)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	if search == "" && params.Page == 1 {
		r.primeCache(ctx)
	}

	return products, total, nil
}

func (r *productCacheRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productCacheRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productCacheRepository) ReplaceAll(ctx context.Context, products []entity.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&entity.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			UpdateAll: true,
		}).Create(&products).Error
	})
	if err != nil {
		return err
	}

	r.invalidateCache(ctx)
	return nil
}

func (r *productCacheRepository) primeCache(ctx context.Context) {
	if r.rdb == nil {
		return
	}
	var all []entity.Product
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&all).Error; err != nil {
		return
	}
	payload, err := json.Marshal(all)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, productListCacheKey, payload, r.cacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to prime product cache: %v", err)
	}
}

func (r *productCacheRepository) invalidateCache(ctx context.Context) {
	if r.rdb == nil {
		return
	}
	if err := r.rdb.Del(ctx, productListCacheKey).Err(); err != nil {
		log.Printf("Warning: failed to invalidate product cache: %v", err)
	}
}
