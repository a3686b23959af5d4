package service

import (
	"context"
	"log"

	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/internal/domain/repository"
	"github.com/kassahq/terminal-api/internal/infrastructure/remote"
	"github.com/kassahq/terminal-api/pkg/apperror"
	"github.com/kassahq/terminal-api/pkg/pagination"
)

// ProductService serves the locally mirrored catalog and refreshes it from
// the back office.
type ProductService struct {
	productRepo repository.ProductCacheRepository
	gateway     remote.Gateway
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductCacheRepository, gateway remote.Gateway) *ProductService {
	return &ProductService{productRepo: productRepo, gateway: gateway}
}

// List returns a page of cached products.
func (s *ProductService) List(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// GetByCode looks a product up by its code.
func (s *ProductService) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	product, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// Refresh replaces the local mirror with a fresh catalog snapshot. Requires
// connectivity; the mirror keeps serving the old snapshot if the pull fails.
func (s *ProductService) Refresh(ctx context.Context) (int, error) {
	products, err := s.gateway.FetchProducts(ctx)
	if err != nil {
		return 0, apperror.NewAppError(502, "Catalog refresh failed: "+err.Error())
	}

	if err := s.productRepo.ReplaceAll(ctx, products); err != nil {
		return 0, err
	}

	log.Printf("Catalog refreshed: %d products mirrored", len(products))
	return len(products), nil
}
