package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/internal/domain/repository"
	"github.com/kassahq/terminal-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CartService owns the register's working cart. HTTP handlers run
// concurrently, so every cart access goes through the service mutex; the cart
// value itself stays a plain single-owner object.
type CartService struct {
	mu            sync.Mutex
	cart          *entity.Cart
	productRepo   repository.ProductCacheRepository
	suspendedRepo repository.SuspendedCartRepository
}

// NewCartService creates a cart service with an empty cart
func NewCartService(
	productRepo repository.ProductCacheRepository,
	suspendedRepo repository.SuspendedCartRepository,
) *CartService {
	return &CartService{
		cart:          entity.NewCart(),
		productRepo:   productRepo,
		suspendedRepo: suspendedRepo,
	}
}

// LineItemView is a cart line enriched with derived display amounts.
type LineItemView struct {
	entity.LineItem
	LineTotal int64 `json:"line_total"`
	Discount  int64 `json:"discount"`
}

// CartView is the register UI's read model of the working cart.
type CartView struct {
	Items      []LineItemView `json:"items"`
	Total      int64          `json:"total"`
	IsReturn   bool           `json:"is_return"`
	CustomerID *uuid.UUID     `json:"customer_id,omitempty"`
}

func viewOf(cart *entity.Cart) *CartView {
	lines := cart.Items()
	items := make([]LineItemView, len(lines))
	for i := range lines {
		items[i] = LineItemView{
			LineItem:  lines[i],
			LineTotal: lines[i].LineTotal(),
			Discount:  lines[i].Discount(),
		}
	}
	return &CartView{
		Items:      items,
		Total:      cart.Total(),
		IsReturn:   cart.IsReturn(),
		CustomerID: cart.CustomerID(),
	}
}

// Snapshot returns the current cart state.
func (s *CartService) Snapshot() *CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewOf(s.cart)
}

// AddProduct adds one unit of a cached product to the cart.
func (s *CartService) AddProduct(ctx context.Context, productID uuid.UUID) (*CartView, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, apperror.NewNotFoundError("Product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.AddOrIncrement(product)
	return viewOf(s.cart), nil
}

// AddProductByCode adds one unit of a product looked up by its code (barcode
// scan path).
func (s *CartService) AddProductByCode(ctx context.Context, code string) (*CartView, error) {
	product, err := s.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, apperror.NewNotFoundError("Product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.AddOrIncrement(product)
	return viewOf(s.cart), nil
}

// SetQuantity sets a line's quantity; zero removes the line.
func (s *CartService) SetQuantity(productID uuid.UUID, quantity int) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	return viewOf(s.cart), nil
}

// ApplyNegotiatedMarkup overrides a line's tier pricing with an operator
// markup percent.
func (s *CartService) ApplyNegotiatedMarkup(productID uuid.UUID, percent decimal.Decimal) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.ApplyNegotiatedMarkup(productID, percent); err != nil {
		return nil, err
	}
	return viewOf(s.cart), nil
}

// ClearNegotiatedMarkup restores tier pricing on a line.
func (s *CartService) ClearNegotiatedMarkup(productID uuid.UUID) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.ClearNegotiatedMarkup(productID); err != nil {
		return nil, err
	}
	return viewOf(s.cart), nil
}

// Remove drops a line from the cart.
func (s *CartService) Remove(productID uuid.UUID) *CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
	return viewOf(s.cart)
}

// SetCustomer links (or unlinks) a customer.
func (s *CartService) SetCustomer(customerID *uuid.UUID) *CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetCustomer(customerID)
	return viewOf(s.cart)
}

// ToggleReturnMode flips sale/return mode, clearing the cart either way.
func (s *CartService) ToggleReturnMode() *CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.ToggleReturnMode()
	return viewOf(s.cart)
}

// Clear empties the cart.
func (s *CartService) Clear() *CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return viewOf(s.cart)
}

// Checkout runs fn with exclusive access to the cart and clears the cart if
// fn succeeds. The pipeline finalizes and locally persists the sale inside
// fn, so a local persistence failure leaves the cart intact for a retry.
func (s *CartService) Checkout(fn func(cart *entity.Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.cart); err != nil {
		return err
	}
	s.cart.Clear()
	return nil
}

// Suspend parks the current cart under a label and empties the register.
func (s *CartService) Suspend(ctx context.Context, label string) (*entity.SuspendedCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.IsEmpty() {
		return nil, apperror.ErrEmptyCart
	}

	suspended := entity.SuspendCart(s.cart, label)
	if err := s.suspendedRepo.Save(ctx, suspended); err != nil {
		return nil, err
	}

	s.cart = entity.NewCart()
	return suspended, nil
}

// ListSuspended returns all parked carts.
func (s *CartService) ListSuspended(ctx context.Context) ([]entity.SuspendedCart, error) {
	return s.suspendedRepo.List(ctx)
}

// Resume restores a parked cart as the working cart and deletes the parked
// record. The current cart must be empty so nothing is silently discarded.
func (s *CartService) Resume(ctx context.Context, id uuid.UUID) (*CartView, error) {
	suspended, err := s.suspendedRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if suspended == nil {
		return nil, apperror.NewNotFoundError("Suspended cart")
	}

	restored, err := suspended.ToCart()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cart.IsEmpty() {
		return nil, apperror.NewConflictError("Current cart is not empty")
	}

	if err := s.suspendedRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.cart = restored
	return viewOf(s.cart), nil
}
