package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/juju/clock"

	"github.com/spec-kit/record-service/internal/domain"
	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// PriceFunc computes a new price from the current one.
type PriceFunc func(current float64) float64

// ProductRepository defines access to the product records.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.DeleteResult, error)
	// ApplyPriceDrift rewrites the price of id with fn under the write lock
	// and returns the product before and after the change.
	ApplyPriceDrift(ctx context.Context, id string, fn PriceFunc) (before, after *domain.Product, err error)
}

type productRepository struct {
	mu       sync.RWMutex
	clock    clock.Clock
	products records[domain.Product]
}

// NewProductRepository returns an in-memory implementation holding seed in order.
func NewProductRepository(clk clock.Clock, seed ...domain.Product) ProductRepository {
	r := &productRepository{clock: clk, products: newRecords[domain.Product]()}
	now := clk.Now()
	for _, product := range seed {
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
		if product.UpdatedAt.IsZero() {
			product.UpdatedAt = product.CreatedAt
		}
		product.SetStock(product.Stock)
		r.products.put(product.ID, product)
	}
	return r
}

func (r *productRepository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.products.list(), nil
}

func (r *productRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products.get(id)
	if !ok {
		return nil, productNotFound(id)
	}
	return &product, nil
}

// Create assigns ID, timestamps and availability to product and stores a copy of it.
func (r *productRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	product.ID = r.products.newID()
	product.SetStock(product.Stock)
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products.put(product.ID, *product)
	return nil
}

func (r *productRepository) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products.get(id)
	if !ok {
		return nil, productNotFound(id)
	}
	patch.Apply(&product)
	product.UpdatedAt = r.clock.Now()
	r.products.put(id, product)
	return &product, nil
}

func (r *productRepository) Delete(_ context.Context, id string) (*domain.DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.products.remove(id) {
		return nil, productNotFound(id)
	}
	return &domain.DeleteResult{
		Success: true,
		Message: fmt.Sprintf("Product with ID %s successfully deleted", id),
	}, nil
}

func (r *productRepository) ApplyPriceDrift(_ context.Context, id string, fn PriceFunc) (*domain.Product, *domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products.get(id)
	if !ok {
		return nil, nil, productNotFound(id)
	}
	before := product
	product.Price = fn(product.Price)
	product.UpdatedAt = r.clock.Now()
	r.products.put(id, product)
	return &before, &product, nil
}

func productNotFound(id string) error {
	return apperrors.NewNotFound(fmt.Sprintf("product with ID %s", id), map[string]any{"id": id})
}
