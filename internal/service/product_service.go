package service

import (
	"context"
	"strings"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/auth"
	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/events"
	"github.com/spec-kit/record-service/internal/query"
	"github.com/spec-kit/record-service/internal/repository"
	"github.com/spec-kit/record-service/internal/stream"
	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

// ProductService coordinates catalog workflows.
type ProductService struct {
	products  repository.ProductRepository
	generator *stream.PriceGenerator
	events    publisher
	logger    *zap.Logger
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo   repository.ProductRepository
	Registry      *stream.Registry
	WatchInterval time.Duration
	// Drift overrides the random price perturbation; nil uses stream.RandomDrift.
	// It is called concurrently from every price subscription.
	Drift      stream.DriftFunc
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// CreateProductInput describes product creation payload.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int64
}

// UpdateProductInput describes a partial product update; nil fields are kept.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int64
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	clk, logger := defaults(deps.Clock, deps.Logger)
	s := &ProductService{
		products: deps.ProductRepo,
		events:   publisher{dispatcher: deps.Dispatcher, clock: clk, logger: logger},
		logger:   logger,
	}
	s.generator = stream.NewPriceGenerator(stream.PriceGeneratorConfig{
		Products: deps.ProductRepo,
		Registry: deps.Registry,
		Interval: deps.WatchInterval,
		Drift:    deps.Drift,
		OnUpdate: s.priceChanged,
		Logger:   logger,
	})
	return s
}

// GetProduct fetches a product by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts filters and paginates the catalog.
func (s *ProductService) ListProducts(ctx context.Context, filter query.ProductFilter) (query.ProductPage, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return query.ProductPage{}, err
	}
	return query.ListProducts(products, filter), nil
}

// CreateProduct stores a new product. The caller must be identified.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	callerID, ok := auth.CallerIDFromContext(ctx)
	if !ok {
		return nil, apperrors.NewForbidden("a caller id is required to create products")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	price := domain.RoundPrice(input.Price)
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateStock(input.Stock); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       price,
		Category:    strings.TrimSpace(input.Category),
	}
	product.SetStock(input.Stock)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.String("product_id", product.ID), zap.String("caller_id", callerID))
	s.events.publish(ctx, productEvent(events.EventProductCreated, product))
	return product, nil
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	patch, err := input.patch()
	if err != nil {
		return nil, err
	}

	product, err := s.products.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, productEvent(events.EventProductUpdated, product))
	return product, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*domain.DeleteResult, error) {
	result, err := s.products.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product deleted", zap.String("product_id", id))
	s.events.publish(ctx, deletedEvent(events.EventProductDeleted, events.ResourceProduct, id, result))
	return result, nil
}

// WatchPriceUpdates streams simulated price changes for productIDs, or for
// the whole catalog when productIDs is empty.
func (s *ProductService) WatchPriceUpdates(ctx context.Context, productIDs []string) (*stream.Subscription[domain.PriceUpdate], error) {
	return s.generator.Watch(ctx, productIDs)
}

func (s *ProductService) priceChanged(ctx context.Context, update domain.PriceUpdate) {
	s.events.publish(ctx, events.Event{
		Type:       events.EventProductPriceChanged,
		Resource:   events.ResourceProduct,
		ResourceID: update.ProductID,
		Timestamp:  update.UpdatedAt,
		Payload: events.PriceChangedPayload{
			OldPrice: update.OldPrice,
			NewPrice: update.NewPrice,
		},
	})
}

func (in UpdateProductInput) patch() (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Description: in.Description,
		Category:    in.Category,
		Stock:       in.Stock,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return patch, apperrors.NewValidationError("name must not be empty", nil)
		}
		patch.Name = &name
	}
	if in.Price != nil {
		price := domain.RoundPrice(*in.Price)
		if err := validatePrice(price); err != nil {
			return patch, err
		}
		patch.Price = &price
	}
	if in.Stock != nil {
		if err := validateStock(*in.Stock); err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func validatePrice(price float64) error {
	if !(price > 0) {
		return apperrors.NewValidationError("price must be greater than zero", map[string]any{"price": price})
	}
	return nil
}

func validateStock(stock int64) error {
	if stock < 0 {
		return apperrors.NewValidationError("stock must not be negative", map[string]any{"stock": stock})
	}
	return nil
}
