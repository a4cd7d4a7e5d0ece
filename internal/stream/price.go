package stream

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/repository"
	apperrors "github.com/spec-kit/record-service/pkg/util/errorutil"
)

const (
	// MaxDrift bounds a single price change to ±5% of the current price.
	MaxDrift = 0.05

	minPrice = 0.01
)

// DriftFunc returns a relative price change in [-MaxDrift, MaxDrift).
// One generator shares its DriftFunc with every subscription, which call it
// concurrently, so implementations must be safe for concurrent use.
type DriftFunc func() float64

// RandomDrift draws a uniform drift. It is safe for concurrent use since the
// top-level math/rand/v2 source is.
func RandomDrift() float64 {
	return rand.Float64()*2*MaxDrift - MaxDrift
}

// PriceGeneratorConfig wires a PriceGenerator.
type PriceGeneratorConfig struct {
	Products repository.ProductRepository
	Registry *Registry
	Interval time.Duration
	Drift    DriftFunc
	// OnUpdate is called after each price change has been written.
	OnUpdate func(ctx context.Context, update domain.PriceUpdate)
	Logger   *zap.Logger
}

// PriceGenerator simulates price movements for watched products.
type PriceGenerator struct {
	cfg PriceGeneratorConfig
}

// NewPriceGenerator builds a generator, defaulting Drift to RandomDrift.
func NewPriceGenerator(cfg PriceGeneratorConfig) *PriceGenerator {
	if cfg.Drift == nil {
		cfg.Drift = RandomDrift
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &PriceGenerator{cfg: cfg}
}

// Watch subscribes to price updates for productIDs, or for every product
// currently in the catalog when productIDs is empty. Unknown ids are
// ignored; if none remain the call fails with an invalid argument error.
func (g *PriceGenerator) Watch(ctx context.Context, productIDs []string) (*Subscription[domain.PriceUpdate], error) {
	watched, err := g.resolve(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	if len(watched) == 0 {
		return nil, apperrors.NewValidationError("no valid products to watch", map[string]any{"product_ids": productIDs})
	}

	cursor := 0
	next := func(ctx context.Context) (domain.PriceUpdate, bool) {
		// ids deleted after subscribing are skipped
		for range len(watched) {
			id := watched[cursor%len(watched)]
			cursor++
			update, err := g.drift(ctx, id)
			if err == nil {
				return update, true
			}
			if !apperrors.IsNotFound(err) {
				g.cfg.Logger.Warn("price drift failed", zap.String("product_id", id), zap.Error(err))
			}
		}
		return domain.PriceUpdate{}, false
	}
	return start(ctx, g.cfg.Registry, KindPriceUpdates, g.cfg.Interval, next), nil
}

// resolve returns the watched ids in catalog order.
func (g *PriceGenerator) resolve(ctx context.Context, productIDs []string) ([]string, error) {
	products, err := g.cfg.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = struct{}{}
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		if len(wanted) > 0 {
			if _, ok := wanted[p.ID]; !ok {
				continue
			}
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (g *PriceGenerator) drift(ctx context.Context, id string) (domain.PriceUpdate, error) {
	delta := g.cfg.Drift()
	before, after, err := g.cfg.Products.ApplyPriceDrift(ctx, id, func(current float64) float64 {
		return max(domain.RoundPrice(current*(1+delta)), minPrice)
	})
	if err != nil {
		return domain.PriceUpdate{}, err
	}

	update := domain.PriceUpdate{
		ProductID:   after.ID,
		ProductName: after.Name,
		OldPrice:    before.Price,
		NewPrice:    after.Price,
		UpdatedAt:   after.UpdatedAt,
	}
	if g.cfg.OnUpdate != nil {
		g.cfg.OnUpdate(ctx, update)
	}
	return update, nil
}
