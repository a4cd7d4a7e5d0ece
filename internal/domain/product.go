package domain

import (
	"math"
	"time"
)

// Product is a catalog entry. Available is derived from Stock.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int64
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetStock updates the stock level and recomputes availability.
func (p *Product) SetStock(stock int64) {
	p.Stock = stock
	p.Available = stock > 0
}

// ProductPatch carries the fields of a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int64
}

// Apply merges the non-nil fields into p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Stock != nil {
		p.SetStock(*pp.Stock)
	}
}

// PriceUpdate is emitted by the price stream after a product price drifted.
type PriceUpdate struct {
	ProductID   string
	ProductName string
	OldPrice    float64
	NewPrice    float64
	UpdatedAt   time.Time
}

// RoundPrice rounds to cents.
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeleteResult reports the outcome of a delete operation.
type DeleteResult struct {
	Success bool
	Message string
}
