package dto

import (
	"time"

	"github.com/spec-kit/record-service/internal/domain"
	"github.com/spec-kit/record-service/internal/query"
)

// CreateProductRequest payload for new products.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int64   `json:"stock"`
}

// UpdateProductRequest payload for partial product updates.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int64   `json:"stock"`
}

// ProductResponse is the wire form of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Stock       int64     `json:"stock"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResponse is one page of products.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

// PriceUpdateResponse is one event of the price stream.
type PriceUpdateResponse struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	OldPrice    float64   `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Stock:       p.Stock,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProductListResponse(page query.ProductPage) ProductListResponse {
	products := make([]ProductResponse, 0, len(page.Products))
	for i := range page.Products {
		products = append(products, NewProductResponse(&page.Products[i]))
	}
	return ProductListResponse{
		Products:   products,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

func NewPriceUpdateResponse(u domain.PriceUpdate) PriceUpdateResponse {
	return PriceUpdateResponse{
		ProductID:   u.ProductID,
		ProductName: u.ProductName,
		OldPrice:    u.OldPrice,
		NewPrice:    u.NewPrice,
		UpdatedAt:   u.UpdatedAt,
	}
}
