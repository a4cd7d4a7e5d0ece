// Package query holds the stateless filtering and pagination applied to
// repository snapshots.
package query

import (
	"github.com/spec-kit/record-service/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ProductFilter selects products. Nil or empty fields do not filter.
type ProductFilter struct {
	Category *string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	PageSize int
}

// ProductPage is one window of a filtered product listing.
type ProductPage struct {
	Products   []domain.Product
	TotalCount int
	Page       int
	PageSize   int
}

// UserPage is one window of a filtered user listing.
type UserPage struct {
	Users      []domain.User
	TotalCount int
	Page       int
	PageSize   int
}

// FilterProducts keeps the products matching every set criterion: category
// equality, then price >= MinPrice, then price <= MaxPrice.
func FilterProducts(products []domain.Product, filter ProductFilter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if filter.Category != nil && *filter.Category != "" && p.Category != *filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ListProducts filters then paginates products.
func ListProducts(products []domain.Product, filter ProductFilter) ProductPage {
	filtered := FilterProducts(products, filter)
	window, page, pageSize := Paginate(filtered, filter.Page, filter.PageSize)
	return ProductPage{
		Products:   window,
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   pageSize,
	}
}

// FilterUsersByRole keeps users whose role matches role ignoring case.
// An empty role keeps everyone; an unknown role keeps no one.
func FilterUsersByRole(users []domain.User, role string) []domain.User {
	if role == "" {
		return append([]domain.User(nil), users...)
	}
	wanted, ok := domain.ParseUserRole(role)
	if !ok {
		return []domain.User{}
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == wanted {
			out = append(out, u)
		}
	}
	return out
}

// ListUsers filters by role then paginates users.
func ListUsers(users []domain.User, role string, page, pageSize int) UserPage {
	filtered := FilterUsersByRole(users, role)
	window, page, pageSize := Paginate(filtered, page, pageSize)
	return UserPage{
		Users:      window,
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   pageSize,
	}
}

// Paginate returns items[(page-1)*pageSize : page*pageSize] clipped to len(items).
// Page and pageSize values below 1 fall back to the defaults; the effective
// values are returned alongside the window.
func Paginate[T any](items []T, page, pageSize int) ([]T, int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	// compare in pages so huge page numbers cannot overflow the offset
	if len(items) == 0 || page-1 > (len(items)-1)/pageSize {
		return []T{}, page, pageSize
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) || end < start {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...), page, pageSize
}
