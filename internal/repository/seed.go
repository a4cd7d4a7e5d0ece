package repository

import "github.com/spec-kit/record-service/internal/domain"

// SeedUsers returns the demo users loaded at start-up.
func SeedUsers() []domain.User {
	return []domain.User{
		{ID: "1", Name: "John Doe", Email: "john@example.com", Role: domain.UserRoleAdmin},
		{ID: "2", Name: "Jane Smith", Email: "jane@example.com", Role: domain.UserRoleUser},
		{ID: "3", Name: "Bob Johnson", Email: "bob@example.com", Role: domain.UserRoleModerator},
	}
}

// SeedProducts returns the demo catalog loaded at start-up.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "Laptop Pro",
			Description: "High-performance laptop for professionals",
			Price:       1299.99,
			Category:    "electronics",
			Stock:       50,
		},
		{
			ID:          "2",
			Name:        "Smartphone X",
			Description: "Next-generation smartphone with advanced features",
			Price:       799.99,
			Category:    "electronics",
			Stock:       100,
		},
		{
			ID:          "3",
			Name:        "Coffee Maker",
			Description: "Automatic coffee maker with built-in grinder",
			Price:       149.99,
			Category:    "home",
			Stock:       25,
		},
		{
			ID:          "4",
			Name:        "Wireless Headphones",
			Description: "Premium noise-cancelling wireless headphones",
			Price:       249.99,
			Category:    "electronics",
			Stock:       75,
		},
		{
			ID:          "5",
			Name:        "Fitness Tracker",
			Description: "Water-resistant fitness tracker with heart rate monitor",
			Price:       99.99,
			Category:    "wearables",
			Stock:       60,
		},
	}
}
