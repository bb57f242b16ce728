// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a product row as persisted in the relational store.
// FilePath and ImagePath hold durable media store references (URLs).
type Product struct {
	ID                     uuid.UUID
	Name                   string
	Description            string
	PriceInCents           int64
	FilePath               string
	ImagePath              string
	IsAvailableForPurchase bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CreateParams carries the fields required to insert a new product.
// Availability always starts as false; the flag is flipped by an explicit
// admin action only.
type CreateParams struct {
	Name         string
	Description  string
	PriceInCents int64
	FilePath     string
	ImagePath    string
}

// UpdateParams carries the full field set persisted on update. Asset
// references are always written; callers keep the prior reference when no
// replacement was uploaded.
type UpdateParams struct {
	Name         string
	Description  string
	PriceInCents int64
	FilePath     string
	ImagePath    string
}

// SalesStats aggregates the orders table for the admin dashboard.
type SalesStats struct {
	NumberOfSales int64
	AmountInCents int64
}

// CustomerStats counts distinct purchasing customers.
type CustomerStats struct {
	UserCount int64
}

// ProductStats counts products by availability.
type ProductStats struct {
	ActiveCount   int64
	InactiveCount int64
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// FindAvailable returns products available for purchase, newest first.
	FindAvailable(ctx context.Context, offset, limit int32) ([]Product, error)

	// Create adds a new product with availability false.
	// Returns an error if the product cannot be created.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error)

	// SetAvailability sets the availability flag of a product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// UserOrderExists reports whether an order links the given email and product.
	UserOrderExists(ctx context.Context, email string, productID uuid.UUID) (bool, error)

	// SalesStats returns order count and summed order amount.
	SalesStats(ctx context.Context) (*SalesStats, error)

	// CustomerStats returns the number of distinct purchasing customers.
	CustomerStats(ctx context.Context) (*CustomerStats, error)

	// ProductStats returns active/inactive product counts.
	ProductStats(ctx context.Context) (*ProductStats, error)
}
