package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	perrors "github.com/khalidsaid/storefront/internal/errors"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = `id, name, description, price_in_cents, file_path, image_path, is_available_for_purchase, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceInCents,
		&p.FilePath,
		&p.ImagePath,
		&p.IsAvailableForPurchase,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products with pagination support, newest first.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	return p.queryProducts(ctx, query, limit, offset)
}

// FindAvailable retrieves products available for purchase, newest first.
func (p *PgStore) FindAvailable(ctx context.Context, offset, limit int32) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_available_for_purchase ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	return p.queryProducts(ctx, query, limit, offset)
}

func (p *PgStore) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system. Availability starts as false.
// Returns an error if the product cannot be created.
func (p *PgStore) Create(ctx context.Context, params CreateParams) (*Product, error) {
	query := `INSERT INTO products (name, description, price_in_cents, file_path, image_path)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query,
		params.Name, params.Description, params.PriceInCents, params.FilePath, params.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error) {
	query := `UPDATE products
	          SET name = $2, description = $3, price_in_cents = $4, file_path = $5, image_path = $6, updated_at = now()
	          WHERE id = $1
	          RETURNING ` + productColumns
	product, err := scanProduct(p.db.QueryRow(ctx, query,
		id, params.Name, params.Description, params.PriceInCents, params.FilePath, params.ImagePath))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// SetAvailability sets the availability flag of a product.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `UPDATE products SET is_available_for_purchase = $2, updated_at = now() WHERE id = $1`
	tag, err := p.db.Exec(ctx, query, id, available)
	if err != nil {
		return fmt.Errorf("failed to set product availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// UserOrderExists reports whether an order links the given email and product.
func (p *PgStore) UserOrderExists(ctx context.Context, email string, productID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE user_email = $1 AND product_id = $2)`
	var exists bool
	if err := p.db.QueryRow(ctx, query, email, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user order existence: %w", err)
	}
	return exists, nil
}

// SalesStats returns order count and summed order amount.
func (p *PgStore) SalesStats(ctx context.Context) (*SalesStats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(price_paid_in_cents), 0) FROM orders`
	var stats SalesStats
	if err := p.db.QueryRow(ctx, query).Scan(&stats.NumberOfSales, &stats.AmountInCents); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	return &stats, nil
}

// CustomerStats returns the number of distinct purchasing customers.
func (p *PgStore) CustomerStats(ctx context.Context) (*CustomerStats, error) {
	query := `SELECT COUNT(DISTINCT user_email) FROM orders`
	var stats CustomerStats
	if err := p.db.QueryRow(ctx, query).Scan(&stats.UserCount); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	return &stats, nil
}

// ProductStats returns active/inactive product counts.
func (p *PgStore) ProductStats(ctx context.Context) (*ProductStats, error) {
	query := `SELECT
	            COUNT(*) FILTER (WHERE is_available_for_purchase),
	            COUNT(*) FILTER (WHERE NOT is_available_for_purchase)
	          FROM products`
	var stats ProductStats
	if err := p.db.QueryRow(ctx, query).Scan(&stats.ActiveCount, &stats.InactiveCount); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	return &stats, nil
}
