// Package service provides the implementation of the product workflow logic:
// validated create/update/delete/toggle operations spanning the media store
// and the product repository.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/khalidsaid/storefront/internal/cache"
	"github.com/khalidsaid/storefront/internal/media"
	"github.com/khalidsaid/storefront/internal/store"
	"golang.org/x/sync/errgroup"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAll returns all products, newest first.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// FindAvailable returns products available for purchase, newest first.
	FindAvailable(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create validates the form, uploads both assets, and persists a new
	// product with availability false. Returns *ValidationError on invalid
	// input; no repository write happens unless both uploads succeeded.
	Create(ctx context.Context, form ProductForm) (*ProductDto, error)

	// Update modifies an existing product. Absent or empty uploads keep the
	// stored asset references. Returns ErrProductNotFound if the product
	// does not exist and *ValidationError on invalid input.
	Update(ctx context.Context, id uuid.UUID, form ProductForm) (*ProductDto, error)

	// DeleteByID removes the product's assets from the media store (best
	// effort) and deletes the repository record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// ToggleAvailability flips the purchase availability flag.
	// Returns ErrProductNotFound if no product exists with the given ID.
	ToggleAvailability(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// UserOrderExists reports whether an order links the given email and product.
	UserOrderExists(ctx context.Context, email string, productID uuid.UUID) (bool, error)

	// Dashboard returns the admin sales/customers/products aggregates.
	Dashboard(ctx context.Context) (*DashboardDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	media      media.Store
	cache      cache.Invalidator
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided collaborators.
func NewService(repo store.ProductStore, mediaStore media.Store, invalidator cache.Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		media:      mediaStore,
		cache:      invalidator,
		validate:   validator.New(),
		logger:     logger.With("component", "service"),
	}
}

// FileUpload is a form file as received from the presentation layer.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *FileUpload) empty() bool {
	return f == nil || len(f.Data) == 0
}

// ProductForm carries the raw admin form fields. PriceInCents stays a string
// until validation coerces it, matching the form boundary.
type ProductForm struct {
	Name         string
	Description  string
	PriceInCents string
	File         *FileUpload
	Image        *FileUpload
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	PriceInCents           int64  `json:"priceInCents"`
	FilePath               string `json:"filePath"`
	ImagePath              string `json:"imagePath"`
	IsAvailableForPurchase bool   `json:"isAvailableForPurchase"`
}

// SalesDto aggregates order count and revenue.
type SalesDto struct {
	NumberOfSales int64 `json:"numberOfSales"`
	AmountInCents int64 `json:"amountInCents"`
}

// CustomersDto aggregates purchasing customers.
type CustomersDto struct {
	UserCount                  int64 `json:"userCount"`
	AverageValuePerUserInCents int64 `json:"averageValuePerUserInCents"`
}

// ProductCountsDto counts products by availability.
type ProductCountsDto struct {
	ActiveCount   int64 `json:"activeCount"`
	InactiveCount int64 `json:"inactiveCount"`
}

// DashboardDto is the admin dashboard payload.
type DashboardDto struct {
	Sales     SalesDto         `json:"sales"`
	Customers CustomersDto     `json:"customers"`
	Products  ProductCountsDto `json:"products"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// FindAll retrieves all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// FindAvailable retrieves purchasable products and returns them as ProductDTOs.
func (s *Service) FindAvailable(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAvailable(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available products: %w", err)
	}
	return toDtos(products), nil
}

// Create validates the form, uploads both assets to the media store, and
// persists the product. The repository write is strictly ordered after both
// uploads; a failed upload aborts the operation and a sibling asset that
// already made it to the store is left behind (no rollback, no retry).
func (s *Service) Create(ctx context.Context, form ProductForm) (*ProductDto, error) {
	price, verr := s.validateForm(form, true)
	if verr != nil {
		return nil, verr
	}

	var filePath, imagePath string
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ref, err := s.media.Upload(gCtx, form.File.Data, media.FolderProductFiles, media.KindAuto)
		if err != nil {
			return err
		}
		filePath = ref
		return nil
	})
	g.Go(func() error {
		ref, err := s.media.Upload(gCtx, form.Image.Data, media.FolderProductImages, media.KindImage)
		if err != nil {
			return err
		}
		imagePath = ref
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to upload product assets: %w", err)
	}

	created, err := s.repository.Create(ctx, store.CreateParams{
		Name:         form.Name,
		Description:  form.Description,
		PriceInCents: price,
		FilePath:     filePath,
		ImagePath:    imagePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.cache.Invalidate(cache.PathHome, cache.PathProducts)
	return toDto(created), nil
}

// Update modifies an existing product. A non-empty upload replaces the stored
// reference; the superseded asset stays in the media store untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, form ProductForm) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}

	price, verr := s.validateForm(form, false)
	if verr != nil {
		return nil, verr
	}

	filePath, imagePath := existing.FilePath, existing.ImagePath
	g, gCtx := errgroup.WithContext(ctx)
	if !form.File.empty() {
		g.Go(func() error {
			ref, err := s.media.Upload(gCtx, form.File.Data, media.FolderProductFiles, media.KindAuto)
			if err != nil {
				return err
			}
			filePath = ref
			return nil
		})
	}
	if !form.Image.empty() {
		g.Go(func() error {
			ref, err := s.media.Upload(gCtx, form.Image.Data, media.FolderProductImages, media.KindImage)
			if err != nil {
				return err
			}
			imagePath = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to upload replacement assets: %w", err)
	}

	updated, err := s.repository.Update(ctx, id, store.UpdateParams{
		Name:         form.Name,
		Description:  form.Description,
		PriceInCents: price,
		FilePath:     filePath,
		ImagePath:    imagePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.cache.Invalidate(cache.PathHome, cache.PathProducts)
	return toDto(updated), nil
}

// DeleteByID removes the product's assets from the media store and deletes
// the repository record. Store removals are best effort: a failure is logged
// and does not block the other removal or the repository delete, since a
// deleted product cannot be restored but leaked storage can be audited.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch product %s: %w", id, err)
	}

	if product.FilePath != "" {
		if err := s.media.Remove(ctx, product.FilePath, media.KindAuto); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove product file from media store", "ID", id, "error", err)
		}
	}
	if product.ImagePath != "" {
		if err := s.media.Remove(ctx, product.ImagePath, media.KindImage); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove product image from media store", "ID", id, "error", err)
		}
	}

	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}

	s.cache.Invalidate(cache.PathProducts)
	return nil
}

// ToggleAvailability flips the purchase availability flag and persists it.
func (s *Service) ToggleAvailability(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}

	product.IsAvailableForPurchase = !product.IsAvailableForPurchase
	if err := s.repository.SetAvailability(ctx, id, product.IsAvailableForPurchase); err != nil {
		return nil, fmt.Errorf("failed to set availability for product %s: %w", id, err)
	}

	s.cache.Invalidate(cache.PathProducts)
	return toDto(product), nil
}

// UserOrderExists reports whether an order links the given email and product.
func (s *Service) UserOrderExists(ctx context.Context, email string, productID uuid.UUID) (bool, error) {
	exists, err := s.repository.UserOrderExists(ctx, email, productID)
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return exists, nil
}

// Dashboard returns the admin sales/customers/products aggregates.
func (s *Service) Dashboard(ctx context.Context) (*DashboardDto, error) {
	sales, err := s.repository.SalesStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales stats: %w", err)
	}
	customers, err := s.repository.CustomerStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer stats: %w", err)
	}
	products, err := s.repository.ProductStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product stats: %w", err)
	}

	var average int64
	if customers.UserCount > 0 {
		average = sales.AmountInCents / customers.UserCount
	}
	return &DashboardDto{
		Sales: SalesDto{
			NumberOfSales: sales.NumberOfSales,
			AmountInCents: sales.AmountInCents,
		},
		Customers: CustomersDto{
			UserCount:                  customers.UserCount,
			AverageValuePerUserInCents: average,
		},
		Products: ProductCountsDto{
			ActiveCount:   products.ActiveCount,
			InactiveCount: products.InactiveCount,
		},
	}, nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:                     product.ID.String(),
		Name:                   product.Name,
		Description:            product.Description,
		PriceInCents:           product.PriceInCents,
		FilePath:               product.FilePath,
		ImagePath:              product.ImagePath,
		IsAvailableForPurchase: product.IsAvailableForPurchase,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}
