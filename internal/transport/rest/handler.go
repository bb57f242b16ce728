// Package rest provides HTTP handlers for the storefront and admin panel.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/khalidsaid/storefront/internal/cache"
	perrors "github.com/khalidsaid/storefront/internal/errors"
	"github.com/khalidsaid/storefront/internal/media"
	"github.com/khalidsaid/storefront/internal/service"
	"github.com/khalidsaid/storefront/pkg/web"
)

// adminProductsPath is the navigation target every successful mutating
// operation redirects to.
const adminProductsPath = "/admin/products"

// homePageSize limits the memoized home listing.
const homePageSize = 6

type Handler struct {
	service   service.ProductService
	pages     *cache.PageCache
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler creates a new instance of the storefront API with the provided service.
func NewHandler(svc service.ProductService, pages *cache.PageCache, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:   svc,
		pages:     pages,
		maxUpload: maxUpload,
		logger:    logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the storefront service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/home", h.Home)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListAvailable)
			r.Get("/{id}", h.FindByID)
		})
		r.Get("/orders/exists", h.UserOrderExists)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListAll)
				r.Post("/", h.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", h.Update)
					r.Delete("/", h.DeleteByID)
					r.Post("/toggle", h.ToggleAvailability)
				})
			})
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// Home returns the newest purchasable products, memoized under the home path.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	payload, err := h.pages.GetOrFetch(r.Context(), cache.PathHome, func(ctx context.Context) (any, error) {
		return h.service.FindAvailable(ctx, 0, homePageSize)
	})
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving home listing", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, payload)
}

// ListAvailable retrieves the purchasable product listing. The default page
// is memoized; explicit pagination bypasses the cache.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, offset, ok := web.ParsePage(r, w, mLogger)
	if !ok {
		return
	}

	query := r.URL.Query()
	if query.Get("limit") == "" && query.Get("offset") == "" {
		payload, err := h.pages.GetOrFetch(r.Context(), cache.PathProducts, func(ctx context.Context) (any, error) {
			return h.service.FindAvailable(ctx, offset, limit)
		})
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error retrieving product listing", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
			return
		}
		web.RespondJSON(w, mLogger, http.StatusOK, payload)
		return
	}

	list, err := h.service.FindAvailable(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product listing", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// ListAll retrieves every product for the admin listing.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, offset, ok := web.ParsePage(r, w, mLogger)
	if !ok {
		return
	}
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving admin product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the admin "add product" form submission.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	form, ok := h.parseProductForm(w, r, mLogger)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), *form)
	if err != nil {
		h.respondWorkflowError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	http.Redirect(w, r, adminProductsPath, http.StatusSeeOther)
}

// Update handles the admin "edit product" form submission.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	form, ok := h.parseProductForm(w, r, mLogger)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, *form)
	if err != nil {
		h.respondWorkflowError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	http.Redirect(w, r, adminProductsPath, http.StatusSeeOther)
}

// DeleteByID deletes a product and its stored assets.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondWorkflowError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	http.Redirect(w, r, adminProductsPath, http.StatusSeeOther)
}

// ToggleAvailability flips the purchase availability flag.
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	toggled, err := h.service.ToggleAvailability(r.Context(), id)
	if err != nil {
		h.respondWorkflowError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product availability toggled", "ID", id, "Available", toggled.IsAvailableForPurchase)
	http.Redirect(w, r, adminProductsPath, http.StatusSeeOther)
}

// UserOrderExists reports whether the given email already ordered the product.
func (h *Handler) UserOrderExists(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	email := r.URL.Query().Get("email")
	if email == "" {
		web.RespondError(w, mLogger, http.StatusBadRequest, "email url parameter is required")
		return
	}
	productID, err := uuid.Parse(r.URL.Query().Get("product_id"))
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid product_id url parameter")
		return
	}

	exists, err := h.service.UserOrderExists(r.Context(), email, productID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error checking order existence", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to check order existence")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]bool{"exists": exists})
}

// Dashboard returns the admin aggregates.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error building dashboard", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, dashboard)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// parseProductForm reads the multipart admin form into a service.ProductForm.
// Missing file parts are represented as nil uploads; the service decides
// whether that is an error.
func (h *Handler) parseProductForm(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger) (*service.ProductForm, bool) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		mLogger.WarnContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}

	form := &service.ProductForm{
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		PriceInCents: r.FormValue("priceInCents"),
	}
	var ok bool
	if form.File, ok = h.readUpload(w, r, mLogger, "file"); !ok {
		return nil, false
	}
	if form.Image, ok = h.readUpload(w, r, mLogger, "image"); !ok {
		return nil, false
	}
	return form, true
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, field string) (*service.FileUpload, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid %s upload", field))
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading upload", "field", field, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to read %s upload", field))
		return nil, false
	}
	return &service.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// respondWorkflowError translates workflow errors into HTTP responses:
// field errors re-render the form, missing products 404, media store upload
// failures surface as a bad gateway.
func (h *Handler) respondWorkflowError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": validationErr.Fields})
	case errors.Is(err, perrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
	case errors.Is(err, media.ErrUploadFailed):
		mLogger.ErrorContext(r.Context(), "Media store upload failed", "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Media store rejected the upload")
	default:
		mLogger.ErrorContext(r.Context(), "Workflow operation failed", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Operation failed")
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
