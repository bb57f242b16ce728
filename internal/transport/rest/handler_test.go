package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/khalidsaid/storefront/internal/cache"
	perrors "github.com/khalidsaid/storefront/internal/errors"
	"github.com/khalidsaid/storefront/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService is a stub implementation of the ProductService interface.
type stubService struct {
	dto       *service.ProductDto
	list      []service.ProductDto
	dashboard *service.DashboardDto
	exists    bool
	err       error

	listCalls   int
	createForms []service.ProductForm
	updateForms []service.ProductForm
	deletedIDs  []uuid.UUID
}

func (s *stubService) FindByID(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	return s.dto, s.err
}

func (s *stubService) FindAll(_ context.Context, _, _ int32) ([]service.ProductDto, error) {
	return s.list, s.err
}

func (s *stubService) FindAvailable(_ context.Context, _, _ int32) ([]service.ProductDto, error) {
	s.listCalls++
	return s.list, s.err
}

func (s *stubService) Create(_ context.Context, form service.ProductForm) (*service.ProductDto, error) {
	s.createForms = append(s.createForms, form)
	return s.dto, s.err
}

func (s *stubService) Update(_ context.Context, _ uuid.UUID, form service.ProductForm) (*service.ProductDto, error) {
	s.updateForms = append(s.updateForms, form)
	return s.dto, s.err
}

func (s *stubService) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}

func (s *stubService) ToggleAvailability(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	return s.dto, s.err
}

func (s *stubService) UserOrderExists(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
	return s.exists, s.err
}

func (s *stubService) Dashboard(_ context.Context) (*service.DashboardDto, error) {
	return s.dashboard, s.err
}

func newTestRouter(svc service.ProductService) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := chi.NewRouter()
	NewHandler(svc, cache.NewPageCache(), 32<<20, logger).RegisterRoutes(mux)
	return mux
}

// newProductFormRequest builds a multipart form submission the way the admin
// panel does, with optional file and image parts.
func newProductFormRequest(t *testing.T, method, target string, fields map[string]string, withFile, withImage bool) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if withFile {
		part, err := writer.CreateFormFile("file", "widget.zip")
		require.NoError(t, err)
		_, err = part.Write([]byte("archive-bytes"))
		require.NoError(t, err)
	}
	if withImage {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="widget.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validFields() map[string]string {
	return map[string]string{
		"name":         "Widget",
		"description":  "A widget",
		"priceInCents": "500",
	}
}

func Test_Handler_Create(t *testing.T) {
	t.Run("Success - redirects to the admin product list", func(t *testing.T) {
		// given
		svc := &stubService{dto: &service.ProductDto{ID: uuid.NewString(), Name: "Widget"}}
		router := newTestRouter(svc)
		req := newProductFormRequest(t, http.MethodPost, "/api/v1/admin/products/", validFields(), true, true)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/products", rec.Header().Get("Location"))
		require.Len(t, svc.createForms, 1)
		form := svc.createForms[0]
		assert.Equal(t, "Widget", form.Name)
		assert.Equal(t, "500", form.PriceInCents)
		require.NotNil(t, form.File)
		assert.Equal(t, "widget.zip", form.File.Name)
		require.NotNil(t, form.Image)
		assert.Equal(t, "image/png", form.Image.ContentType)
	})

	t.Run("Error - validation failure returns the field map", func(t *testing.T) {
		// given
		svc := &stubService{err: &service.ValidationError{Fields: map[string]string{"priceInCents": "Required"}}}
		router := newTestRouter(svc)
		req := newProductFormRequest(t, http.MethodPost, "/api/v1/admin/products/", map[string]string{"name": "Widget"}, false, false)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var payload map[string]map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "Required", payload["validation_errors"]["priceInCents"])
	})

	t.Run("Error - missing file parts reach the service as nil uploads", func(t *testing.T) {
		// given
		svc := &stubService{dto: &service.ProductDto{ID: uuid.NewString()}}
		router := newTestRouter(svc)
		req := newProductFormRequest(t, http.MethodPost, "/api/v1/admin/products/", validFields(), false, false)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		require.Len(t, svc.createForms, 1)
		assert.Nil(t, svc.createForms[0].File)
		assert.Nil(t, svc.createForms[0].Image)
	})
}

func Test_Handler_Update(t *testing.T) {
	mockID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	t.Run("Success - redirects to the admin product list", func(t *testing.T) {
		// given
		svc := &stubService{dto: &service.ProductDto{ID: mockID.String(), Name: "Widget"}}
		router := newTestRouter(svc)
		req := newProductFormRequest(t, http.MethodPut, "/api/v1/admin/products/"+mockID.String(), validFields(), false, false)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/products", rec.Header().Get("Location"))
		assert.Len(t, svc.updateForms, 1)
	})

	t.Run("Error - unknown product returns 404", func(t *testing.T) {
		// given
		svc := &stubService{err: perrors.ErrProductNotFound}
		router := newTestRouter(svc)
		req := newProductFormRequest(t, http.MethodPut, "/api/v1/admin/products/"+mockID.String(), validFields(), false, false)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Error - malformed id returns 400", func(t *testing.T) {
		// given
		svc := &stubService{}
		router := newTestRouter(svc)
		req := newProductFormRequest(t, http.MethodPut, "/api/v1/admin/products/not-a-uuid", validFields(), false, false)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.updateForms)
	})
}

func Test_Handler_DeleteByID(t *testing.T) {
	mockID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	t.Run("Success - deletes and redirects", func(t *testing.T) {
		// given
		svc := &stubService{}
		router := newTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+mockID.String(), nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/products", rec.Header().Get("Location"))
		assert.Equal(t, []uuid.UUID{mockID}, svc.deletedIDs)
	})

	t.Run("Error - unknown product returns 404", func(t *testing.T) {
		// given
		svc := &stubService{err: perrors.ErrProductNotFound}
		router := newTestRouter(svc)
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+mockID.String(), nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_Handler_ToggleAvailability(t *testing.T) {
	mockID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	// given
	svc := &stubService{dto: &service.ProductDto{ID: mockID.String(), IsAvailableForPurchase: true}}
	router := newTestRouter(svc)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/"+mockID.String()+"/toggle", nil)
	rec := httptest.NewRecorder()

	// when
	router.ServeHTTP(rec, req)

	// then
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/products", rec.Header().Get("Location"))
}

func Test_Handler_FindByID(t *testing.T) {
	mockID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	t.Run("Success - returns the product as JSON", func(t *testing.T) {
		// given
		svc := &stubService{dto: &service.ProductDto{ID: mockID.String(), Name: "Widget", PriceInCents: 500}}
		router := newTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+mockID.String(), nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusOK, rec.Code)
		var dto service.ProductDto
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "Widget", dto.Name)
		assert.Equal(t, int64(500), dto.PriceInCents)
	})

	t.Run("Error - unknown product returns 404", func(t *testing.T) {
		// given
		svc := &stubService{err: perrors.ErrProductNotFound}
		router := newTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+mockID.String(), nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_Handler_ListAvailable_Caching(t *testing.T) {
	// given
	svc := &stubService{list: []service.ProductDto{{ID: uuid.NewString(), Name: "Widget"}}}
	router := newTestRouter(svc)

	// when - default listing twice, then an explicitly paginated one
	for range 2 {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/?limit=5&offset=10", nil))

	// then - the default page is served from cache, pagination bypasses it
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.listCalls)
}

func Test_Handler_UserOrderExists(t *testing.T) {
	mockID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	t.Run("Success - reports existence", func(t *testing.T) {
		// given
		svc := &stubService{exists: true}
		router := newTestRouter(svc)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/exists?email=user%40example.com&product_id="+mockID.String(), nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusOK, rec.Code)
		var payload map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.True(t, payload["exists"])
	})

	t.Run("Error - missing email returns 400", func(t *testing.T) {
		// given
		router := newTestRouter(&stubService{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/exists?product_id="+mockID.String(), nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Error - malformed product_id returns 400", func(t *testing.T) {
		// given
		router := newTestRouter(&stubService{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/exists?email=user%40example.com&product_id=abc", nil)
		rec := httptest.NewRecorder()

		// when
		router.ServeHTTP(rec, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_Handler_Dashboard(t *testing.T) {
	// given
	svc := &stubService{dashboard: &service.DashboardDto{
		Sales:     service.SalesDto{NumberOfSales: 4, AmountInCents: 2000},
		Customers: service.CustomersDto{UserCount: 2, AverageValuePerUserInCents: 1000},
		Products:  service.ProductCountsDto{ActiveCount: 3, InactiveCount: 1},
	}}
	router := newTestRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	rec := httptest.NewRecorder()

	// when
	router.ServeHTTP(rec, req)

	// then
	assert.Equal(t, http.StatusOK, rec.Code)
	var dashboard service.DashboardDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dashboard))
	assert.Equal(t, int64(1000), dashboard.Customers.AverageValuePerUserInCents)
}

func Test_Handler_HealthCheck(t *testing.T) {
	router := newTestRouter(&stubService{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
