package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogUC struct {
	product    *usecase.ProductInfo
	productErr error
	search     *usecase.SearchProductsRes
	recommend  *usecase.RecommendRes
}

func (f *fakeCatalogUC) SearchProducts(ctx context.Context, req *usecase.SearchProductsReq) (*usecase.SearchProductsRes, error) {
	return f.search, nil
}

func (f *fakeCatalogUC) GetProduct(ctx context.Context, id string) (*usecase.ProductInfo, error) {
	return f.product, f.productErr
}

func (f *fakeCatalogUC) GetCategories(ctx context.Context) (*usecase.GetCategoriesRes, error) {
	return &usecase.GetCategoriesRes{}, nil
}

func (f *fakeCatalogUC) GetProcurements(ctx context.Context, req *usecase.GetProcurementsReq) (*usecase.GetProcurementsRes, error) {
	return &usecase.GetProcurementsRes{}, nil
}

func (f *fakeCatalogUC) Recommend(ctx context.Context, req *usecase.RecommendReq) (*usecase.RecommendRes, error) {
	return f.recommend, nil
}

func newTestMux(uc usecase.CatalogUC) *chi.Mux {
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewSlogLogger()).Init(uc)
	return mux
}

func TestGetProduct(t *testing.T) {
	price := decimal.NewFromFloat(349.9)
	uc := &fakeCatalogUC{product: &usecase.ProductInfo{
		ID:           "P-1",
		Name:         "Бумага А4",
		AveragePrice: &price,
		IsAvailable:  true,
	}}

	rec := httptest.NewRecorder()
	newTestMux(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/P-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body productResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "P-1", body.ID)
	require.NotNil(t, body.AveragePrice)
	assert.Equal(t, "349.90", *body.AveragePrice)
}

func TestGetProduct_NotFound(t *testing.T) {
	uc := &fakeCatalogUC{productErr: e.ErrProductNotFound}

	rec := httptest.NewRecorder()
	newTestMux(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Code)
}

func TestSearchProducts_InvalidLimit(t *testing.T) {
	uc := &fakeCatalogUC{search: &usecase.SearchProductsRes{}}

	rec := httptest.NewRecorder()
	newTestMux(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProcurements_MissingUser(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(&fakeCatalogUC{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/procurements", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRecommendations_FallbackFlag(t *testing.T) {
	uc := &fakeCatalogUC{recommend: &usecase.RecommendRes{
		Products: []usecase.ProductInfo{{ID: "P-9", Name: "Степлер"}},
		Fallback: true,
	}}

	rec := httptest.NewRecorder()
	newTestMux(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?user_id=U-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body recommendationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Fallback)
	require.Len(t, body.Products, 1)
	assert.Equal(t, "P-9", body.Products[0].ID)
}
