package recs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductRepo struct {
	infos []usecase.ProductInfo
}

func (s *stubProductRepo) UpsertBatch(ctx context.Context, products []*domain.Product) error {
	return nil
}

func (s *stubProductRepo) Search(ctx context.Context, req *usecase.SearchProductsReq) ([]usecase.ProductInfo, error) {
	return nil, nil
}

func (s *stubProductRepo) GetProductsInfo(ctx context.Context, ids []string) ([]usecase.ProductInfo, error) {
	return s.infos, nil
}

func newTestClient(baseURL string, maxRetries int, repo usecase.ProductRepository) *RecsClient {
	return NewRecsClient(&cfg.RecsCfg{
		BaseURL:        baseURL,
		RequestTimeout: time.Second,
		MaxRetries:     maxRetries,
		DefaultLimit:   10,
	}, repo, logger.NewSlogLogger())
}

func TestRecsClient_Recommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/recommend", r.URL.Path)

		var req recommendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "U-1", req.UserID)
		assert.Equal(t, 2, req.Limit)

		json.NewEncoder(w).Encode(recommendResponse{Recommendations: []string{"P-2", "P-1"}})
	}))
	defer srv.Close()

	repo := &stubProductRepo{infos: []usecase.ProductInfo{
		{ID: "P-1", Name: "Бумага"},
		{ID: "P-2", Name: "Ручка"},
	}}

	client := newTestClient(srv.URL, 0, repo)
	products, err := client.Recommend(context.Background(), usecase.NewRecommendReq("U-1", 2))
	require.NoError(t, err)

	// Порядок сервиса сохраняется при обогащении.
	require.Len(t, products, 2)
	assert.Equal(t, "P-2", products[0].ID)
	assert.Equal(t, "P-1", products[1].ID)
}

func TestRecsClient_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(recommendResponse{Recommendations: []string{"P-1"}})
	}))
	defer srv.Close()

	repo := &stubProductRepo{infos: []usecase.ProductInfo{{ID: "P-1"}}}
	client := newTestClient(srv.URL, 2, repo)

	products, err := client.Recommend(context.Background(), usecase.NewRecommendReq("U-1", 1))
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, products, 1)
}

func TestRecsClient_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 1, &stubProductRepo{})

	_, err := client.Recommend(context.Background(), usecase.NewRecommendReq("U-1", 1))
	assert.ErrorIs(t, err, e.ErrRecsUnavailable)
}

func TestRecsClient_UnknownIDsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recommendResponse{Recommendations: []string{"P-1", "P-404"}})
	}))
	defer srv.Close()

	repo := &stubProductRepo{infos: []usecase.ProductInfo{{ID: "P-1"}}}
	client := newTestClient(srv.URL, 0, repo)

	products, err := client.Recommend(context.Background(), usecase.NewRecommendReq("U-1", 2))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "P-1", products[0].ID)
}
