package recs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/jitter"
	"github.com/zakupka-tech/go-backend/pkg/logger"
)

// recommendRequest — тело запроса к рекомендательному сервису.
type recommendRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

// recommendResponse — ответ рекомендательного сервиса: список ID товаров.
type recommendResponse struct {
	Recommendations []string `json:"recommendations"`
}

// RecsClient — HTTP-клиент внешнего рекомендательного сервиса.
// Полученные ID товаров обогащаются данными из каталога.
type RecsClient struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	productRepo usecase.ProductRepository
	logger      logger.Logger
}

func NewRecsClient(cfg *cfg.RecsCfg, productRepo usecase.ProductRepository, logger logger.Logger) *RecsClient {
	return &RecsClient{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		maxRetries:  cfg.MaxRetries,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Recommend запрашивает рекомендации с retry-логикой и экспоненциальной задержкой.
func (r *RecsClient) Recommend(ctx context.Context, req *usecase.RecommendReq) ([]usecase.ProductInfo, error) {
	const (
		op         = "RecsClient.Recommend"
		baseJitter = 200 * time.Millisecond
		maxJitter  = 2 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		ids, err := r.requestRecommendations(ctx, req)
		if err == nil {
			return r.hydrate(ctx, ids)
		}
		lastErr = err

		if attempt == r.maxRetries {
			break
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		r.logger.Warnf("recommendation request failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrRecsUnavailable, lastErr))
}

// requestRecommendations выполняет один HTTP-запрос к сервису.
func (r *RecsClient) requestRecommendations(ctx context.Context, req *usecase.RecommendReq) ([]string, error) {
	const op = "RecsClient.requestRecommendations"

	body, err := json.Marshal(recommendRequest{
		UserID: req.UserID,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var parsed recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, e.Wrap(op, err)
	}

	return parsed.Recommendations, nil
}

// hydrate обогащает ID рекомендаций данными каталога, сохраняя порядок сервиса.
func (r *RecsClient) hydrate(ctx context.Context, ids []string) ([]usecase.ProductInfo, error) {
	const op = "RecsClient.hydrate"

	if len(ids) == 0 {
		return nil, nil
	}

	infos, err := r.productRepo.GetProductsInfo(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	byID := make(map[string]usecase.ProductInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}

	products := make([]usecase.ProductInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := byID[id]; ok {
			products = append(products, info)
		}
	}

	return products, nil
}
