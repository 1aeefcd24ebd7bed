package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/clients"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// productModel — представление товара в кэше.
type productModel struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	CategoryID    string           `json:"category_id"`
	CategoryName  string           `json:"category_name"`
	Manufacturer  string           `json:"manufacturer"`
	UnitOfMeasure string           `json:"unit_of_measure"`
	AveragePrice  *decimal.Decimal `json:"average_price"`
	IsAvailable   bool             `json:"is_available"`
}

// CacheRepo кэширует информацию о товарах в Redis.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProducts возвращает закэшированные товары по ID, игнорируя промахи и логируя их.
func (r *CacheRepo) GetProducts(ctx context.Context, ids []string) (map[string]usecase.ProductInfo, error) {
	keys := r.buildProductCacheKeys(ids)

	values, err := r.client.Client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warnf("Redis MGET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[string]usecase.ProductInfo, len(values))
	for i, val := range values {
		data, err := redisValueToBytes(val, keys[i])
		if err != nil {
			r.logger.Warnf("%v", e.Wrap(whereami.WhereAmI(), err))
		}

		if data == nil {
			continue // cache miss
		}

		var model productModel
		if err := json.Unmarshal(data, &model); err != nil {
			r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		if model.ID != ids[i] {
			r.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", ids[i], model.ID)
			if err := r.client.Client.Del(context.Background(), keys[i]).Err(); err != nil {
				r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
			}
			continue // cache miss
		}

		result[ids[i]] = toProductInfo(model)
	}

	return result, nil
}

// SetProducts атомарно кэширует несколько товаров с заданным TTL.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *CacheRepo) SetProducts(ctx context.Context, products []usecase.ProductInfo) error {
	pipeline := r.client.Client.Pipeline()
	for _, product := range products {
		data, err := json.Marshal(toModel(product))
		if err != nil {
			r.logger.Warnf("Failed to marshal product for caching (Product ID: %s): %v", product.ID, e.Wrap(whereami.WhereAmI(), err))
			continue
		}

		pipeline.Set(ctx, r.productKey(product.ID), data, r.cfg.ProductTTL)
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		r.logger.Warnf("Cache pipeline failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteProducts удаляет товары из кэша по ID.
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []string) error {
	keys := r.buildProductCacheKeys(ids)

	if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// buildProductCacheKeys формирует Redis-ключи из ID товаров.
func (r *CacheRepo) buildProductCacheKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.productKey(id)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного товара.
func (r *CacheRepo) productKey(id string) string {
	return "product:" + id
}

func toProductInfo(model productModel) usecase.ProductInfo {
	return usecase.ProductInfo{
		ID:            model.ID,
		Name:          model.Name,
		CategoryID:    model.CategoryID,
		CategoryName:  model.CategoryName,
		Manufacturer:  model.Manufacturer,
		UnitOfMeasure: model.UnitOfMeasure,
		AveragePrice:  model.AveragePrice,
		IsAvailable:   model.IsAvailable,
	}
}

func toModel(product usecase.ProductInfo) productModel {
	return productModel{
		ID:            product.ID,
		Name:          product.Name,
		CategoryID:    product.CategoryID,
		CategoryName:  product.CategoryName,
		Manufacturer:  product.Manufacturer,
		UnitOfMeasure: product.UnitOfMeasure,
		AveragePrice:  product.AveragePrice,
		IsAvailable:   product.IsAvailable,
	}
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
