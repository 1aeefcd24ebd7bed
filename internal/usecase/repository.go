package usecase

import (
	"context"

	"github.com/zakupka-tech/go-backend/internal/domain"
)

type ProductRepository interface {
	UpsertBatch(ctx context.Context, products []*domain.Product) error
	Search(ctx context.Context, req *SearchProductsReq) ([]ProductInfo, error)
	GetProductsInfo(ctx context.Context, ids []string) ([]ProductInfo, error)
}

type CategoryRepository interface {
	UpsertBatch(ctx context.Context, categories []*domain.Category) error
	GetAll(ctx context.Context) ([]*domain.Category, error)
}

type ProcurementRepository interface {
	// UpsertBatch записывает закупки вместе с их позициями в одной транзакции.
	UpsertBatch(ctx context.Context, procurements []*domain.Procurement) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Procurement, error)
}

type TemplateRepository interface {
	UpsertBatch(ctx context.Context, templates []*domain.Template) error
	// PopularProducts возвращает наиболее частые товары шаблонов —
	// статический резервный список рекомендаций.
	PopularProducts(ctx context.Context, limit int) ([]ProductInfo, error)
}

type UserRepository interface {
	UpsertBatch(ctx context.Context, users []*domain.User) error
	EnsureTestUser(ctx context.Context, user *domain.User) error
}

// SchemaRepository — служебные операции над схемой хранилища вокруг массовой загрузки.
type SchemaRepository interface {
	ValidateSchema(ctx context.Context, tables []string) error
	SetReferentialIntegrity(ctx context.Context, enabled bool) error
	TableCounts(ctx context.Context, tables []string) (map[string]int64, error)
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []string) (map[string]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []string) error
}
