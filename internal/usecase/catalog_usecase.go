package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
)

// CatalogUseCase реализует читающую сторону каталога поверх хранилища,
// кэша и внешнего рекомендательного сервиса.
type CatalogUseCase struct {
	productRepo     ProductRepository
	categoryRepo    CategoryRepository
	procurementRepo ProcurementRepository
	templateRepo    TemplateRepository
	cacheRepo       CacheRepository
	recs            RecsInfra
	defaultLimit    int
	logger          logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	procurementRepo ProcurementRepository,
	templateRepo TemplateRepository,
	cacheRepo CacheRepository,
	recs RecsInfra,
	defaultLimit int,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:     productRepo,
		categoryRepo:    categoryRepo,
		procurementRepo: procurementRepo,
		templateRepo:    templateRepo,
		cacheRepo:       cacheRepo,
		recs:            recs,
		defaultLimit:    defaultLimit,
		logger:          logger,
	}
}

// SearchProducts ищет товары по названию и категории.
func (c *CatalogUseCase) SearchProducts(ctx context.Context, req *SearchProductsReq) (*SearchProductsRes, error) {
	const (
		op           = "CatalogUseCase.SearchProducts"
		defaultLimit = 20
		maxLimit     = 100
	)

	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	products, err := c.productRepo.Search(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewSearchProductsRes(products, int64(len(products))), nil
}

// GetProduct возвращает товар по id, сначала заглядывая в кэш.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id string) (*ProductInfo, error) {
	const op = "CatalogUseCase.GetProduct"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.ErrNoProducts)
	}

	cached, err := c.cacheRepo.GetProducts(ctx, []string{id})
	if err == nil {
		if product, ok := cached[id]; ok {
			return &product, nil
		}
	}

	products, err := c.productRepo.GetProductsInfo(ctx, []string{id})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(products) == 0 {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := c.cacheRepo.SetProducts(bgCtx, products); err != nil {
			c.logger.Warnf("failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return &products[0], nil
}

func (c *CatalogUseCase) GetCategories(ctx context.Context) (*GetCategoriesRes, error) {
	const op = "CatalogUseCase.GetCategories"

	categories, err := c.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &GetCategoriesRes{Categories: categories}, nil
}

func (c *CatalogUseCase) GetProcurements(ctx context.Context, req *GetProcurementsReq) (*GetProcurementsRes, error) {
	const op = "CatalogUseCase.GetProcurements"

	if strings.TrimSpace(req.UserID) == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}

	procurements, err := c.procurementRepo.ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewGetProcurementsRes(procurements), nil
}

// Recommend запрашивает рекомендации у внешнего сервиса. Если сервис не
// ответил в отведённое время, возвращается резервный список из типовых
// товаров шаблонов.
func (c *CatalogUseCase) Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error) {
	const op = "CatalogUseCase.Recommend"

	if strings.TrimSpace(req.UserID) == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}
	if req.Limit <= 0 {
		req.Limit = c.defaultLimit
	}

	products, err := c.recs.Recommend(ctx, req)
	if err == nil && len(products) > 0 {
		return NewRecommendRes(products, false), nil
	}
	if err != nil {
		c.logger.Warnf("recommendation service failed, using fallback: %v", err)
	}

	fallback, err := c.templateRepo.PopularProducts(ctx, req.Limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewRecommendRes(fallback, true), nil
}
