package usecase

import "context"

type CatalogUC interface {
	SearchProducts(ctx context.Context, req *SearchProductsReq) (*SearchProductsRes, error)
	GetProduct(ctx context.Context, id string) (*ProductInfo, error)
	GetCategories(ctx context.Context) (*GetCategoriesRes, error)
	GetProcurements(ctx context.Context, req *GetProcurementsReq) (*GetProcurementsRes, error)
	Recommend(ctx context.Context, req *RecommendReq) (*RecommendRes, error)
}

type ImportUC interface {
	Run(ctx context.Context) (*ImportReport, error)
}
