package http

import (
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(catalogUC usecase.CatalogUC) {
	r.router.Route("/api/v1", func(v1 chi.Router) {
		handler := NewCatalogHandler(catalogUC, r.logger)
		registerCatalogRoutes(v1, handler)
	})
}

func registerCatalogRoutes(router chi.Router, handler *CatalogHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", handler.searchProducts)
		pr.Get("/{id}", handler.getProduct)
	})
	router.Get("/categories", handler.getCategories)
	router.Get("/procurements", handler.getProcurements)
	router.Get("/recommendations", handler.getRecommendations)
}
