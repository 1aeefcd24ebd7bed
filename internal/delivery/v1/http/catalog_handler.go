package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

type productResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CategoryID    string  `json:"category_id,omitempty"`
	CategoryName  string  `json:"category_name,omitempty"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
	UnitOfMeasure string  `json:"unit_of_measure,omitempty"`
	AveragePrice  *string `json:"average_price,omitempty"`
	IsAvailable   bool    `json:"is_available"`
}

type searchProductsResponse struct {
	Products []productResponse `json:"products"`
	Total    int64             `json:"total"`
}

type categoryResponse struct {
	ID       string   `json:"id"`
	ParentID *string  `json:"parent_id,omitempty"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
	Level    int      `json:"level"`
}

type procurementItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice *string `json:"unit_price,omitempty"`
}

type procurementResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Status           string                    `json:"status"`
	EstimatedPrice   *string                   `json:"estimated_price,omitempty"`
	ActualPrice      *string                   `json:"actual_price,omitempty"`
	ProcurementDate  *time.Time                `json:"procurement_date,omitempty"`
	OrganizationName string                    `json:"organization_name,omitempty"`
	OrganizationINN  string                    `json:"organization_inn,omitempty"`
	Items            []procurementItemResponse `json:"items"`
}

type recommendationsResponse struct {
	Products []productResponse `json:"products"`
	Fallback bool              `json:"fallback"`
}

// searchProducts обрабатывает поиск товаров по названию и категории с пагинацией.
func (h *CatalogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		WriteError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		WriteError(w, err)
		return
	}

	req := &usecase.SearchProductsReq{
		Query:      strings.TrimSpace(r.URL.Query().Get("query")),
		CategoryID: strings.TrimSpace(r.URL.Query().Get("category_id")),
		Limit:      limit,
		Offset:     offset,
	}

	res, err := h.catalogUsecase.SearchProducts(r.Context(), req)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, searchProductsResponse{
		Products: toProductResponses(res.Products),
		Total:    res.Total,
	})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	product, err := h.catalogUsecase.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(*product))
}

func (h *CatalogHandler) getCategories(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalogUsecase.GetCategories(r.Context())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	categories := make([]categoryResponse, 0, len(res.Categories))
	for _, category := range res.Categories {
		categories = append(categories, categoryResponse{
			ID:       category.ID,
			ParentID: category.ParentID,
			Name:     category.Name,
			Keywords: category.Keywords,
			Level:    category.Level,
		})
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func (h *CatalogHandler) getProcurements(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	res, err := h.catalogUsecase.GetProcurements(r.Context(), &usecase.GetProcurementsReq{UserID: userID})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	procurements := make([]procurementResponse, 0, len(res.Procurements))
	for _, procurement := range res.Procurements {
		procurements = append(procurements, toProcurementResponse(procurement))
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"procurements": procurements,
	})
}

func (h *CatalogHandler) getRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.catalogUsecase.Recommend(r.Context(), usecase.NewRecommendReq(userID, limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, recommendationsResponse{
		Products: toProductResponses(res.Products),
		Fallback: res.Fallback,
	})
}

func toProductResponse(product usecase.ProductInfo) productResponse {
	resp := productResponse{
		ID:            product.ID,
		Name:          product.Name,
		CategoryID:    product.CategoryID,
		CategoryName:  product.CategoryName,
		Manufacturer:  product.Manufacturer,
		UnitOfMeasure: product.UnitOfMeasure,
		IsAvailable:   product.IsAvailable,
	}
	if product.AveragePrice != nil {
		price := product.AveragePrice.StringFixed(2)
		resp.AveragePrice = &price
	}

	return resp
}

func toProductResponses(products []usecase.ProductInfo) []productResponse {
	result := make([]productResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}

	return result
}

func toProcurementResponse(procurement *domain.Procurement) procurementResponse {
	items := make([]procurementItemResponse, 0, len(procurement.Items))
	for _, item := range procurement.Items {
		itemResp := procurementItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.UnitPrice != nil {
			price := item.UnitPrice.StringFixed(2)
			itemResp.UnitPrice = &price
		}
		items = append(items, itemResp)
	}

	resp := procurementResponse{
		ID:               procurement.ID,
		Name:             procurement.Name,
		Status:           procurement.Status,
		ProcurementDate:  procurement.ProcurementDate,
		OrganizationName: procurement.OrganizationName,
		OrganizationINN:  procurement.OrganizationINN,
		Items:            items,
	}
	if procurement.EstimatedPrice != nil {
		price := procurement.EstimatedPrice.StringFixed(2)
		resp.EstimatedPrice = &price
	}
	if procurement.ActualPrice != nil {
		price := procurement.ActualPrice.StringFixed(2)
		resp.ActualPrice = &price
	}

	return resp
}
