package usecase

import (
	"time"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/importer/batch"
	"github.com/shopspring/decimal"
)

// CATALOG USECASE

// SearchProductsReq — запрос поиска товаров по названию и категории.
type SearchProductsReq struct {
	Query      string
	CategoryID string
	Limit      int
	Offset     int
}

// SearchProductsRes — страница результатов поиска.
type SearchProductsRes struct {
	Products []ProductInfo
	Total    int64
}

// ProductInfo — DTO с информацией о товаре для внешнего использования.
type ProductInfo struct {
	ID            string
	Name          string
	CategoryID    string
	CategoryName  string
	Manufacturer  string
	UnitOfMeasure string
	AveragePrice  *decimal.Decimal
	IsAvailable   bool
}

type GetCategoriesRes struct {
	Categories []*domain.Category
}

type GetProcurementsReq struct {
	UserID string
}

type GetProcurementsRes struct {
	Procurements []*domain.Procurement
}

// RecommendReq — запрос рекомендаций для пользователя.
type RecommendReq struct {
	UserID string
	Limit  int
}

// RecommendRes — рекомендованные товары.
// Fallback выставляется, когда внешний сервис не ответил и список
// сформирован из типовых товаров шаблонов.
type RecommendRes struct {
	Products []ProductInfo
	Fallback bool
}

// IMPORT USECASE

// ImportReport — итог одного запуска импорта: счётчики по сущностям,
// контрольные значения по таблицам и сведения об артефакте журнала ошибок.
type ImportReport struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	Entities       map[string]batch.Counts
	TableCounts    map[string]int64
	ErrorCount     int
	ErrorLogObject string
}

// MAPPERS

func NewSearchProductsRes(products []ProductInfo, total int64) *SearchProductsRes {
	return &SearchProductsRes{
		Products: products,
		Total:    total,
	}
}

func NewRecommendReq(userID string, limit int) *RecommendReq {
	return &RecommendReq{
		UserID: userID,
		Limit:  limit,
	}
}

func NewRecommendRes(products []ProductInfo, fallback bool) *RecommendRes {
	return &RecommendRes{
		Products: products,
		Fallback: fallback,
	}
}

func NewGetProcurementsRes(procurements []*domain.Procurement) *GetProcurementsRes {
	return &GetProcurementsRes{Procurements: procurements}
}
