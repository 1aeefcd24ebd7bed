package domain

import "github.com/shopspring/decimal"

// Template — шаблон типовой закупки категории: ключевые слова и типовой
// набор товаров. Используется как источник ключевых слов классификатора и
// как резервный список для рекомендаций.
type Template struct {
	ID               string
	Name             string
	Keywords         []string
	SampleSize       int
	AvgProductsCount float64
	AvgPrice         *decimal.Decimal
	Products         []TemplateProduct
}

// TemplateProduct — товар в шаблоне с частотой появления в выборке.
type TemplateProduct struct {
	TemplateID string
	ProductID  string
	Frequency  float64
	Position   int
}
