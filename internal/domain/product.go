package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога.
type Product struct {
	ID             string
	Name           string
	Description    string
	CategoryID     *string
	Manufacturer   string
	UnitOfMeasure  string
	Specifications map[string]string
	AveragePrice   *decimal.Decimal
	IsAvailable    bool
	SourceSystem   string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func NewProduct(id, name string) *Product {
	return &Product{
		ID:          id,
		Name:        name,
		IsAvailable: true,
	}
}
