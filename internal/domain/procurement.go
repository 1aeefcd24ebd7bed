package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы закупки.
const (
	ProcurementStatusCompleted = "completed"
	ProcurementStatusActive    = "active"
)

// Procurement описывает закупку: групповой сбор заявок на список товаров.
// В исходных данных одна закупка представлена несколькими строками (по одной
// на товар); строки с одинаковым id сливаются в одну запись.
type Procurement struct {
	ID               string
	UserID           *string // nil, если организацию не удалось связать с пользователем
	Name             string
	EstimatedPrice   *decimal.Decimal
	ActualPrice      *decimal.Decimal
	Status           string
	ProcurementDate  *time.Time
	PublicationDate  *time.Time
	OrganizationName string
	OrganizationINN  string
	Items            []ProcurementItem
	CreatedAt        time.Time
}

// ProcurementItem — позиция закупки.
// UnitPrice вычисляется делением оценочной стоимости закупки на число позиций,
// если в источнике нет явной цены строки.
type ProcurementItem struct {
	ID            string
	ProcurementID string
	ProductID     string
	Quantity      int
	UnitPrice     *decimal.Decimal
}
