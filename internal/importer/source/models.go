package source

// ProductRow — сырая строка каталога товаров до нормализации.
type ProductRow struct {
	ProductID      string
	Name           string
	Description    string
	CategoryID     string
	Manufacturer   string
	UnitOfMeasure  string
	Specifications string
	AveragePrice   string
	Line           int // номер строки в файле, для журнала ошибок
}

// ProcurementRow — сырая строка истории закупок: одна строка на пару
// (закупка, товар), строки одной закупки разделяют procurement_id.
type ProcurementRow struct {
	ProcurementID   string
	Date            string
	Organization    string
	ProcurementName string
	ProductID       string
	EstimatedPrice  string
	INN             string
	Year            string
	Line            int
}

// CategoryEntry — элемент уплощённой иерархии категорий.
// Сегменты пути соединены разделителем " -> ".
type CategoryEntry struct {
	CategoryPath string   `json:"category_path"`
	Level        int      `json:"level"`
	Keywords     []string `json:"keywords"`
}

// TemplateEntry описывает шаблон типовой закупки из JSON-файла.
type TemplateEntry struct {
	Name               string             `json:"name"`
	Keywords           []string           `json:"keywords"`
	SizeRange          []int              `json:"size_range"`
	SampleSize         int                `json:"sample_size"`
	AvgProductsPerProc float64            `json:"avg_products_per_procurement"`
	AvgPrice           string             `json:"avg_price"`
	TypicalProducts    []string           `json:"typical_products"`
	ProductFrequencies map[string]float64 `json:"product_frequencies"`
}
