package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Price разбирает денежную строку из исходных данных.
// Принимает запятую или точку как десятичный разделитель, игнорирует пробелы
// (включая неразрывные, которыми в выгрузках отделяют тысячи).
// Отрицательные, пустые и нечисловые значения дают nil, результат округляется
// до двух знаков.
func Price(s string) *decimal.Decimal {
	cleaned := stripSpaces(s)
	if cleaned == "" {
		return nil
	}

	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if strings.Count(cleaned, ".") > 1 {
		return nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}

	if d.IsNegative() {
		return nil
	}

	rounded := d.Round(2)
	return &rounded
}

// stripSpaces удаляет обычные, неразрывные и узкие пробелы.
func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ' ', ' ', ' ':
			return -1
		}
		return r
	}, s)
}
