package pgdb

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// valuesClause строит плейсхолдеры многострочного INSERT: (\$1,\$2),(\$3,\$4)…
// casts задаёт явное приведение типа на колонку ("" — без приведения),
// чтобы numeric и jsonb передавались текстом без регистрации кодеков.
func valuesClause(rows int, casts []string) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for c, cast := range casts {
			if c > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d%s", n, cast)
			n++
		}
		b.WriteString(")")
	}

	return b.String()
}

// decimalArg передаёт decimal параметром-текстом (NULL для nil).
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}

	return d.String()
}

// specsArg сериализует характеристики в jsonb-параметр (NULL для пустых).
func specsArg(specs map[string]string) (any, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(specs)
	if err != nil {
		return nil, err
	}

	return string(data), nil
}

// parseDecimal разбирает текстовое представление numeric из выборки.
func parseDecimal(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}

	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}

	return &d
}
