package source

import (
	"fmt"
	"strings"

	"github.com/zakupka-tech/go-backend/pkg/e"
)

// Column описывает каноническое поле источника и допустимые имена его заголовка.
// Таблица псевдонимов явная и проверяется один раз при открытии потока,
// вместо угадывания колонок по каждой записи.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// productColumns — канонический контракт CSV каталога товаров
// (разделитель ';', именованные заголовки).
var productColumns = []Column{
	{Name: "product_id", Aliases: []string{"product_id", "id", "код"}},
	{Name: "name", Aliases: []string{"name", "product_name", "наименование"}, Required: true},
	{Name: "description", Aliases: []string{"description", "описание"}},
	{Name: "category_id", Aliases: []string{"category_id", "category", "категория"}},
	{Name: "manufacturer", Aliases: []string{"manufacturer", "производитель"}},
	{Name: "unit_of_measure", Aliases: []string{"unit_of_measure", "unit", "ед_изм"}},
	{Name: "specifications", Aliases: []string{"specifications", "specs", "характеристики"}},
	{Name: "average_price", Aliases: []string{"average_price", "price", "цена"}},
}

// resolveHeader сопоставляет строку заголовка каноническим полям.
// Возвращает отображение имя поля → индекс колонки; отсутствие обязательного
// поля — ошибка открытия потока.
func resolveHeader(header []string, columns []Column) (map[string]int, error) {
	byAlias := make(map[string]string)
	for _, col := range columns {
		for _, alias := range col.Aliases {
			byAlias[alias] = col.Name
		}
	}

	index := make(map[string]int, len(columns))
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if name, ok := byAlias[key]; ok {
			if _, taken := index[name]; !taken {
				index[name] = i
			}
		}
	}

	var missing []string
	for _, col := range columns {
		if !col.Required {
			continue
		}
		if _, ok := index[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}

	if len(missing) > 0 {
		return nil, e.Wrap(
			fmt.Sprintf("header is missing required columns: %s", strings.Join(missing, ", ")),
			e.ErrMissingFields,
		)
	}

	return index, nil
}

// cell возвращает значение колонки канонического поля или пустую строку.
func cell(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}
