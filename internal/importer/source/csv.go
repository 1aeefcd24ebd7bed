package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

// EachProduct потоково читает CSV каталога товаров и вызывает fn для каждой
// строки. Чтение приостанавливается на время обработки строки, поэтому буфер
// не растёт на больших файлах. Ошибка fn прерывает чтение.
func EachProduct(path string, fn func(row ProductRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	index, err := resolveHeader(header, productColumns)
	if err != nil {
		return e.Wrap(path, err)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return e.Wrap(fmt.Sprintf("%s:%d", path, line), err)
		}

		row := ProductRow{
			ProductID:      cell(record, index, "product_id"),
			Name:           cell(record, index, "name"),
			Description:    cell(record, index, "description"),
			CategoryID:     cell(record, index, "category_id"),
			Manufacturer:   cell(record, index, "manufacturer"),
			UnitOfMeasure:  cell(record, index, "unit_of_measure"),
			Specifications: cell(record, index, "specifications"),
			AveragePrice:   cell(record, index, "average_price"),
			Line:           line,
		}

		if err := fn(row); err != nil {
			return err
		}
	}
}

// procurementFieldCount — число позиционных колонок истории закупок:
// procurement_id, date, organization, procurement_name, product_id,
// estimated_price, inn, year.
const procurementFieldCount = 8

// EachProcurementRow потоково читает позиционный CSV истории закупок.
// Строка заголовка, если есть, распознаётся по первому полю и пропускается.
func EachProcurementRow(path string, fn func(row ProcurementRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return e.Wrap(fmt.Sprintf("%s:%d", path, line), err)
		}

		if line == 1 && isProcurementHeader(record) {
			continue
		}

		if len(record) < procurementFieldCount {
			return e.Wrap(
				fmt.Sprintf("%s:%d: expected %d columns, got %d", path, line, procurementFieldCount, len(record)),
				e.ErrMissingFields,
			)
		}

		row := ProcurementRow{
			ProcurementID:   strings.TrimSpace(record[0]),
			Date:            strings.TrimSpace(record[1]),
			Organization:    strings.TrimSpace(record[2]),
			ProcurementName: strings.TrimSpace(record[3]),
			ProductID:       strings.TrimSpace(record[4]),
			EstimatedPrice:  strings.TrimSpace(record[5]),
			INN:             strings.TrimSpace(record[6]),
			Year:            strings.TrimSpace(record[7]),
			Line:            line,
		}

		if err := fn(row); err != nil {
			return err
		}
	}
}

func isProcurementHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "procurement_id")
}
