package pgdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// SchemaRepo — служебные операции над схемой вокруг массовой загрузки:
// проверка наличия таблиц, переключение триггеров ссылочной целостности
// и контрольные счётчики строк.
type SchemaRepo struct {
	pool *pgxpool.Pool
}

func NewSchemaRepo(pool *pgxpool.Pool) *SchemaRepo {
	return &SchemaRepo{pool: pool}
}

// ValidateSchema убеждается, что все ожидаемые таблицы существуют.
// Отсутствие любой из них фатально для запуска импорта.
func (s *SchemaRepo) ValidateSchema(ctx context.Context, tables []string) error {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1);
	`

	rows, err := s.pool.Query(ctx, query, tables)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(tables))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		found[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	var missing []string
	for _, table := range tables {
		if _, ok := found[table]; !ok {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return e.Wrap(strings.Join(missing, ", "), e.ErrTableNotFound)
	}

	return nil
}

// SetReferentialIntegrity переключает триггеры внешних ключей перечисленных
// таблиц. На время массовой загрузки целостность отключается, чтобы порядок
// записи не зависел от направления внешних ключей.
func (s *SchemaRepo) SetReferentialIntegrity(ctx context.Context, enabled bool) error {
	action := "DISABLE"
	if enabled {
		action = "ENABLE"
	}

	for _, table := range integrityTables {
		// Имена таблиц берутся из фиксированного списка, не из ввода.
		query := fmt.Sprintf("ALTER TABLE %s %s TRIGGER ALL;", table, action)
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// integrityTables — таблицы с внешними ключами, участвующие в массовой загрузке.
var integrityTables = []string{
	"categories",
	"products",
	"procurements",
	"procurement_items",
	"template_products",
}

// TableCounts возвращает контрольные счётчики строк по таблицам.
func (s *SchemaRepo) TableCounts(ctx context.Context, tables []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s;", table)

		var count int64
		if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		counts[table] = count
	}

	return counts, nil
}
