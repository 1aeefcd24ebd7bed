package pgdb

import (
	"context"
	"strings"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

var productCasts = []string{"", "", "", "", "", "", "::jsonb", "::numeric", "", ""}

// UpsertBatch идемпотентно записывает батч товаров одним многострочным INSERT.
// Конфликт по id разрешается обновлением записи (последняя запись побеждает).
// Требует открытой транзакции в контексте.
func (p *ProductRepo) UpsertBatch(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO products (
			id, name, description, category_id, manufacturer,
			unit_of_measure, specifications, average_price, is_available, source_system
		)
		VALUES ` + valuesClause(len(products), productCasts) + `
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category_id = EXCLUDED.category_id,
			manufacturer = EXCLUDED.manufacturer,
			unit_of_measure = EXCLUDED.unit_of_measure,
			specifications = EXCLUDED.specifications,
			average_price = EXCLUDED.average_price,
			is_available = EXCLUDED.is_available,
			source_system = EXCLUDED.source_system,
			updated_at = NOW();
	`

	args := make([]any, 0, len(products)*len(productCasts))
	for _, product := range products {
		specs, err := specsArg(product.Specifications)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		args = append(args,
			product.ID,
			product.Name,
			product.Description,
			product.CategoryID,
			product.Manufacturer,
			product.UnitOfMeasure,
			specs,
			decimalArg(product.AveragePrice),
			product.IsAvailable,
			product.SourceSystem,
		)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

const productInfoColumns = `
	pr.id, pr.name,
	COALESCE(pr.category_id, ''), COALESCE(cat.name, ''),
	pr.manufacturer, pr.unit_of_measure,
	pr.average_price::text, pr.is_available
`

// Search ищет товары по подстроке названия и категории.
func (p *ProductRepo) Search(ctx context.Context, req *usecase.SearchProductsReq) ([]usecase.ProductInfo, error) {
	query := `
		SELECT ` + productInfoColumns + `
		FROM products pr
		LEFT JOIN categories cat ON pr.category_id = cat.id
		WHERE ($1 = '' OR pr.name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR pr.category_id = $2)
		ORDER BY pr.name
		LIMIT $3 OFFSET $4;
	`

	rows, err := p.pool.Query(ctx, query, strings.TrimSpace(req.Query), req.CategoryID, req.Limit, req.Offset)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return scanProductInfos(rows)
}

// GetProductsInfo возвращает информацию о товарах по их идентификаторам,
// включая название категории.
func (p *ProductRepo) GetProductsInfo(ctx context.Context, ids []string) ([]usecase.ProductInfo, error) {
	query := `
		SELECT ` + productInfoColumns + `
		FROM products pr
		LEFT JOIN categories cat ON pr.category_id = cat.id
		WHERE pr.id = ANY($1);
	`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return scanProductInfos(rows)
}

func scanProductInfos(rows pgx.Rows) ([]usecase.ProductInfo, error) {
	result := make([]usecase.ProductInfo, 0)
	for rows.Next() {
		var (
			product  usecase.ProductInfo
			priceStr *string
		)
		if err := rows.Scan(
			&product.ID, &product.Name,
			&product.CategoryID, &product.CategoryName,
			&product.Manufacturer, &product.UnitOfMeasure,
			&priceStr, &product.IsAvailable,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		product.AveragePrice = parseDecimal(priceStr)
		result = append(result, product)
	}

	return result, rows.Err()
}
