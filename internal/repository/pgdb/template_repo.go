package pgdb

import (
	"context"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/internal/usecase"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// TemplateRepo реализует репозиторий шаблонов типовых закупок поверх PostgreSQL.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

var (
	templateCasts        = []string{"", "", "", "", "", "::numeric"}
	templateProductCasts = []string{"", "", "", ""}
)

// UpsertBatch записывает батч шаблонов с их товарами в одной транзакции.
// Списки товаров шаблонов заменяются целиком, чтобы удалённые из шаблона
// товары не оставались от прошлых запусков.
func (t *TemplateRepo) UpsertBatch(ctx context.Context, templates []*domain.Template) error {
	if len(templates) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO procurement_templates (
			id, name, keywords, sample_size, avg_products_count, avg_price
		)
		VALUES ` + valuesClause(len(templates), templateCasts) + `
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			keywords = EXCLUDED.keywords,
			sample_size = EXCLUDED.sample_size,
			avg_products_count = EXCLUDED.avg_products_count,
			avg_price = EXCLUDED.avg_price;
	`

	args := make([]any, 0, len(templates)*len(templateCasts))
	ids := make([]string, 0, len(templates))
	var products []domain.TemplateProduct
	for _, template := range templates {
		args = append(args,
			template.ID,
			template.Name,
			template.Keywords,
			template.SampleSize,
			template.AvgProductsCount,
			decimalArg(template.AvgPrice),
		)
		ids = append(ids, template.ID)
		products = append(products, template.Products...)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM template_products WHERE template_id = ANY($1);`, ids); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return t.insertProducts(ctx, products)
}

func (t *TemplateRepo) insertProducts(ctx context.Context, products []domain.TemplateProduct) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO template_products (template_id, product_id, frequency, position)
		VALUES ` + valuesClause(len(products), templateProductCasts) + `
		ON CONFLICT (template_id, product_id) DO UPDATE SET
			frequency = EXCLUDED.frequency,
			position = EXCLUDED.position;
	`

	args := make([]any, 0, len(products)*len(templateProductCasts))
	for _, product := range products {
		args = append(args, product.TemplateID, product.ProductID, product.Frequency, product.Position)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// PopularProducts возвращает наиболее частые товары шаблонов. Используется
// как резервный список рекомендаций, когда внешний сервис недоступен.
func (t *TemplateRepo) PopularProducts(ctx context.Context, limit int) ([]usecase.ProductInfo, error) {
	query := `
		SELECT ` + productInfoColumns + `
		FROM template_products tp
		JOIN products pr ON pr.id = tp.product_id
		LEFT JOIN categories cat ON pr.category_id = cat.id
		GROUP BY pr.id, pr.name, pr.category_id, cat.name,
			pr.manufacturer, pr.unit_of_measure, pr.average_price, pr.is_available
		ORDER BY MAX(tp.frequency) DESC
		LIMIT $1;
	`

	rows, err := t.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return scanProductInfos(rows)
}
