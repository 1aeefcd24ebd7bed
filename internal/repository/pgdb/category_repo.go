package pgdb

import (
	"context"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

var categoryCasts = []string{"", "", "", "", "", ""}

// UpsertBatch идемпотентно записывает батч категорий одним многострочным
// INSERT с разрешением конфликта по id (последняя запись побеждает).
// Требует открытой транзакции в контексте.
func (c *CategoryRepo) UpsertBatch(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO categories (id, parent_id, name, description, keywords, level)
		VALUES ` + valuesClause(len(categories), categoryCasts) + `
		ON CONFLICT (id) DO UPDATE SET
			parent_id = EXCLUDED.parent_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			keywords = EXCLUDED.keywords,
			level = EXCLUDED.level,
			updated_at = NOW();
	`

	args := make([]any, 0, len(categories)*len(categoryCasts))
	for _, category := range categories {
		args = append(args,
			category.ID,
			category.ParentID,
			category.Name,
			category.Description,
			category.Keywords,
			category.Level,
		)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// GetAll возвращает все категории каталога в порядке уровня и названия.
func (c *CategoryRepo) GetAll(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, parent_id, name, description, keywords, level, created_at, updated_at
		FROM categories
		ORDER BY level, name;
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]*domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(
			&category.ID, &category.ParentID, &category.Name, &category.Description,
			&category.Keywords, &category.Level, &category.CreatedAt, &category.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, &category)
	}

	return result, rows.Err()
}
