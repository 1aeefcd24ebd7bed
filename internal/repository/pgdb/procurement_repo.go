package pgdb

import (
	"context"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProcurementRepo реализует репозиторий закупок поверх PostgreSQL.
type ProcurementRepo struct {
	pool *pgxpool.Pool
}

func NewProcurementRepo(pool *pgxpool.Pool) *ProcurementRepo {
	return &ProcurementRepo{pool: pool}
}

var (
	procurementCasts     = []string{"", "", "", "::numeric", "::numeric", "", "", "", "", ""}
	procurementItemCasts = []string{"", "", "", "", "::numeric"}
)

// UpsertBatch записывает батч закупок вместе с позициями в рамках одной
// транзакции из контекста: либо сохраняется весь батч, либо ничего.
func (p *ProcurementRepo) UpsertBatch(ctx context.Context, procurements []*domain.Procurement) error {
	if len(procurements) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO procurements (
			id, user_id, name, estimated_price, actual_price,
			status, procurement_date, publication_date, organization_name, organization_inn
		)
		VALUES ` + valuesClause(len(procurements), procurementCasts) + `
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			name = EXCLUDED.name,
			estimated_price = EXCLUDED.estimated_price,
			actual_price = EXCLUDED.actual_price,
			status = EXCLUDED.status,
			procurement_date = EXCLUDED.procurement_date,
			publication_date = EXCLUDED.publication_date,
			organization_name = EXCLUDED.organization_name,
			organization_inn = EXCLUDED.organization_inn;
	`

	args := make([]any, 0, len(procurements)*len(procurementCasts))
	var items []domain.ProcurementItem
	for _, procurement := range procurements {
		args = append(args,
			procurement.ID,
			procurement.UserID,
			procurement.Name,
			decimalArg(procurement.EstimatedPrice),
			decimalArg(procurement.ActualPrice),
			procurement.Status,
			procurement.ProcurementDate,
			procurement.PublicationDate,
			procurement.OrganizationName,
			procurement.OrganizationINN,
		)
		items = append(items, procurement.Items...)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.upsertItems(ctx, items)
}

// upsertItems записывает позиции закупок батча в той же транзакции.
func (p *ProcurementRepo) upsertItems(ctx context.Context, items []domain.ProcurementItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO procurement_items (id, procurement_id, product_id, quantity, unit_price)
		VALUES ` + valuesClause(len(items), procurementItemCasts) + `
		ON CONFLICT (id) DO UPDATE SET
			procurement_id = EXCLUDED.procurement_id,
			product_id = EXCLUDED.product_id,
			quantity = EXCLUDED.quantity,
			unit_price = EXCLUDED.unit_price;
	`

	args := make([]any, 0, len(items)*len(procurementItemCasts))
	for _, item := range items {
		args = append(args,
			item.ID,
			item.ProcurementID,
			item.ProductID,
			item.Quantity,
			decimalArg(item.UnitPrice),
		)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ListByUser возвращает закупки пользователя вместе с позициями.
func (p *ProcurementRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Procurement, error) {
	query := `
		SELECT id, user_id, name, estimated_price::text, actual_price::text,
			status, procurement_date, publication_date,
			organization_name, organization_inn, created_at
		FROM procurements
		WHERE user_id = $1
		ORDER BY procurement_date DESC NULLS LAST;
	`

	rows, err := p.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]*domain.Procurement, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var (
			procurement       domain.Procurement
			estimated, actual *string
		)
		if err := rows.Scan(
			&procurement.ID, &procurement.UserID, &procurement.Name,
			&estimated, &actual, &procurement.Status,
			&procurement.ProcurementDate, &procurement.PublicationDate,
			&procurement.OrganizationName, &procurement.OrganizationINN,
			&procurement.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		procurement.EstimatedPrice = parseDecimal(estimated)
		procurement.ActualPrice = parseDecimal(actual)
		result = append(result, &procurement)
		ids = append(ids, procurement.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := p.attachItems(ctx, result, ids); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *ProcurementRepo) attachItems(ctx context.Context, procurements []*domain.Procurement, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT id, procurement_id, product_id, quantity, unit_price::text
		FROM procurement_items
		WHERE procurement_id = ANY($1);
	`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Procurement, len(procurements))
	for _, procurement := range procurements {
		byID[procurement.ID] = procurement
	}

	for rows.Next() {
		var (
			item     domain.ProcurementItem
			priceStr *string
		)
		if err := rows.Scan(&item.ID, &item.ProcurementID, &item.ProductID, &item.Quantity, &priceStr); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		item.UnitPrice = parseDecimal(priceStr)
		if procurement, ok := byID[item.ProcurementID]; ok {
			procurement.Items = append(procurement.Items, item)
		}
	}

	return rows.Err()
}
