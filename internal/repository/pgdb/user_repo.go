package pgdb

import (
	"context"

	"github.com/zakupka-tech/go-backend/internal/domain"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

var userCasts = []string{"", "", "", "", "", "", ""}

// UpsertBatch записывает батч синтезированных пользователей.
// Пароль существующего пользователя не перезаписывается: учётная запись
// могла быть уже активирована.
func (u *UserRepo) UpsertBatch(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO users (id, email, password_hash, inn, company_name, full_name, phone_number)
		VALUES ` + valuesClause(len(users), userCasts) + `
		ON CONFLICT (id) DO UPDATE SET
			inn = EXCLUDED.inn,
			company_name = EXCLUDED.company_name;
	`

	args := make([]any, 0, len(users)*len(userCasts))
	for _, user := range users {
		args = append(args,
			user.ID,
			user.Email,
			user.PasswordHash,
			user.INN,
			user.CompanyName,
			user.FullName,
			user.PhoneNumber,
		)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// EnsureTestUser идемпотентно создаёт тестового пользователя вне транзакции импорта.
func (u *UserRepo) EnsureTestUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, inn, company_name, full_name, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING;
	`

	if _, err := u.pool.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.INN,
		user.CompanyName, user.FullName, user.PhoneNumber,
	); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
