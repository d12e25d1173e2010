package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-migration/internal/domain"
)

// ERPUserRepository reads user snapshots from the ERP store.
type ERPUserRepository interface {
	ListActive(ctx context.Context) ([]domain.ERPUser, error)
}

// PgxQuerier is the subset of a pgx pool the repositories use.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type erpUserRepository struct {
	pool PgxQuerier
}

// NewERPUserRepository returns a Postgres-backed implementation.
func NewERPUserRepository(pool PgxQuerier) ERPUserRepository {
	return &erpUserRepository{pool: pool}
}

// ListActive returns active users with an active partner and a non-empty login.
func (r *erpUserRepository) ListActive(ctx context.Context) ([]domain.ERPUser, error) {
	const query = `
        SELECT ru.login, COALESCE(rp.name, '') AS name, rp.email, rp.email_normalized, rp.phone, rp.phone_sanitized,
               ru.id AS user_id, rp.id AS partner_id
        FROM res_users ru
        LEFT JOIN res_partner rp ON (ru.partner_id = rp.id)
        WHERE ru.active IS TRUE
          AND rp.active IS TRUE
          AND ru.login IS NOT NULL
          AND ru.login != ''`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.ERPUser{}
	for rows.Next() {
		var user domain.ERPUser
		if err := rows.Scan(
			&user.Login,
			&user.Name,
			&user.Email,
			&user.EmailNormalized,
			&user.Phone,
			&user.PhoneSanitized,
			&user.UserID,
			&user.PartnerID,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
