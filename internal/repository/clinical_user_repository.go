package repository

import (
	"context"
	"database/sql"

	"github.com/spec-kit/user-migration/internal/domain"
)

// ClinicalUserRepository reads user snapshots from the clinical-records store.
type ClinicalUserRepository interface {
	ListActive(ctx context.Context) ([]domain.ClinicalUser, error)
}

type clinicalUserRepository struct {
	db *sql.DB
}

// NewClinicalUserRepository returns a MySQL-backed implementation.
func NewClinicalUserRepository(db *sql.DB) ClinicalUserRepository {
	return &clinicalUserRepository{db: db}
}

// ListActive returns non-retired users joined with their preferred, non-voided name.
func (r *clinicalUserRepository) ListActive(ctx context.Context) ([]domain.ClinicalUser, error) {
	const query = `
        SELECT u.uuid, u.user_id, u.username, pn.given_name, pn.middle_name, pn.family_name, u.email
        FROM users u
        LEFT JOIN person_name pn ON (u.person_id = pn.person_id)
        WHERE u.retired = 0 AND pn.voided = 0 AND pn.preferred = 1`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.ClinicalUser{}
	for rows.Next() {
		var user domain.ClinicalUser
		var givenName, middleName, familyName, email sql.NullString
		if err := rows.Scan(
			&user.UUID,
			&user.UserID,
			&user.Username,
			&givenName,
			&middleName,
			&familyName,
			&email,
		); err != nil {
			return nil, err
		}
		user.GivenName = nullable(givenName)
		user.MiddleName = nullable(middleName)
		user.FamilyName = nullable(familyName)
		user.Email = nullable(email)
		users = append(users, user)
	}
	return users, rows.Err()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
