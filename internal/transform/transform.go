package transform

import (
	"github.com/spec-kit/user-migration/internal/domain"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// Transform dispatches a record to the transformer for its source.
func Transform(rec domain.SourceRecord, p Params) (domain.KeycloakUser, error) {
	switch {
	case rec.Source == domain.SourceClinical && rec.Clinical != nil:
		return Clinical(*rec.Clinical, p), nil
	case rec.Source == domain.SourceERP && rec.ERP != nil:
		return ERP(*rec.ERP, p), nil
	}
	return domain.KeycloakUser{}, apperrors.NewDataError("unrecognized source record", map[string]any{
		"source": string(rec.Source),
	})
}

// All transforms a batch, stopping at the first unrecognized record.
func All(records []domain.SourceRecord, p Params) ([]domain.KeycloakUser, error) {
	users := make([]domain.KeycloakUser, 0, len(records))
	for _, rec := range records {
		user, err := Transform(rec, p)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
