// Package transform maps source rows onto the Keycloak import user shape.
package transform

import (
	"time"

	"github.com/spec-kit/user-migration/internal/domain"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// Params are the run-wide values every transformer applies.
type Params struct {
	DefaultPassword     string
	RealmRoles          []string
	ClientID            string
	ForcePasswordUpdate bool
	// Credential replaces the plain default-password credential when set.
	Credential *domain.Credential
	Now        func() time.Time
}

// Validate names every missing item so the run fails before any row is read.
func (p Params) Validate() error {
	var missing []string
	if p.DefaultPassword == "" {
		missing = append(missing, "KEYCLOAK_DEFAULT_PASSWORD")
	}
	if len(p.RealmRoles) == 0 {
		missing = append(missing, "KEYCLOAK_REALM_ROLES")
	}
	if len(missing) > 0 {
		return apperrors.NewMissingConfig(missing)
	}
	return nil
}

func (p Params) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Params) credentials() []domain.Credential {
	if p.Credential != nil {
		return []domain.Credential{*p.Credential}
	}
	return []domain.Credential{{Type: domain.CredentialTypePassword, Value: p.DefaultPassword}}
}

func (p Params) realmRoles() []string {
	return append(make([]string, 0, len(p.RealmRoles)), p.RealmRoles...)
}
