package transform

import (
	"strconv"
	"strings"

	"github.com/spec-kit/user-migration/internal/domain"
)

const placeholderEmailDomain = "example.com"

// Clinical maps a clinical-records row. Rows without a usable email get a
// placeholder address, so the email is never marked verified.
func Clinical(u domain.ClinicalUser, p Params) domain.KeycloakUser {
	username := NormalizeUsername(u.Username)

	email := deref(u.Email)
	if strings.TrimSpace(email) == "" {
		email = username + "@" + placeholderEmailDomain
	}

	requiredActions := []string{}
	if p.ForcePasswordUpdate {
		requiredActions = append(requiredActions, domain.ActionUpdatePassword)
	}

	clientRoles := map[string][]string{}
	if p.ClientID != "" {
		clientRoles[p.ClientID] = []string{}
	}

	return domain.KeycloakUser{
		Username:         username,
		FirstName:        deref(u.GivenName),
		LastName:         deref(u.FamilyName),
		Email:            email,
		Enabled:          true,
		EmailVerified:    false,
		CreatedTimestamp: p.now().UnixMilli(),
		Credentials:      p.credentials(),
		Attributes: map[string]string{
			domain.AttrSourceSystem: string(domain.SourceClinical),
			"source_id":             u.UUID,
			"source_user_id":        strconv.FormatInt(u.UserID, 10),
			"provider":              "true",
		},
		DisableableCredentialTypes: []string{},
		RequiredActions:            requiredActions,
		RealmRoles:                 p.realmRoles(),
		ClientRoles:                clientRoles,
		Groups:                     []string{},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
