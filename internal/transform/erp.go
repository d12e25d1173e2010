package transform

import (
	"strconv"
	"strings"

	"github.com/spec-kit/user-migration/internal/domain"
)

// ERP maps an ERP row. The ERP treats its addresses as verified and never
// forces a password reset.
func ERP(u domain.ERPUser, p Params) domain.KeycloakUser {
	firstName, lastName := splitDisplayName(u.Name)

	return domain.KeycloakUser{
		Username:         NormalizeUsername(u.Login),
		FirstName:        firstName,
		LastName:         lastName,
		Email:            firstNonEmpty(u.EmailNormalized, u.Email),
		Enabled:          true,
		EmailVerified:    true,
		CreatedTimestamp: p.now().UnixMilli(),
		Credentials:      p.credentials(),
		Attributes: map[string]string{
			domain.AttrSourceSystem: string(domain.SourceERP),
			"source_id":             strconv.FormatInt(u.UserID, 10),
			"partner_id":            strconv.FormatInt(u.PartnerID, 10),
			"phone":                 firstNonEmpty(u.PhoneSanitized, u.Phone),
		},
		DisableableCredentialTypes: []string{},
		RequiredActions:            []string{},
		RealmRoles:                 p.realmRoles(),
		ClientRoles:                map[string][]string{},
		Groups:                     []string{},
	}
}

// splitDisplayName takes the first token as given name and the rest as family name.
func splitDisplayName(name string) (string, string) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "", ""
	}
	return tokens[0], strings.Join(tokens[1:], " ")
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
