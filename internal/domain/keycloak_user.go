package domain

// Keycloak required actions used by the migration.
const ActionUpdatePassword = "UPDATE_PASSWORD"

// CredentialTypePassword is the only credential type emitted.
const CredentialTypePassword = "password"

// Credential is a Keycloak credential representation. Value carries a plain
// password; SecretData and CredentialData carry a pre-hashed one.
type Credential struct {
	Type           string `json:"type"`
	Value          string `json:"value,omitempty"`
	SecretData     string `json:"secretData,omitempty"`
	CredentialData string `json:"credentialData,omitempty"`
}

// KeycloakUser is the canonical user every source converges to.
type KeycloakUser struct {
	Username                   string              `json:"username"`
	FirstName                  string              `json:"firstName"`
	LastName                   string              `json:"lastName"`
	Email                      string              `json:"email"`
	Enabled                    bool                `json:"enabled"`
	EmailVerified              bool                `json:"emailVerified"`
	CreatedTimestamp           int64               `json:"createdTimestamp"`
	Totp                       bool                `json:"totp"`
	Credentials                []Credential        `json:"credentials"`
	Attributes                 map[string]string   `json:"attributes"`
	DisableableCredentialTypes []string            `json:"disableableCredentialTypes"`
	RequiredActions            []string            `json:"requiredActions"`
	RealmRoles                 []string            `json:"realmRoles"`
	ClientRoles                map[string][]string `json:"clientRoles"`
	NotBefore                  int64               `json:"notBefore"`
	Groups                     []string            `json:"groups"`
}

// Source returns the source_system attribute.
func (u KeycloakUser) Source() SourceSystem {
	return SourceSystem(u.Attributes[AttrSourceSystem])
}

// ImportDocument is the bulk import file shape.
type ImportDocument struct {
	Users []KeycloakUser `json:"users"`
}
