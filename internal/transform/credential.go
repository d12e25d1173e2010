package transform

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/spec-kit/user-migration/internal/domain"
)

const (
	hashAlgorithm         = "pbkdf2-sha256"
	DefaultHashIterations = 27500
	hashKeyLength         = 64
	saltLength            = 16
)

type secretData struct {
	Value string `json:"value"`
	Salt  string `json:"salt"`
}

type credentialData struct {
	HashIterations int    `json:"hashIterations"`
	Algorithm      string `json:"algorithm"`
}

// HashedCredential derives a Keycloak pbkdf2-sha256 credential from the
// default password with a fresh random salt.
func HashedCredential(password string, iterations int) (*domain.Credential, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return hashedCredentialWithSalt(password, salt, iterations)
}

func hashedCredentialWithSalt(password string, salt []byte, iterations int) (*domain.Credential, error) {
	if iterations <= 0 {
		iterations = DefaultHashIterations
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, hashKeyLength, sha256.New)

	secret, err := json.Marshal(secretData{
		Value: base64.StdEncoding.EncodeToString(key),
		Salt:  base64.StdEncoding.EncodeToString(salt),
	})
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(credentialData{HashIterations: iterations, Algorithm: hashAlgorithm})
	if err != nil {
		return nil, err
	}
	return &domain.Credential{
		Type:           domain.CredentialTypePassword,
		SecretData:     string(secret),
		CredentialData: string(data),
	}, nil
}
