package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-migration/internal/domain"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

var managedKeys = []string{
	"APP_ENV", "SOURCE_SYSTEM", "DRY_RUN", "RUN_TIMEOUT_SECONDS",
	"CLINICAL_DB_HOST", "CLINICAL_DB_PORT", "CLINICAL_DB_USER", "CLINICAL_DB_PASSWORD", "CLINICAL_DB_NAME",
	"CLINICAL_DB_MAX_CONNS", "ERP_DB_DSN", "ERP_DB_MAX_CONNS", "REDIS_ADDR", "REDIS_DB",
	"KEYCLOAK_DEFAULT_PASSWORD", "KEYCLOAK_REALM_ROLES", "KEYCLOAK_CLIENT_ID",
	"KEYCLOAK_FORCE_PASSWORD_UPDATE", "KEYCLOAK_HASH_PASSWORD",
	"OUTPUT_DIR", "OUTPUT_FILENAME", "OUTPUT_S3_BUCKET",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func setValidEnv(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("SOURCE_SYSTEM", "all")
	t.Setenv("CLINICAL_DB_HOST", "localhost")
	t.Setenv("CLINICAL_DB_USER", "testuser")
	t.Setenv("CLINICAL_DB_PASSWORD", "testpass")
	t.Setenv("CLINICAL_DB_NAME", "testdb")
	t.Setenv("ERP_DB_DSN", "postgres://odoo@localhost/odoo")
	t.Setenv("KEYCLOAK_DEFAULT_PASSWORD", "Temp123")
	t.Setenv("KEYCLOAK_REALM_ROLES", `["user","offline_access"]`)
	t.Setenv("OUTPUT_DIR", "test-output")
	t.Setenv("OUTPUT_FILENAME", "users.json")
}

func TestLoadDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3306, cfg.Clinical.Port)
	assert.Equal(t, "utf8mb4", cfg.Clinical.Charset)
	assert.Equal(t, 10, cfg.Clinical.MaxConns)
	assert.Equal(t, int32(10), cfg.ERP.MaxConns)
	assert.Equal(t, []string{"user", "offline_access"}, cfg.Keycloak.RealmRoles)
	assert.True(t, cfg.Keycloak.ForcePasswordUpdate)
	assert.False(t, cfg.Keycloak.HashPassword)
	assert.False(t, cfg.App.DryRun)
	assert.Equal(t, "all", cfg.App.SourceSystem)
	assert.Zero(t, cfg.App.RunTimeout())
	assert.NoError(t, cfg.Validate(domain.ModeAll))
}

func TestLoadTestEnvironmentUsesSingleConnection(t *testing.T) {
	setValidEnv(t)
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Clinical.MaxConns)
	assert.Equal(t, int32(1), cfg.ERP.MaxConns)
}

func TestLoadDefaultsToAllSources(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SOURCE_SYSTEM", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, string(domain.ModeAll), cfg.App.SourceSystem)
	assert.Equal(t, "us-east-1", cfg.Output.S3Region)
}

func TestParseRoles(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "json list", raw: `["user"]`, want: []string{"user"}},
		{name: "json keeps commas inside names", raw: `["a,b","c"]`, want: []string{"a,b", "c"}},
		{name: "comma list", raw: "role1, role2,,", want: []string{"role1", "role2"}},
		{name: "empty", raw: "  ", want: nil},
		{name: "broken json", raw: `["user"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRoles(tt.raw)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateNamesMissingVariables(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CLINICAL_DB_HOST", "")
	t.Setenv("CLINICAL_DB_USER", "")
	t.Setenv("OUTPUT_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate(domain.ModeAll)
	require.Error(t, err)
	assert.Equal(t, "missing required environment variables: CLINICAL_DB_HOST, CLINICAL_DB_USER, OUTPUT_DIR", err.Error())
	assert.Equal(t, 2, apperrors.ExitCode(err))

	// ERP-only runs do not need the clinical store.
	err = cfg.Validate(domain.ModeERP)
	assert.EqualError(t, err, "missing required environment variables: OUTPUT_DIR")
}

func TestValidateS3OutputSkipsDirectory(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("OUTPUT_S3_BUCKET", "imports")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate(domain.ModeAll))
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	setValidEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate(domain.SourceMode("foo"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already present, even when empty.
	require.NoError(t, os.Unsetenv("KEYCLOAK_DEFAULT_PASSWORD"))
	require.NoError(t, os.Unsetenv("KEYCLOAK_REALM_ROLES"))
	path := filepath.Join(t.TempDir(), "migration.env")
	require.NoError(t, os.WriteFile(path, []byte("KEYCLOAK_DEFAULT_PASSWORD=FromFile\nKEYCLOAK_REALM_ROLES=user\n"), 0o600))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "FromFile", cfg.Keycloak.DefaultPassword)
	assert.Equal(t, []string{"user"}, cfg.Keycloak.RealmRoles)
}
