package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-migration/internal/config"
	"github.com/spec-kit/user-migration/internal/domain"
	"github.com/spec-kit/user-migration/internal/output"
	"github.com/spec-kit/user-migration/internal/service"
	"github.com/spec-kit/user-migration/internal/transform"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

func TestRootCommandRejectsUnknownSource(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--source", "foo", "--env-file", filepath.Join(t.TempDir(), "none.env")})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
	assert.Equal(t, 2, apperrors.ExitCode(err))
}

func TestRootCommandReportsMissingConfiguration(t *testing.T) {
	for _, key := range []string{"KEYCLOAK_DEFAULT_PASSWORD", "KEYCLOAK_REALM_ROLES", "OUTPUT_DIR", "OUTPUT_FILENAME", "OUTPUT_S3_BUCKET", "ERP_DB_DSN"} {
		t.Setenv(key, "")
	}
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--source", "erp", "--env-file", filepath.Join(t.TempDir(), "none.env")})

	err := cmd.ExecuteContext(context.Background())
	assert.EqualError(t, err, "missing required environment variables: ERP_DB_DSN, KEYCLOAK_DEFAULT_PASSWORD, KEYCLOAK_REALM_ROLES, OUTPUT_DIR, OUTPUT_FILENAME")
}

func TestTransformParams(t *testing.T) {
	params, err := transformParams(config.KeycloakConfig{
		DefaultPassword:     "Temp123",
		RealmRoles:          []string{"user"},
		ClientID:            "portal",
		ForcePasswordUpdate: true,
	})
	require.NoError(t, err)
	assert.Nil(t, params.Credential)
	assert.Equal(t, "portal", params.ClientID)

	hashed, err := transformParams(config.KeycloakConfig{
		DefaultPassword: "Temp123",
		RealmRoles:      []string{"user"},
		HashPassword:    true,
		HashIterations:  1000,
	})
	require.NoError(t, err)
	require.NotNil(t, hashed.Credential)
	assert.Equal(t, domain.CredentialTypePassword, hashed.Credential.Type)
	assert.Empty(t, hashed.Credential.Value)
}

func TestNewOutputSinkDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := newOutputSink(context.Background(), config.OutputConfig{Dir: dir, Filename: "users.json"})
	require.NoError(t, err)

	fileSink, ok := sink.(*output.FileSink)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "users-suppressed.json"), fileSink.Path(output.KindSuppressed))
}

func TestNewOutputSinkUsesS3WhenBucketSet(t *testing.T) {
	sink, err := newOutputSink(context.Background(), config.OutputConfig{
		Filename:          "users.json",
		S3Bucket:          "imports",
		S3Prefix:          "keycloak",
		S3Endpoint:        "http://localhost:9000",
		S3Region:          "us-east-1",
		S3AccessKeyID:     "minio",
		S3SecretAccessKey: "minio123",
	})
	require.NoError(t, err)

	s3Sink, ok := sink.(*output.S3Sink)
	require.True(t, ok)
	assert.Equal(t, "keycloak/users.json", s3Sink.Key(output.KindMerged))
}

func deliverFixture(t *testing.T, dryRun bool) (string, *int) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		App:    config.AppConfig{DryRun: dryRun},
		Output: config.OutputConfig{Dir: dir, Filename: "users.json"},
	}
	calls := 0
	factory := func(ctx context.Context, out config.OutputConfig) (output.Sink, error) {
		calls++
		return newOutputSink(ctx, out)
	}
	result := &service.RunResult{
		RunID:      "run-1",
		Winners:    []domain.KeycloakUser{{Username: "a"}},
		Suppressed: []domain.KeycloakUser{{Username: "a"}},
	}
	svc := service.NewMigrationService(transform.Params{}, service.MigrationDependencies{})

	require.NoError(t, deliver(context.Background(), cfg, svc, result, factory, zap.NewNop()))
	return dir, &calls
}

func TestDeliverDryRunWritesNothing(t *testing.T) {
	dir, calls := deliverFixture(t, true)

	assert.Zero(t, *calls)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeliverWritesDocuments(t *testing.T) {
	dir, calls := deliverFixture(t, false)

	assert.Equal(t, 1, *calls)
	assert.FileExists(t, filepath.Join(dir, "users.json"))
	assert.FileExists(t, filepath.Join(dir, "users-suppressed.json"))
}
