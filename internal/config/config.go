package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/user-migration/internal/domain"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// Config aggregates runtime configuration for a migration run.
type Config struct {
	App      AppConfig
	Clinical MySQLConfig
	ERP      PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Keycloak KeycloakConfig
	Output   OutputConfig
}

// AppConfig controls run level behavior.
type AppConfig struct {
	Name           string
	Env            string
	SourceSystem   string
	DryRun         bool
	TimeoutSeconds int
}

// MySQLConfig holds the clinical-records connection values.
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Charset  string
	MaxConns int
}

// PostgresConfig holds the ERP connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds the optional audit stream connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	AuditStream string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// KeycloakConfig holds the values applied to every migrated user.
type KeycloakConfig struct {
	DefaultPassword     string
	RealmRoles          []string
	ClientID            string
	ForcePasswordUpdate bool
	HashPassword        bool
	HashIterations      int
}

// OutputConfig controls where import documents are written.
type OutputConfig struct {
	Dir               string
	Filename          string
	S3Bucket          string
	S3Prefix          string
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load reads configuration from environment variables, applying defaults where possible.
// Missing env files are ignored; the first file wins for a given key.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("load env file %s", f), map[string]any{"error": err.Error()})
		}
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("invalid REDIS_DB: %v", err), nil)
	}

	roles, err := parseRoles(os.Getenv("KEYCLOAK_REALM_ROLES"))
	if err != nil {
		return nil, err
	}

	env := getEnv("APP_ENV", "production")
	maxConns := 10
	if env == "test" {
		maxConns = 1
	}

	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "user-migration"),
			Env:            env,
			SourceSystem:   getEnv("SOURCE_SYSTEM", string(domain.ModeAll)),
			DryRun:         getEnvAsBool("DRY_RUN", false),
			TimeoutSeconds: getEnvAsInt("RUN_TIMEOUT_SECONDS", 0),
		},
		Clinical: MySQLConfig{
			Host:     os.Getenv("CLINICAL_DB_HOST"),
			Port:     getEnvAsInt("CLINICAL_DB_PORT", 3306),
			User:     os.Getenv("CLINICAL_DB_USER"),
			Password: os.Getenv("CLINICAL_DB_PASSWORD"),
			Database: os.Getenv("CLINICAL_DB_NAME"),
			Charset:  getEnv("CLINICAL_DB_CHARSET", "utf8mb4"),
			MaxConns: getEnvAsInt("CLINICAL_DB_MAX_CONNS", maxConns),
		},
		ERP: PostgresConfig{
			DSN:            os.Getenv("ERP_DB_DSN"),
			MaxConns:       int32(getEnvAsInt("ERP_DB_MAX_CONNS", maxConns)),
			MinConns:       int32(getEnvAsInt("ERP_DB_MIN_CONNS", 1)),
			ConnMaxIdleSec: int32(getEnvAsInt("ERP_DB_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("ERP_DB_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        os.Getenv("REDIS_ADDR"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			AuditStream: getEnv("REDIS_AUDIT_STREAM", "user-migration:dedup"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Keycloak: KeycloakConfig{
			DefaultPassword:     os.Getenv("KEYCLOAK_DEFAULT_PASSWORD"),
			RealmRoles:          roles,
			ClientID:            os.Getenv("KEYCLOAK_CLIENT_ID"),
			ForcePasswordUpdate: getEnvAsBool("KEYCLOAK_FORCE_PASSWORD_UPDATE", true),
			HashPassword:        getEnvAsBool("KEYCLOAK_HASH_PASSWORD", false),
			HashIterations:      getEnvAsInt("KEYCLOAK_HASH_ITERATIONS", 27500),
		},
		Output: OutputConfig{
			Dir:               os.Getenv("OUTPUT_DIR"),
			Filename:          os.Getenv("OUTPUT_FILENAME"),
			S3Bucket:          os.Getenv("OUTPUT_S3_BUCKET"),
			S3Prefix:          os.Getenv("OUTPUT_S3_PREFIX"),
			S3Endpoint:        os.Getenv("OUTPUT_S3_ENDPOINT"),
			S3Region:          getEnv("OUTPUT_S3_REGION", "us-east-1"),
			S3AccessKeyID:     os.Getenv("OUTPUT_S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: os.Getenv("OUTPUT_S3_SECRET_ACCESS_KEY"),
		},
	}

	return cfg, nil
}

// Validate checks everything the given mode needs and names every missing item.
func (c *Config) Validate(mode domain.SourceMode) error {
	systems, err := mode.Sources()
	if err != nil {
		return err
	}

	var missing []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	require("KEYCLOAK_DEFAULT_PASSWORD", c.Keycloak.DefaultPassword)
	if len(c.Keycloak.RealmRoles) == 0 {
		missing = append(missing, "KEYCLOAK_REALM_ROLES")
	}
	require("OUTPUT_FILENAME", c.Output.Filename)
	if c.Output.S3Bucket == "" {
		require("OUTPUT_DIR", c.Output.Dir)
	}

	for _, system := range systems {
		switch system {
		case domain.SourceClinical:
			require("CLINICAL_DB_HOST", c.Clinical.Host)
			require("CLINICAL_DB_USER", c.Clinical.User)
			require("CLINICAL_DB_NAME", c.Clinical.Database)
		case domain.SourceERP:
			require("ERP_DB_DSN", c.ERP.DSN)
		}
	}

	if len(missing) > 0 {
		return apperrors.NewMissingConfig(missing)
	}
	return nil
}

// RunTimeout returns the configured deadline for the whole run.
func (a AppConfig) RunTimeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// parseRoles reads a JSON array of role names. A value that is not a JSON
// array is split on commas.
func parseRoles(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var roles []string
		if err := json.Unmarshal([]byte(raw), &roles); err != nil {
			return nil, apperrors.NewConfigError("invalid KEYCLOAK_REALM_ROLES", map[string]any{"error": err.Error()})
		}
		return roles, nil
	}
	var roles []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
