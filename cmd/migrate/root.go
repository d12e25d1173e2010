package main

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/user-migration/internal/audit"
	"github.com/spec-kit/user-migration/internal/config"
	"github.com/spec-kit/user-migration/internal/domain"
	"github.com/spec-kit/user-migration/internal/events"
	"github.com/spec-kit/user-migration/internal/observability"
	"github.com/spec-kit/user-migration/internal/output"
	"github.com/spec-kit/user-migration/internal/persistence"
	"github.com/spec-kit/user-migration/internal/repository"
	"github.com/spec-kit/user-migration/internal/service"
	"github.com/spec-kit/user-migration/internal/transform"
	"github.com/spec-kit/user-migration/internal/worker"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

type options struct {
	source   string
	envFiles []string
	dryRun   bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Export legacy users as Keycloak import documents",
		Long: `migrate reads active users from the clinical-records and ERP databases,
maps them to the Keycloak user representation, resolves duplicate usernames
across sources and writes {"users":[...]} documents for realm import.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.source, "source", "s", "", "source to migrate: clinical, erp or all (overrides SOURCE_SYSTEM)")
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "env file to load before reading the environment (repeatable)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "run the pipeline without writing any document (overrides DRY_RUN)")
	return cmd
}

func runMigration(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return err
	}
	if opts.source != "" {
		cfg.App.SourceSystem = opts.source
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.App.DryRun = opts.dryRun
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		return apperrors.NewConfigError("init logger", map[string]any{"error": err.Error()})
	}
	defer logger.Sync() //nolint:errcheck

	if err := migrate(cmd.Context(), cfg, logger); err != nil {
		logger.Error("user migration failed",
			zap.String("code", apperrors.ToDomainError(err).Code),
			zap.Error(err))
		return err
	}
	return nil
}

func migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	mode, err := domain.ParseSourceMode(cfg.App.SourceSystem)
	if err != nil {
		return err
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}
	systems, err := mode.Sources()
	if err != nil {
		return err
	}

	if timeout := cfg.App.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	params, err := transformParams(cfg.Keycloak)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	deps := service.MigrationDependencies{Metrics: metrics, Logger: logger}

	for _, system := range systems {
		switch system {
		case domain.SourceClinical:
			db, err := persistence.NewMySQL(ctx, cfg.Clinical, logger)
			if err != nil {
				return apperrors.NewSourceFetchError(string(system), err)
			}
			defer closeMySQL(db, logger)
			deps.ClinicalRepo = repository.NewClinicalUserRepository(db.DB)
		case domain.SourceERP:
			pg, err := persistence.NewPostgres(ctx, cfg.ERP, logger)
			if err != nil {
				return apperrors.NewSourceFetchError(string(system), err)
			}
			defer closePostgres(pg, logger)
			deps.ERPRepo = repository.NewERPUserRepository(pg.PoolHandle())
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("audit stream unavailable; decisions will only be logged", zap.Error(err))
	}
	defer redis.Close()

	var auditSink audit.Sink
	if redis != nil {
		auditSink = audit.NewRedisStreamSink(redis.Client, cfg.Redis.AuditStream)
	}

	dispatcher := events.NewInMemoryDispatcher()
	deps.Dispatcher = dispatcher
	worker.StartAuditWorker(service.NewAuditService(dispatcher, auditSink, logger))

	svc := service.NewMigrationService(params, deps)
	result, err := svc.Run(ctx, mode)
	if err != nil {
		return err
	}

	if err := deliver(ctx, cfg, svc, result, newOutputSink, logger); err != nil {
		return err
	}

	logger.Info("user migration completed",
		zap.String("run_id", result.RunID),
		zap.Any("metrics", metrics.Snapshot()))
	return nil
}

type sinkFactory func(ctx context.Context, cfg config.OutputConfig) (output.Sink, error)

// deliver publishes the run result, or only reports it on a dry run.
func deliver(ctx context.Context, cfg *config.Config, svc *service.MigrationService, result *service.RunResult, newSink sinkFactory, logger *zap.Logger) error {
	if cfg.App.DryRun {
		logger.Info("dry run; no documents written",
			zap.Int("winners", len(result.Winners)),
			zap.Int("suppressed", len(result.Suppressed)))
		return nil
	}

	sink, err := newSink(ctx, cfg.Output)
	if err != nil {
		return err
	}
	return svc.Publish(ctx, result, sink)
}

func transformParams(cfg config.KeycloakConfig) (transform.Params, error) {
	params := transform.Params{
		DefaultPassword:     cfg.DefaultPassword,
		RealmRoles:          cfg.RealmRoles,
		ClientID:            cfg.ClientID,
		ForcePasswordUpdate: cfg.ForcePasswordUpdate,
	}
	if !cfg.HashPassword {
		return params, nil
	}
	credential, err := transform.HashedCredential(cfg.DefaultPassword, cfg.HashIterations)
	if err != nil {
		return params, apperrors.NewInternalError(err)
	}
	params.Credential = credential
	return params, nil
}

func newOutputSink(ctx context.Context, cfg config.OutputConfig) (output.Sink, error) {
	if cfg.S3Bucket == "" {
		return output.NewFileSink(cfg.Dir, cfg.Filename), nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithBaseEndpoint(cfg.S3Endpoint))
	}
	if cfg.S3AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, apperrors.NewConfigError("load object storage config", map[string]any{"error": err.Error()})
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3Endpoint != ""
	})
	return output.NewS3Sink(client, cfg.S3Bucket, cfg.S3Prefix, cfg.Filename), nil
}

func closeMySQL(db *persistence.MySQL, logger *zap.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("close clinical-records database", zap.Error(err))
		return
	}
	logger.Info("clinical-records connection closed")
}

func closePostgres(pg *persistence.Postgres, logger *zap.Logger) {
	pg.Close()
	logger.Info("erp connection closed")
}
