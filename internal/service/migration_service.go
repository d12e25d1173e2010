package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/user-migration/internal/dedup"
	"github.com/spec-kit/user-migration/internal/domain"
	"github.com/spec-kit/user-migration/internal/events"
	"github.com/spec-kit/user-migration/internal/observability"
	"github.com/spec-kit/user-migration/internal/output"
	"github.com/spec-kit/user-migration/internal/repository"
	"github.com/spec-kit/user-migration/internal/transform"
	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// MigrationService runs one extract, normalize and resolve pass.
type MigrationService struct {
	clinical   repository.ClinicalUserRepository
	erp        repository.ERPUserRepository
	params     transform.Params
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// MigrationDependencies encapsulates the collaborators a run needs.
// A nil repository marks its source as not configured.
type MigrationDependencies struct {
	ClinicalRepo repository.ClinicalUserRepository
	ERPRepo      repository.ERPUserRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// RunResult is the outcome of a run before anything is written.
type RunResult struct {
	RunID      string
	Mode       domain.SourceMode
	Winners    []domain.KeycloakUser
	Suppressed []domain.KeycloakUser
	Decisions  []dedup.Decision
	Fetched    map[domain.SourceSystem]int
}

// NewMigrationService constructs the service.
func NewMigrationService(params transform.Params, deps MigrationDependencies) *MigrationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &MigrationService{
		clinical:   deps.ClinicalRepo,
		erp:        deps.ERPRepo,
		params:     params,
		dispatcher: dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Run extracts every source selected by mode. With a single source all users
// pass straight through; with several, usernames are resolved across sources
// once every source has completed. Any source failure aborts the run.
func (s *MigrationService) Run(ctx context.Context, mode domain.SourceMode) (*RunResult, error) {
	systems, err := mode.Sources()
	if err != nil {
		return nil, err
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkConfigured(systems); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("mode", string(mode)))
	logger.Info("starting user migration")

	batches, err := s.fetchAll(ctx, runID, systems, logger)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:      runID,
		Mode:       mode,
		Suppressed: []domain.KeycloakUser{},
		Decisions:  []dedup.Decision{},
		Fetched:    make(map[domain.SourceSystem]int, len(systems)),
	}
	var users []domain.KeycloakUser
	for i, system := range systems {
		result.Fetched[system] = len(batches[i])
		users = append(users, batches[i]...)
	}

	if len(systems) == 1 {
		result.Winners = users
		if result.Winners == nil {
			result.Winners = []domain.KeycloakUser{}
		}
	} else {
		resolved := dedup.Resolve(users)
		result.Winners = resolved.Winners
		result.Suppressed = resolved.Suppressed
		result.Decisions = resolved.Decisions
		for _, decision := range resolved.Decisions {
			s.publish(ctx, logger, events.New(events.EventDuplicateResolved, runID, events.DuplicateResolvedPayload{Decision: decision}))
		}
	}

	s.metrics.RecordResolution(len(result.Winners), len(result.Suppressed))
	s.publish(ctx, logger, events.New(events.EventRunCompleted, runID, events.RunCompletedPayload{
		Mode:       mode,
		Winners:    len(result.Winners),
		Suppressed: len(result.Suppressed),
	}))
	return result, nil
}

// Publish writes the merged document and, when suppressions occurred, the
// suppressed document. Without suppressions any suppressed document left by an
// earlier run is removed. The first write failure stops the run.
func (s *MigrationService) Publish(ctx context.Context, result *RunResult, sink output.Sink) error {
	logger := s.logger.With(zap.String("run_id", result.RunID))
	docs := output.Assemble(result.Winners, result.Suppressed)
	for _, doc := range docs {
		target, err := sink.Write(ctx, doc)
		if err != nil {
			return err
		}
		s.metrics.RecordWritten(string(doc.Kind), len(doc.Body.Users))
		logger.Info("users written",
			zap.String("document", string(doc.Kind)),
			zap.String("target", target),
			zap.Int("users", len(doc.Body.Users)))
		s.publish(ctx, logger, events.New(events.EventDocumentWritten, result.RunID, events.DocumentWrittenPayload{
			Name:   string(doc.Kind),
			Target: target,
			Users:  len(doc.Body.Users),
		}))
	}

	if len(docs) == 1 {
		target, err := sink.Remove(ctx, output.KindSuppressed)
		if err != nil {
			return err
		}
		logger.Debug("cleared suppressed document", zap.String("target", target))
	}
	return nil
}

func (s *MigrationService) checkConfigured(systems []domain.SourceSystem) error {
	var missing []string
	for _, system := range systems {
		switch {
		case system == domain.SourceClinical && s.clinical == nil,
			system == domain.SourceERP && s.erp == nil:
			missing = append(missing, string(system))
		}
	}
	if len(missing) > 0 {
		return apperrors.NewConfigError(fmt.Sprintf("sources not configured: %v", missing), map[string]any{"sources": missing})
	}
	return nil
}

// fetchAll fetches and transforms each source concurrently. Batches are
// returned in the order of systems regardless of completion order.
func (s *MigrationService) fetchAll(ctx context.Context, runID string, systems []domain.SourceSystem, logger *zap.Logger) ([][]domain.KeycloakUser, error) {
	batches := make([][]domain.KeycloakUser, len(systems))
	g, gctx := errgroup.WithContext(ctx)
	for i, system := range systems {
		g.Go(func() error {
			records, err := s.fetch(gctx, system)
			if err != nil {
				logger.Error("source fetch failed", zap.String("source", string(system)), zap.Error(err))
				return apperrors.NewSourceFetchError(string(system), err)
			}
			users, err := transform.All(records, s.params)
			if err != nil {
				return err
			}
			batches[i] = users
			s.metrics.RecordFetched(system, len(users))
			logger.Info("retrieved users", zap.String("source", string(system)), zap.Int("count", len(users)))
			s.publish(gctx, logger, events.New(events.EventSourceFetched, runID, events.SourceFetchedPayload{
				Source: system,
				Count:  len(users),
			}))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

func (s *MigrationService) fetch(ctx context.Context, system domain.SourceSystem) ([]domain.SourceRecord, error) {
	switch system {
	case domain.SourceClinical:
		rows, err := s.clinical.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return lo.Map(rows, func(u domain.ClinicalUser, _ int) domain.SourceRecord {
			return domain.ClinicalRecord(u)
		}), nil
	case domain.SourceERP:
		rows, err := s.erp.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return lo.Map(rows, func(u domain.ERPUser, _ int) domain.SourceRecord {
			return domain.ERPRecord(u)
		}), nil
	}
	return nil, apperrors.NewConfigError("unsupported source", map[string]any{"source": string(system)})
}

// publish hands an event to the audit listeners. Listener failures are logged
// and do not fail the run.
func (s *MigrationService) publish(ctx context.Context, logger *zap.Logger, event events.Event) {
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("audit listener failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
