package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/user-migration/internal/audit"
	"github.com/spec-kit/user-migration/internal/events"
)

// AuditService records run events: every event is logged, and duplicate
// resolutions are also forwarded to the configured sink.
type AuditService struct {
	dispatcher events.Dispatcher
	sink       audit.Sink
	logger     *zap.Logger
}

// NewAuditService creates the service. sink may be nil.
func NewAuditService(dispatcher events.Dispatcher, sink audit.Sink, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSourceFetched, a.handleSourceFetched)
	a.dispatcher.Subscribe(events.EventDuplicateResolved, a.handleDuplicateResolved)
	a.dispatcher.Subscribe(events.EventDocumentWritten, a.handleDocumentWritten)
	a.dispatcher.Subscribe(events.EventRunCompleted, a.handleRunCompleted)
}

func (a *AuditService) handleSourceFetched(_ context.Context, event events.Event) error {
	a.logger.Debug("SourceFetched", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleDuplicateResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DuplicateResolvedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	decision := payload.Decision

	a.logger.Info("duplicate username resolved",
		zap.String("run_id", event.RunID),
		zap.String("username", decision.Username),
		zap.String("chosen_source", decision.ChosenSource),
		zap.Strings("suppressed_sources", decision.SuppressedSources))

	if a.sink == nil {
		return nil
	}
	return a.sink.Record(ctx, audit.Entry{
		RunID:             event.RunID,
		Username:          decision.Username,
		ChosenSource:      decision.ChosenSource,
		SuppressedSources: decision.SuppressedSources,
		ResolvedAt:        event.Timestamp,
	})
}

func (a *AuditService) handleDocumentWritten(_ context.Context, event events.Event) error {
	a.logger.Debug("DocumentWritten", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleRunCompleted(_ context.Context, event events.Event) error {
	a.logger.Info("RunCompleted", zap.String("run_id", event.RunID), zap.Any("payload", event.Payload))
	return nil
}
