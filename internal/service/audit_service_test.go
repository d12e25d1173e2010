package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/user-migration/internal/audit"
	"github.com/spec-kit/user-migration/internal/dedup"
	"github.com/spec-kit/user-migration/internal/domain"
	"github.com/spec-kit/user-migration/internal/events"
)

type recordingSink struct {
	entries []audit.Entry
	err     error
}

func (r *recordingSink) Record(_ context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func TestAuditServiceForwardsDecisions(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	sink := &recordingSink{}
	core, logs := observer.New(zapcore.DebugLevel)
	NewAuditService(dispatcher, sink, zap.New(core)).RegisterHandlers()

	event := events.New(events.EventDuplicateResolved, "run-1", events.DuplicateResolvedPayload{Decision: dedup.Decision{
		Username:          "jdoe",
		ChosenSource:      "clinical-records-system",
		SuppressedSources: []string{"erp-system"},
	}})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, sink.entries, 1)
	assert.Equal(t, audit.Entry{
		RunID:             "run-1",
		Username:          "jdoe",
		ChosenSource:      "clinical-records-system",
		SuppressedSources: []string{"erp-system"},
		ResolvedAt:        event.Timestamp,
	}, sink.entries[0])
	assert.Equal(t, 1, logs.FilterMessage("duplicate username resolved").Len())
}

func TestAuditServiceSinkErrorSurfaces(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	cause := errors.New("redis down")
	NewAuditService(dispatcher, &recordingSink{err: cause}, zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.New(events.EventDuplicateResolved, "run-1",
		events.DuplicateResolvedPayload{Decision: dedup.Decision{Username: "x"}}))
	assert.ErrorIs(t, err, cause)
}

func TestAuditServiceRejectsUnexpectedPayload(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, nil, zap.NewNop()).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventDuplicateResolved,
		Timestamp: time.Now(),
		Payload:   "nope",
	})
	assert.Error(t, err)
}

func TestRunLogsWarningWhenAuditSinkFails(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	core, logs := observer.New(zapcore.WarnLevel)
	NewAuditService(dispatcher, &recordingSink{err: errors.New("redis down")}, zap.NewNop()).RegisterHandlers()

	clinical := &fakeClinicalRepo{users: []domain.ClinicalUser{{Username: "dup"}}}
	erp := &fakeERPRepo{users: []domain.ERPUser{{Login: "dup"}}}
	svc := newService(clinical, erp, dispatcher, zap.New(core))

	result, err := svc.Run(context.Background(), domain.ModeAll)
	require.NoError(t, err)
	assert.Len(t, result.Suppressed, 1)
	assert.Equal(t, 1, logs.FilterMessage("audit listener failed").Len())
}
