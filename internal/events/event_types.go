package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/user-migration/internal/dedup"
	"github.com/spec-kit/user-migration/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSourceFetched     EventType = "source_fetched"
	EventDuplicateResolved EventType = "duplicate_resolved"
	EventDocumentWritten   EventType = "document_written"
	EventRunCompleted      EventType = "run_completed"
)

// Event represents a migration event emitted during a run.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, runID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SourceFetchedPayload payload.
type SourceFetchedPayload struct {
	Source domain.SourceSystem `json:"source"`
	Count  int                 `json:"count"`
}

// DuplicateResolvedPayload payload.
type DuplicateResolvedPayload struct {
	Decision dedup.Decision `json:"decision"`
}

// DocumentWrittenPayload payload.
type DocumentWrittenPayload struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Users  int    `json:"users"`
}

// RunCompletedPayload payload.
type RunCompletedPayload struct {
	Mode       domain.SourceMode `json:"mode"`
	Winners    int               `json:"winners"`
	Suppressed int               `json:"suppressed"`
}
