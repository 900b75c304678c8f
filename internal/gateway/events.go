package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fantabuilder/fantasta/internal/outbox/events"
)

// AuctionEvent is the envelope pushed to WebSocket clients.
type AuctionEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType mirrors the outbox event type names on the client wire.
type EventType string

const (
	EventTypeSessionCreated    EventType = events.TypeSessionCreated
	EventTypeParticipantJoined EventType = events.TypeParticipantJoined
	EventTypeAssignmentMade    EventType = events.TypeAssignmentMade
	EventTypeAssignmentUndone  EventType = events.TypeAssignmentUndone
	EventTypeAssignmentRemoved EventType = events.TypeAssignmentRemoved
	EventTypeCursorMoved       EventType = events.TypeCursorMoved
	EventTypeSlateInitialized  EventType = events.TypeSlateInitialized
)

// ParseEventPayload decodes the event data into its typed payload.
func ParseEventPayload(event *AuctionEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeSessionCreated:
		var payload events.SessionCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeParticipantJoined:
		var payload events.ParticipantJoinedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeAssignmentMade:
		var payload events.AssignmentMadePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeAssignmentUndone, EventTypeAssignmentRemoved:
		var payload events.AssignmentUndonePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeCursorMoved:
		var payload events.CursorMovedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeSlateInitialized:
		var payload events.SlateInitializedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}
}
