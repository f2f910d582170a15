package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignedIn     EventType = "signed_in"
	EventSignInFailed EventType = "sign_in_failed"
	EventSignedOut    EventType = "signed_out"
	EventStaffCreated EventType = "staff_created"
	EventStaffUpdated EventType = "staff_updated"
)

// Event is an audit record emitted by the sign-in and staff forms.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Username  string    `json:"username,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, username string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Username:  username,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SignInFailedPayload payload.
type SignInFailedPayload struct {
	ClientIP string `json:"client_ip"`
	Reason   string `json:"reason"`
}

// StaffChangedPayload payload.
type StaffChangedPayload struct {
	StaffID string `json:"staff_id,omitempty"`
	MSCB    string `json:"mscb"`
	Name    string `json:"name"`
	UnitID  string `json:"unit_id"`
}
