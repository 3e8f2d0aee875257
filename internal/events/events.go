package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

type Kind string

const (
	KindSubmitted    Kind = "SUBMITTED"
	KindStepApproved Kind = "STEP_APPROVED"
	KindRejected     Kind = "REJECTED"
	KindWithdrawn    Kind = "WITHDRAWN"
	KindFulfilled    Kind = "FULFILLED"
	KindReturned     Kind = "RETURNED"
	KindOverdue      Kind = "OVERDUE_DETECTED"
)

// Event is one lifecycle notification. IDs are ULIDs, so events sort in
// emission order.
type Event struct {
	ID        string          `json:"eventId"`
	Kind      Kind            `json:"kind"`
	RequestID string          `json:"requestId"`
	At        time.Time       `json:"at"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func New(kind Kind, requestID string, at time.Time, payload any) Event {
	ev := Event{
		ID:        ulid.Make().String(),
		Kind:      kind,
		RequestID: requestID,
		At:        at,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			ev.Payload = data
		}
	}
	return ev
}

type Listener interface {
	Handle(ctx context.Context, ev Event) error
}

type ListenerFunc func(ctx context.Context, ev Event) error

func (f ListenerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Publisher is what the workflow engine sees.
type Publisher interface {
	Publish(ev Event)
}
