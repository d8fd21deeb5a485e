// Package event emits shopper activity events so downstream analytics can
// follow what the storefront does. Publishing is best-effort: a failed emit
// is logged and never fails the commerce operation that triggered it.
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Activity event types.
const (
	TypeCartUpdated      = "storefront.cart.updated"
	TypeCartCleared      = "storefront.cart.cleared"
	TypeFavoriteToggled  = "storefront.favorite.toggled"
	TypeOrderPlaced      = "storefront.order.placed"
	TypeSessionStarted   = "storefront.session.started"
	TypeSessionEnded     = "storefront.session.ended"
)

// Activity is the envelope for every emitted event.
type Activity struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data"`
}

// NewActivity builds an envelope with a generated ID and current timestamp.
func NewActivity(eventType, userID string, data any) (*Activity, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Activity{
		EventID:   uuid.New().String(),
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Source:    "storefront",
		Data:      payload,
	}, nil
}

// Marshal serializes the envelope to JSON bytes.
func (a *Activity) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalData deserializes the payload into target.
func (a *Activity) UnmarshalData(target any) error {
	return json.Unmarshal(a.Data, target)
}

// Publisher is implemented by anything that can carry activity events.
type Publisher interface {
	Publish(ctx context.Context, eventType, userID string, data any)
}

// Noop discards every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) {}
