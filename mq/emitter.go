package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"evently/rdx"
	"evently/utils"
)

const notifyChannel = "notify-events"

// Notification is a fire-and-forget message to a recipient. Delivery failures
// are logged and swallowed; they never roll back the action that emitted them.
type Notification struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"` // registration, payment, certificate, reminder, cancellation
	Recipient string            `json:"recipient"`
	EventID   string            `json:"event_id,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Emit publishes a notification onto the redis channel. Errors are logged,
// never returned: the caller's domain action has already succeeded.
func Emit(ctx context.Context, kind, recipient, eventID string, payload map[string]string) {
	n := Notification{
		ID:        utils.GetUUID(),
		Kind:      kind,
		Recipient: recipient,
		EventID:   eventID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("[Emit] marshal error for %s notification: %v", kind, err)
		return
	}

	if err := rdx.Conn.Publish(ctx, notifyChannel, data).Err(); err != nil {
		log.Printf("[Emit] publish error for %s notification: %v", kind, err)
	}
}
