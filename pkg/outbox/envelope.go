package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope wraps every published event with routing metadata. EventID
// is the consumer-side idempotency key.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}
