package outbox

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/simasosial/simasosial-backend/pkg/config"
	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.ReceiptsTopic == "" {
		return nil, fmt.Errorf("receipts topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	reg.register(EventDescriptor{
		EventType:      enums.EventDonationVerified,
		AggregateType:  enums.AggregateDonation,
		Topic:          cfg.ReceiptsTopic,
		PayloadFactory: func() interface{} { return &payloads.DonationVerifiedEvent{} },
	})
	reg.register(EventDescriptor{
		EventType:      enums.EventCertificateIssued,
		AggregateType:  enums.AggregateCertificate,
		Topic:          cfg.ReceiptsTopic,
		PayloadFactory: func() interface{} { return &payloads.CertificateIssuedEvent{} },
	})
	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	r.entries[desc.EventType] = desc
}

// Resolve decodes an outbox row against the registered descriptor. An unknown
// event type or a malformed envelope is non-retryable.
func (r *EventRegistry) Resolve(row models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[row.EventType]
	if !ok {
		return nil, NonRetryableError{Err: fmt.Errorf("unknown event type %q", row.EventType)}
	}

	var envelope PayloadEnvelope
	decoder := json.NewDecoder(bytes.NewReader(row.Payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&envelope); err != nil {
		return nil, NonRetryableError{Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if envelope.EventID == "" {
		return nil, NonRetryableError{Err: fmt.Errorf("envelope missing event id")}
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NonRetryableError{Err: fmt.Errorf("decode payload: %w", err)}
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
