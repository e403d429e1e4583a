package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/mail"
	"github.com/simasosial/simasosial-backend/pkg/outbox"
	"github.com/simasosial/simasosial-backend/pkg/outbox/idempotency"
	"github.com/simasosial/simasosial-backend/pkg/outbox/payloads"
)

const receiptConsumer = "email-receipts"

// Consumer watches receipt events and turns them into outbound email. The
// Redis idempotency mark keeps redelivered Pub/Sub messages from producing
// duplicate mail.
type Consumer struct {
	sender       mail.Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds an email receipt consumer.
func NewConsumer(sender mail.Sender, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("receipts subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		sender:       sender,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	switch enums.OutboxEventType(eventType) {
	case enums.EventDonationVerified, enums.EventCertificateIssued:
	default:
		c.logg.Info(logCtx, "skipping non-mail event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, receiptConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.dispatch(logCtx, enums.OutboxEventType(eventType), envelope.Data); err != nil {
		c.logg.Error(logCtx, "email dispatch failed", err)
		_ = c.idempotency.Delete(ctx, receiptConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) dispatch(logCtx context.Context, eventType enums.OutboxEventType, data json.RawMessage) error {
	switch eventType {
	case enums.EventDonationVerified:
		var payload payloads.DonationVerifiedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse donation payload: %w", err)
		}
		return c.sendDonationReceipt(logCtx, payload)
	case enums.EventCertificateIssued:
		var payload payloads.CertificateIssuedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse certificate payload: %w", err)
		}
		return c.sendCertificateMail(logCtx, payload)
	default:
		return nil
	}
}

func (c *Consumer) sendDonationReceipt(logCtx context.Context, payload payloads.DonationVerifiedEvent) error {
	if payload.UserEmail == "" {
		return fmt.Errorf("recipient email missing for order %s", payload.OrderID)
	}
	subject := "Terima kasih atas donasi Anda"
	body := donationReceiptBody(payload)
	if err := c.sender.Send(payload.UserEmail, subject, body); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithOrderID(logCtx, payload.OrderID), "donation receipt sent")
	return nil
}

func (c *Consumer) sendCertificateMail(logCtx context.Context, payload payloads.CertificateIssuedEvent) error {
	if payload.UserEmail == "" {
		return fmt.Errorf("recipient email missing for certificate %s", payload.CertificateID)
	}
	subject := "Sertifikat kegiatan Anda telah terbit"
	body := certificateBody(payload)
	if err := c.sender.Send(payload.UserEmail, subject, body); err != nil {
		return err
	}
	c.logg.Info(logCtx, "certificate mail sent")
	return nil
}

func donationReceiptBody(payload payloads.DonationVerifiedEvent) string {
	return fmt.Sprintf(
		`<p>Halo %s,</p>
<p>Donasi Anda sebesar <b>Rp%d</b> untuk <b>%s</b> telah kami terima dan verifikasi.</p>
<p>Nomor referensi: %s</p>
<p>Terima kasih telah berbagi.</p>`,
		payload.UserName, payload.Amount, payload.ActivityTitle, payload.OrderID)
}

func certificateBody(payload payloads.CertificateIssuedEvent) string {
	return fmt.Sprintf(
		`<p>Halo %s,</p>
<p>Sertifikat Anda untuk kegiatan <b>%s</b> telah terbit.</p>
<p>Kode verifikasi: <b>%s</b></p>`,
		payload.UserName, payload.ActivityTitle, payload.Code)
}
