package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simasosial/simasosial-backend/pkg/enums"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/outbox/payloads"
)

type stubSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (s *stubSender) Send(to, subject, htmlBody string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func testConsumer(sender *stubSender) *Consumer {
	return &Consumer{
		sender: sender,
		logg:   logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard}),
	}
}

func TestDispatchDonationReceipt(t *testing.T) {
	sender := &stubSender{}
	consumer := testConsumer(sender)

	payload := payloads.DonationVerifiedEvent{
		DonationID:    uuid.New(),
		OrderID:       "SIMA-DONASI-1",
		UserName:      "Siti Rahma",
		UserEmail:     "siti@kampus.ac.id",
		ActivityTitle: "Galang Dana Banjir",
		Amount:        50000,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	if err := consumer.dispatch(context.Background(), enums.EventDonationVerified, data); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.to != "siti@kampus.ac.id" {
		t.Fatalf("unexpected recipient %q", mail.to)
	}
	if !strings.Contains(mail.body, "Rp50000") || !strings.Contains(mail.body, "SIMA-DONASI-1") {
		t.Fatalf("receipt body missing amount or reference: %s", mail.body)
	}
}

func TestDispatchCertificateMail(t *testing.T) {
	sender := &stubSender{}
	consumer := testConsumer(sender)

	payload := payloads.CertificateIssuedEvent{
		CertificateID: uuid.New(),
		UserName:      "Budi Santoso",
		UserEmail:     "budi@kampus.ac.id",
		ActivityTitle: "Donor Darah",
		Code:          "SIMA-CERT-ABCD1234",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	if err := consumer.dispatch(context.Background(), enums.EventCertificateIssued, data); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].body, "SIMA-CERT-ABCD1234") {
		t.Fatalf("certificate body missing code")
	}
}

func TestDispatchRejectsMissingRecipient(t *testing.T) {
	consumer := testConsumer(&stubSender{})

	data, err := json.Marshal(payloads.DonationVerifiedEvent{OrderID: "SIMA-DONASI-2"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := consumer.dispatch(context.Background(), enums.EventDonationVerified, data); err == nil {
		t.Fatalf("expected error for missing recipient")
	}
}

func TestDispatchPropagatesSendFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp unavailable")}
	consumer := testConsumer(sender)

	data, err := json.Marshal(payloads.DonationVerifiedEvent{
		OrderID:   "SIMA-DONASI-3",
		UserEmail: "siti@kampus.ac.id",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := consumer.dispatch(context.Background(), enums.EventDonationVerified, data); err == nil {
		t.Fatalf("expected send failure to surface")
	}
}
