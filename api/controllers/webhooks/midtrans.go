package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/simasosial/simasosial-backend/api/responses"
	midtranswebhook "github.com/simasosial/simasosial-backend/internal/webhooks/midtrans"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/metrics"
)

type MidtransWebhookService interface {
	HandleNotification(ctx context.Context, notification *midtranswebhook.PaymentNotification) (midtranswebhook.Outcome, error)
}

type midtransClient interface {
	ServerKey() string
}

// MidtransWebhook handles payment confirmation notifications from the
// gateway. The gateway redelivers on anything but 200, so the handler
// acknowledges no-ops and only signals 5xx when the store failed.
func MidtransWebhook(svc MidtransWebhookService, client midtransClient, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "midtrans client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			m.ObserveDelivery(metrics.WebhookResultError, time.Since(start))
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read request body"))
			return
		}

		var notification midtranswebhook.PaymentNotification
		if err := json.Unmarshal(payload, &notification); err != nil {
			m.ObserveDelivery(metrics.WebhookResultError, time.Since(start))
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode notification"))
			return
		}

		if logg != nil {
			ctx = logg.WithOrderID(ctx, notification.OrderID)
		}

		ok, err := midtranswebhook.VerifySignature(
			notification.OrderID,
			notification.StatusCode,
			notification.GrossAmount,
			client.ServerKey(),
			notification.SignatureKey,
		)
		if err != nil {
			// A missing server key is our misconfiguration, not a forged
			// delivery: answer 5xx so the gateway keeps redelivering.
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInternal {
				m.ObserveDelivery(metrics.WebhookResultError, time.Since(start))
				responses.WriteError(ctx, logg, w, err)
				return
			}
			m.ObserveDelivery(metrics.WebhookResultBadSignature, time.Since(start))
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "signature verification failed"))
			return
		}
		if !ok {
			m.ObserveDelivery(metrics.WebhookResultBadSignature, time.Since(start))
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid signature"))
			return
		}

		outcome, err := svc.HandleNotification(ctx, &notification)
		if err != nil {
			m.ObserveDelivery(metrics.WebhookResultError, time.Since(start))
			responses.WriteError(ctx, logg, w, err)
			return
		}

		m.ObserveDelivery(string(outcome), time.Since(start))
		if logg != nil {
			logg.Info(logg.WithField(ctx, "outcome", string(outcome)), "payment notification processed")
		}
		responses.WriteSuccess(w, map[string]string{"status": string(outcome)})
	}
}
