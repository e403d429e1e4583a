package midtranswebhook

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simasosial/simasosial-backend/pkg/db/models"
	"github.com/simasosial/simasosial-backend/pkg/enums"
	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
	"github.com/simasosial/simasosial-backend/pkg/logger"
	"github.com/simasosial/simasosial-backend/pkg/outbox"
	"github.com/simasosial/simasosial-backend/pkg/outbox/payloads"
)

// Outcome labels what a notification delivery did to the donation row.
type Outcome string

const (
	OutcomeVerified Outcome = "verified"
	OutcomeFailed   Outcome = "failed"
	OutcomeNoop     Outcome = "noop"
)

type donationRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*models.Donation, error)
	UpdateStatusIf(ctx context.Context, orderID string, from, to enums.DonationStatus) (bool, error)
}

type activityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	IncrementRaised(ctx context.Context, id uuid.UUID, delta int64) error
}

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type ServiceParams struct {
	DonationRepo     donationRepository
	ActivityRepo     activityRepository
	NotificationRepo notificationWriter
	UserRepo         userReader
	Outbox           eventEmitter
	DB               *gorm.DB
	Logger           *logger.Logger
}

type Service struct {
	donationRepo     donationRepository
	activityRepo     activityRepository
	notificationRepo notificationWriter
	userRepo         userReader
	outbox           eventEmitter
	db               *gorm.DB
	logg             *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DonationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donation repo required")
	}
	if params.ActivityRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "activity repo required")
	}
	if params.NotificationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification repo required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox emitter required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "db handle required")
	}
	return &Service{
		donationRepo:     params.DonationRepo,
		activityRepo:     params.ActivityRepo,
		notificationRepo: params.NotificationRepo,
		userRepo:         params.UserRepo,
		outbox:           params.Outbox,
		db:               params.DB,
		logg:             params.Logger,
	}, nil
}

// PaymentNotification is the Midtrans HTTP notification body. Only the fields
// the confirmation workflow reads are declared.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
}

// HandleNotification maps the gateway-reported transaction status onto the
// donation state machine. The caller has already verified the signature.
func (s *Service) HandleNotification(ctx context.Context, notification *PaymentNotification) (Outcome, error) {
	if notification == nil {
		return OutcomeNoop, pkgerrors.New(pkgerrors.CodeValidation, "notification required")
	}
	orderID := strings.TrimSpace(notification.OrderID)
	if orderID == "" {
		return OutcomeNoop, pkgerrors.New(pkgerrors.CodeValidation, "order_id required")
	}

	switch strings.ToLower(notification.TransactionStatus) {
	case "settlement", "capture":
		if !strings.EqualFold(notification.FraudStatus, "accept") {
			return OutcomeNoop, nil
		}
		return s.confirmSettlement(ctx, orderID)
	case "cancel", "expire", "deny":
		return s.confirmFailure(ctx, orderID)
	default:
		return OutcomeNoop, nil
	}
}

// confirmSettlement performs the pending→verified transition. The conditional
// UPDATE is the sole serialization point for duplicate and concurrent
// deliveries; everything after it is best-effort fan-out.
func (s *Service) confirmSettlement(ctx context.Context, orderID string) (Outcome, error) {
	updated, err := s.donationRepo.UpdateStatusIf(ctx, orderID, enums.DonationStatusPending, enums.DonationStatusVerified)
	if err != nil {
		return OutcomeNoop, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm settlement")
	}
	if !updated {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, orderID)
			s.logg.Info(logCtx, "settlement ignored, donation not pending")
		}
		return OutcomeNoop, nil
	}

	s.fanOut(ctx, orderID)
	return OutcomeVerified, nil
}

// confirmFailure applies pending→failed with the same conditional discipline,
// so a stale cancel/expire arriving after a settlement never reverts a
// verified donation. No fan-out on failure.
func (s *Service) confirmFailure(ctx context.Context, orderID string) (Outcome, error) {
	updated, err := s.donationRepo.UpdateStatusIf(ctx, orderID, enums.DonationStatusPending, enums.DonationStatusFailed)
	if err != nil {
		return OutcomeNoop, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm failure")
	}
	if !updated {
		return OutcomeNoop, nil
	}
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID)
		s.logg.Info(logCtx, "donation marked failed")
	}
	return OutcomeFailed, nil
}

// fanOut runs the three post-verification side effects. Each step is logged
// and swallowed on failure; the state transition already committed and must
// never be rolled back by a side effect.
func (s *Service) fanOut(ctx context.Context, orderID string) {
	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithOrderID(ctx, orderID)
	}

	donation, err := s.donationRepo.FindByOrderID(ctx, orderID)
	if err != nil || donation == nil {
		if s.logg != nil {
			if err == nil {
				err = fmt.Errorf("donation %s not found after transition", orderID)
			}
			s.logg.Error(logCtx, "fan-out skipped, donation reload failed", err)
		}
		return
	}

	// Step A: relative increment on the activity aggregate.
	if err := s.activityRepo.IncrementRaised(ctx, donation.ActivityID, donation.Amount); err != nil {
		if s.logg != nil {
			s.logg.Error(logCtx, "fan-out step A failed, amount_raised not incremented", err)
		}
	}

	activity, err := s.activityRepo.FindByID(ctx, donation.ActivityID)
	if err != nil || activity == nil {
		if s.logg != nil {
			if err == nil {
				err = fmt.Errorf("activity %s not found", donation.ActivityID)
			}
			s.logg.Error(logCtx, "fan-out steps B/C skipped, activity load failed", err)
		}
		return
	}

	// Step B: in-app notification for the donor.
	link := fmt.Sprintf("/activities/%s", activity.ID)
	notification := &models.Notification{
		UserID:  donation.UserID,
		Type:    enums.NotificationTypeDonationVerified,
		Title:   "Donasi terverifikasi",
		Message: fmt.Sprintf("Donasi Anda sebesar Rp%d untuk %q telah kami terima.", donation.Amount, activity.Title),
		Link:    &link,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		if s.logg != nil {
			s.logg.Error(logCtx, "fan-out step B failed, notification not created", err)
		}
	}

	// Step C: queue the email receipt through the outbox.
	user, err := s.userRepo.FindByID(ctx, donation.UserID)
	if err != nil || user == nil {
		if s.logg != nil {
			if err == nil {
				err = fmt.Errorf("user %s not found", donation.UserID)
			}
			s.logg.Error(logCtx, "fan-out step C skipped, user load failed", err)
		}
		return
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventDonationVerified,
		AggregateType: enums.AggregateDonation,
		AggregateID:   donation.ID,
		Version:       1,
		Data: payloads.DonationVerifiedEvent{
			DonationID:    donation.ID,
			OrderID:       donation.OrderID,
			UserID:        user.ID,
			UserName:      user.Name,
			UserEmail:     user.Email,
			ActivityID:    activity.ID,
			ActivityTitle: activity.Title,
			Amount:        donation.Amount,
		},
	}
	if err := s.outbox.Emit(ctx, s.db, event); err != nil {
		if s.logg != nil {
			s.logg.Error(logCtx, "fan-out step C failed, receipt event not queued", err)
		}
	}
}
