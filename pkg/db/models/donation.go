package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// Donation is one payment attempt against a fundraising activity. OrderID is
// the correlation key shared with the payment gateway; status transitions are
// guarded by conditional updates keyed on it.
type Donation struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    string               `gorm:"column:order_id;type:text;not null;unique"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	ActivityID uuid.UUID            `gorm:"column:activity_id;type:uuid;not null;index"`
	Amount     int64                `gorm:"column:amount;not null"`
	Status     enums.DonationStatus `gorm:"column:status;type:donation_status;not null;default:'pending'"`
	CreatedAt  time.Time            `gorm:"column:created_at;type:timestamptz;default:now()"`
}
