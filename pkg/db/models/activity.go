package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// Activity is a campus social activity, either a volunteer drive or a
// fundraising campaign. AmountRaised and ParticipantsRegistered are running
// aggregates updated by relative increments only.
type Activity struct {
	ID                     uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title                  string               `gorm:"column:title;type:text;not null"`
	Type                   enums.ActivityType   `gorm:"column:type;type:activity_type;not null"`
	Description            *string              `gorm:"column:description;type:text"`
	Location               *string              `gorm:"column:location;type:text"`
	ImageURL               *string              `gorm:"column:image_url;type:text"`
	StartsAt               *time.Time           `gorm:"column:starts_at;type:timestamptz"`
	DonationTarget         int64                `gorm:"column:donation_target;not null;default:0"`
	AmountRaised           int64                `gorm:"column:amount_raised;not null;default:0"`
	ParticipantTarget      int                  `gorm:"column:participant_target;not null;default:0"`
	ParticipantsRegistered int                  `gorm:"column:participants_registered;not null;default:0"`
	ContributionHours      int                  `gorm:"column:contribution_hours;not null;default:0"`
	Status                 enums.ActivityStatus `gorm:"column:status;type:activity_status;not null;default:'draft'"`
	CreatedAt              time.Time            `gorm:"column:created_at;type:timestamptz;default:now()"`
	UpdatedAt              time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
