package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate proves attendance at an activity. Code is the public
// verification token printed on the document.
type Certificate struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_certificates_user_activity"`
	ActivityID uuid.UUID `gorm:"column:activity_id;type:uuid;not null;uniqueIndex:idx_certificates_user_activity"`
	Code       string    `gorm:"column:code;type:text;not null;unique"`
	IssuedAt   time.Time `gorm:"column:issued_at;type:timestamptz;default:now()"`
}
