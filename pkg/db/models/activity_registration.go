package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// ActivityRegistration links a student to a volunteer activity. A user may
// register for an activity at most once (unique index).
type ActivityRegistration struct {
	ID           uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_registrations_user_activity"`
	ActivityID   uuid.UUID              `gorm:"column:activity_id;type:uuid;not null;uniqueIndex:idx_registrations_user_activity"`
	Attendance   enums.AttendanceStatus `gorm:"column:attendance;type:attendance_status;not null;default:'registered'"`
	RegisteredAt time.Time              `gorm:"column:registered_at;type:timestamptz;default:now()"`
}
