package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simasosial/simasosial-backend/pkg/enums"
)

// User is a campus account. Credentials and login live in the identity
// system; this backend only reads profile data.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string         `gorm:"column:name;type:text;not null"`
	StudentID  string         `gorm:"column:student_id;type:text;not null;unique"`
	Email      string         `gorm:"column:email;type:text;not null;unique"`
	Phone      *string        `gorm:"column:phone;type:text"`
	Department *string        `gorm:"column:department;type:text"`
	Cohort     *string        `gorm:"column:cohort;type:text"`
	Role       enums.UserRole `gorm:"column:role;type:user_role;not null;default:'student'"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz;default:now()"`
}
