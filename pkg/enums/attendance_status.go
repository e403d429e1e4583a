package enums

import "fmt"

// AttendanceStatus records whether a registered volunteer showed up.
type AttendanceStatus string

const (
	AttendanceStatusRegistered AttendanceStatus = "registered"
	AttendanceStatusAttended   AttendanceStatus = "attended"
	AttendanceStatusAbsent     AttendanceStatus = "absent"
)

var validAttendanceStatuses = []AttendanceStatus{
	AttendanceStatusRegistered,
	AttendanceStatusAttended,
	AttendanceStatusAbsent,
}

// IsValid reports whether the value is a known AttendanceStatus.
func (a AttendanceStatus) IsValid() bool {
	for _, candidate := range validAttendanceStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttendanceStatus converts raw input into an AttendanceStatus.
func ParseAttendanceStatus(value string) (AttendanceStatus, error) {
	for _, candidate := range validAttendanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendance status %q", value)
}
