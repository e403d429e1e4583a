package enums

import "fmt"

// ActivityType distinguishes volunteer drives from fundraising campaigns.
type ActivityType string

const (
	ActivityTypeVolunteer ActivityType = "volunteer"
	ActivityTypeDonation  ActivityType = "donation"
)

var validActivityTypes = []ActivityType{
	ActivityTypeVolunteer,
	ActivityTypeDonation,
}

// IsValid reports whether the value is a known ActivityType.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}

// ActivityStatus controls catalog visibility.
type ActivityStatus string

const (
	ActivityStatusDraft     ActivityStatus = "draft"
	ActivityStatusPublished ActivityStatus = "published"
	ActivityStatusArchived  ActivityStatus = "archived"
)

var validActivityStatuses = []ActivityStatus{
	ActivityStatusDraft,
	ActivityStatusPublished,
	ActivityStatusArchived,
}

// IsValid reports whether the value is a known ActivityStatus.
func (a ActivityStatus) IsValid() bool {
	for _, candidate := range validActivityStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityStatus converts raw input into an ActivityStatus.
func ParseActivityStatus(value string) (ActivityStatus, error) {
	for _, candidate := range validActivityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity status %q", value)
}
