package enums

import "fmt"

// DonationStatus tracks the lifecycle of a donation. Pending is the only
// non-terminal state; verified and failed never change again.
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "pending"
	DonationStatusVerified DonationStatus = "verified"
	DonationStatusFailed   DonationStatus = "failed"
)

var validDonationStatuses = []DonationStatus{
	DonationStatusPending,
	DonationStatusVerified,
	DonationStatusFailed,
}

// String implements fmt.Stringer.
func (d DonationStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DonationStatus.
func (d DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status can never transition again.
func (d DonationStatus) IsTerminal() bool {
	return d == DonationStatusVerified || d == DonationStatusFailed
}

// ParseDonationStatus converts raw input into a DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}
