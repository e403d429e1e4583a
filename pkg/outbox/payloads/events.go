package payloads

import "github.com/google/uuid"

// DonationVerifiedEvent carries everything the mailer needs to send a
// donation receipt without touching the database.
type DonationVerifiedEvent struct {
	DonationID    uuid.UUID `json:"donationId"`
	OrderID       string    `json:"orderId"`
	UserID        uuid.UUID `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	ActivityID    uuid.UUID `json:"activityId"`
	ActivityTitle string    `json:"activityTitle"`
	Amount        int64     `json:"amount"`
}

// CertificateIssuedEvent announces a freshly issued attendance certificate.
type CertificateIssuedEvent struct {
	CertificateID uuid.UUID `json:"certificateId"`
	UserID        uuid.UUID `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	ActivityID    uuid.UUID `json:"activityId"`
	ActivityTitle string    `json:"activityTitle"`
	Code          string    `json:"code"`
}
