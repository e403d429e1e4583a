package enums

// OutboxEventType names the domain events shipped through the outbox.
type OutboxEventType string

const (
	EventDonationVerified  OutboxEventType = "donation.verified"
	EventCertificateIssued OutboxEventType = "certificate.issued"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateDonation    OutboxAggregateType = "donation"
	AggregateCertificate OutboxAggregateType = "certificate"
)
