package models

import "time"

// EnvelopeStatus is the delivery state of an outbound envelope.
type EnvelopeStatus string

const (
	StatusPending EnvelopeStatus = "pending"
	StatusSent    EnvelopeStatus = "sent"
	// StatusFailed is only reached when a delivery attempt ceiling is configured.
	StatusFailed EnvelopeStatus = "failed"
)

// OutboundEnvelope is an operator-authored message awaiting delivery.
type OutboundEnvelope struct {
	ID        int64
	UserID    int64
	Content   string
	Type      string
	Status    EnvelopeStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	SentAt    *time.Time
}
