package domain

import "time"

// PaymentStatus is the lifecycle state of a payment record
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Payment is a user-submitted subscription payment awaiting admin review
type Payment struct {
	ID            int
	UserID        int64
	Method        string
	Amount        float64
	TransactionID string
	Status        PaymentStatus
	CreatedAt     time.Time
	VerifiedAt    *time.Time
}

// SystemStats is an aggregate snapshot for the admin panel
type SystemStats struct {
	TotalUsers      int
	ActiveUsers     int
	PremiumUsers    int
	ProUsers        int
	AdminUsers      int
	TotalDownloads  int
	TotalSize       int64
	PendingPayments int
}
