package repository

import (
	"restrictedbot/internal/domain"
)

// UserRepository defines user account operations
type UserRepository interface {
	// GetUser loads a user, lazily resetting the daily counter after 24h and
	// downgrading lapsed subscriptions.
	GetUser(userID int64) (*domain.User, error)
	UpsertUser(userID int64, phone, sessionFile string, isAdmin bool) error
	IncrementDownloadCount(userID int64) error
	SetTier(userID int64, tier domain.Tier) error
	SetChannelsVerified(userID int64, verified bool) error
	SetAdmin(userID int64, isAdmin bool) error
	ListUsers() ([]domain.User, error)
}

// StatsRepository defines download statistics operations
type StatsRepository interface {
	AddDownloadStat(userID int64, fileName string, fileSize int64) error
	UserStats(userID int64) (totalDownloads int, totalSize int64, err error)
	SystemStats() (*domain.SystemStats, error)
}

// PaymentRepository defines payment record operations
type PaymentRepository interface {
	AddPayment(userID int64, method string, amount float64, transactionID string) error
	ListPending() ([]domain.Payment, error)
	VerifyPayment(paymentID int) (userID int64, err error)
}
