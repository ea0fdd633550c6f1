package testutil

import (
	"time"

	"go.uber.org/zap"

	"restrictedbot/internal/domain"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user on the free tier
func NewTestUser(userID int64) *domain.User {
	return &domain.User{
		UserID:      userID,
		PhoneNumber: "+15550001111",
		SessionFile: "user_test.session",
		IsActive:    true,
		DailyReset:  time.Now(),
		CreatedAt:   time.Now(),
	}
}

// NewPremiumUser creates a test user with an active premium subscription
func NewPremiumUser(userID int64) *domain.User {
	u := NewTestUser(userID)
	u.IsPremium = true
	expiry := time.Now().Add(30 * 24 * time.Hour)
	u.SubscriptionExpiry = &expiry
	return u
}

// NewTestPayment creates a pending payment record
func NewTestPayment(id int, userID int64, amount float64) domain.Payment {
	return domain.Payment{
		ID:            id,
		UserID:        userID,
		Method:        "mtn",
		Amount:        amount,
		TransactionID: "tx-test",
		Status:        domain.PaymentPending,
		CreatedAt:     time.Now(),
	}
}
