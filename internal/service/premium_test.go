package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/testutil"
)

type premiumFixture struct {
	svc         *PremiumService
	paymentRepo *testutil.MockPaymentRepository
	userRepo    *testutil.MockUserRepository
	statsRepo   *testutil.MockStatsRepository
	sender      *testutil.MockSender
}

func newPremiumFixture() *premiumFixture {
	paymentRepo := new(testutil.MockPaymentRepository)
	userRepo := new(testutil.MockUserRepository)
	statsRepo := new(testutil.MockStatsRepository)
	sender := new(testutil.MockSender)

	methods := map[string]string{"mtn": "0551234567", "bitcoin": "bc1qexample"}
	svc := NewPremiumService(paymentRepo, userRepo, statsRepo, sender, methods,
		testutil.NewTestLogger())

	return &premiumFixture{
		svc:         svc,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		sender:      sender,
	}
}

func TestPriceFor(t *testing.T) {
	price, err := PriceFor(domain.TierPremium)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, price)

	price, err = PriceFor(domain.TierPro)
	assert.NoError(t, err)
	assert.Equal(t, 15.0, price)

	_, err = PriceFor(domain.TierFree)
	assert.Error(t, err)
	_, err = PriceFor(domain.TierAdmin)
	assert.Error(t, err)
}

func TestPremiumService_SubmitPayment(t *testing.T) {
	f := newPremiumFixture()

	f.paymentRepo.On("AddPayment", int64(1), "mtn", 5.0, "tx123").Return(nil)

	err := f.svc.SubmitPayment(1, "mtn", domain.TierPremium, "tx123")

	assert.NoError(t, err)
	f.paymentRepo.AssertExpectations(t)
}

func TestPremiumService_SubmitPayment_UnknownMethod(t *testing.T) {
	f := newPremiumFixture()

	err := f.svc.SubmitPayment(1, "paypal", domain.TierPremium, "tx123")

	assert.Error(t, err)
	f.paymentRepo.AssertNotCalled(t, "AddPayment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPremiumService_SubmitPayment_FreeTier(t *testing.T) {
	f := newPremiumFixture()

	err := f.svc.SubmitPayment(1, "mtn", domain.TierFree, "tx123")

	assert.Error(t, err)
}

func TestPremiumService_ApprovePayment_TierFromAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   domain.Tier
	}{
		{"premium price", 5.0, domain.TierPremium},
		{"pro price", 15.0, domain.TierPro},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPremiumFixture()

			payment := testutil.NewTestPayment(7, 42, tt.amount)
			f.paymentRepo.On("ListPending").Return([]domain.Payment{payment}, nil)
			f.paymentRepo.On("VerifyPayment", 7).Return(int64(42), nil)
			f.userRepo.On("SetTier", int64(42), tt.want).Return(nil)

			userID, tier, err := f.svc.ApprovePayment(7)

			assert.NoError(t, err)
			assert.Equal(t, int64(42), userID)
			assert.Equal(t, tt.want, tier)
			f.userRepo.AssertExpectations(t)
		})
	}
}

func TestPremiumService_ApprovePayment_NotFound(t *testing.T) {
	f := newPremiumFixture()

	f.paymentRepo.On("ListPending").Return([]domain.Payment{}, nil)
	f.paymentRepo.On("VerifyPayment", 99).Return(int64(0), domain.ErrUserNotFound)

	_, _, err := f.svc.ApprovePayment(99)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	f.userRepo.AssertNotCalled(t, "SetTier", mock.Anything, mock.Anything)
}

func TestPremiumService_GrantAndRevokeTier(t *testing.T) {
	f := newPremiumFixture()

	f.userRepo.On("SetTier", int64(1), domain.TierPro).Return(nil)
	assert.NoError(t, f.svc.GrantTier(1, domain.TierPro))

	f.userRepo.On("SetTier", int64(1), domain.TierFree).Return(nil)
	assert.NoError(t, f.svc.RevokeTier(1))

	f.userRepo.AssertExpectations(t)
}

func TestPremiumService_Broadcast(t *testing.T) {
	f := newPremiumFixture()

	users := []domain.User{{UserID: 1}, {UserID: 2}, {UserID: 3}}
	f.userRepo.On("ListUsers").Return(users, nil)
	f.sender.On("SendMessage", int64(1), "hello").Return(nil)
	f.sender.On("SendMessage", int64(2), "hello").Return(errors.New("blocked"))
	f.sender.On("SendMessage", int64(3), "hello").Return(nil)

	sent, failed, err := f.svc.Broadcast("hello")

	assert.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)
}

func TestPremiumService_Broadcast_ListFails(t *testing.T) {
	f := newPremiumFixture()

	f.userRepo.On("ListUsers").Return(nil, errors.New("db down"))

	_, _, err := f.svc.Broadcast("hello")

	assert.Error(t, err)
	f.sender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}
