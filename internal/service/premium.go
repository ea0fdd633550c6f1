package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/repository"
)

// Subscription prices in USD
const (
	PremiumPrice = 5.0
	ProPrice     = 15.0
)

// broadcastDelay spaces broadcast sends to stay under bot API rate limits
const broadcastDelay = 100 * time.Millisecond

// PremiumService handles subscriptions, payments and admin operations
type PremiumService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	statsRepo   repository.StatsRepository
	sender      MediaSender
	methods     map[string]string
	logger      *zap.Logger
}

// NewPremiumService creates a new premium service
func NewPremiumService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	sender MediaSender,
	methods map[string]string,
	logger *zap.Logger,
) *PremiumService {
	return &PremiumService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		sender:      sender,
		methods:     methods,
		logger:      logger,
	}
}

// PaymentMethods returns the configured method names and their addresses
func (s *PremiumService) PaymentMethods() map[string]string {
	return s.methods
}

// PriceFor returns the price of a paid tier
func PriceFor(tier domain.Tier) (float64, error) {
	switch tier {
	case domain.TierPremium:
		return PremiumPrice, nil
	case domain.TierPro:
		return ProPrice, nil
	}
	return 0, fmt.Errorf("tier %q cannot be purchased", tier)
}

// SubmitPayment records a user's payment claim for admin review
func (s *PremiumService) SubmitPayment(userID int64, method string, tier domain.Tier, transactionID string) error {
	if _, ok := s.methods[method]; !ok {
		return fmt.Errorf("unknown payment method %q", method)
	}
	price, err := PriceFor(tier)
	if err != nil {
		return err
	}
	if err := s.paymentRepo.AddPayment(userID, method, price, transactionID); err != nil {
		return err
	}
	s.logger.Info("payment submitted",
		zap.Int64("user_id", userID),
		zap.String("method", method),
		zap.Float64("amount", price))
	return nil
}

// PendingPayments lists payments awaiting admin review
func (s *PremiumService) PendingPayments() ([]domain.Payment, error) {
	return s.paymentRepo.ListPending()
}

// ApprovePayment marks a payment verified and activates the tier its
// amount paid for. The subscription runs 30 days from approval.
func (s *PremiumService) ApprovePayment(paymentID int) (int64, domain.Tier, error) {
	pending, err := s.paymentRepo.ListPending()
	if err != nil {
		return 0, "", err
	}

	tier := domain.TierPremium
	for _, p := range pending {
		if p.ID == paymentID {
			if p.Amount >= ProPrice {
				tier = domain.TierPro
			}
			break
		}
	}

	userID, err := s.paymentRepo.VerifyPayment(paymentID)
	if err != nil {
		return 0, "", err
	}
	if err := s.userRepo.SetTier(userID, tier); err != nil {
		return 0, "", err
	}

	s.logger.Info("payment approved",
		zap.Int("payment_id", paymentID),
		zap.Int64("user_id", userID),
		zap.String("tier", string(tier)))
	return userID, tier, nil
}

// GrantTier assigns a tier directly, bypassing payment
func (s *PremiumService) GrantTier(userID int64, tier domain.Tier) error {
	if err := s.userRepo.SetTier(userID, tier); err != nil {
		return err
	}
	s.logger.Info("tier granted",
		zap.Int64("user_id", userID),
		zap.String("tier", string(tier)))
	return nil
}

// RevokeTier drops the user back to the free tier
func (s *PremiumService) RevokeTier(userID int64) error {
	return s.GrantTier(userID, domain.TierFree)
}

// UserStats returns a user's lifetime download totals
func (s *PremiumService) UserStats(userID int64) (int, int64, error) {
	return s.statsRepo.UserStats(userID)
}

// SystemStats returns aggregate numbers for the admin dashboard
func (s *PremiumService) SystemStats() (*domain.SystemStats, error) {
	return s.statsRepo.SystemStats()
}

// Broadcast sends a message to every known user and tallies the outcome
func (s *PremiumService) Broadcast(text string) (sent, failed int, err error) {
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return 0, 0, err
	}

	for i, user := range users {
		if err := s.sender.SendMessage(user.UserID, text); err != nil {
			failed++
			s.logger.Debug("broadcast delivery failed",
				zap.Int64("user_id", user.UserID),
				zap.Error(err))
		} else {
			sent++
		}
		if i < len(users)-1 {
			time.Sleep(broadcastDelay)
		}
	}

	s.logger.Info("broadcast finished",
		zap.Int("sent", sent),
		zap.Int("failed", failed))
	return sent, failed, nil
}
