package service

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/remote"
	"restrictedbot/internal/repository"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// codeSubmitDelay spaces the code submission out from the user's keypress,
// which avoids tripping the remote side's automation heuristics.
const codeSubmitDelay = 200 * time.Millisecond

// authAttempt is one in-flight login conversation
type authAttempt struct {
	phone    string
	codeHash string
	client   remote.Client
	stage    domain.AuthStage
}

// AuthService drives the phone, code and two-factor login conversation and
// persists the resulting account link.
type AuthService struct {
	factory  remote.Factory
	sessions *remote.SessionStore
	userRepo repository.UserRepository
	adminIDs map[int64]bool
	logger   *zap.Logger

	mu       sync.Mutex
	attempts map[int64]*authAttempt
}

// NewAuthService creates a new auth service
func NewAuthService(
	factory remote.Factory,
	sessions *remote.SessionStore,
	userRepo repository.UserRepository,
	adminIDs []int64,
	logger *zap.Logger,
) *AuthService {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &AuthService{
		factory:  factory,
		sessions: sessions,
		userRepo: userRepo,
		adminIDs: admins,
		logger:   logger,
		attempts: make(map[int64]*authAttempt),
	}
}

// IsAuthenticated reports whether the user has a usable linked account.
// The session file on disk is authoritative; the database record is
// consulted opportunistically and a read failure does not lock the user out.
func (s *AuthService) IsAuthenticated(userID int64) bool {
	if !s.sessions.IsValid(userID) {
		return false
	}
	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		s.logger.Warn("user lookup failed, trusting session file",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return true
	}
	return user != nil && user.IsActive
}

// User loads the account record behind a bot user
func (s *AuthService) User(userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrAuthRequired
	}
	return user, nil
}

// SetChannelsVerified stores the outcome of a channel membership check
func (s *AuthService) SetChannelsVerified(userID int64) error {
	return s.userRepo.SetChannelsVerified(userID, true)
}

// Stage returns the user's current position in the login conversation
func (s *AuthService) Stage(userID int64) domain.AuthStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[userID]; ok {
		return a.stage
	}
	return domain.StageIdle
}

// StartLogin validates the phone number, opens a fresh client and requests
// a verification code. A previous unfinished attempt is discarded first.
func (s *AuthService) StartLogin(ctx context.Context, userID int64, phone string) error {
	if !phonePattern.MatchString(phone) {
		return domain.ErrInvalidPhone
	}

	s.discardAttempt(userID)

	client, err := s.factory.NewClient(userID)
	if err != nil {
		return &domain.VerificationError{Detail: "client setup", Err: err}
	}
	if err := client.Connect(ctx); err != nil {
		return &domain.VerificationError{Detail: "connect", Err: err}
	}

	codeHash, err := client.SendCode(ctx, phone)
	if err != nil {
		_ = client.Disconnect()
		switch {
		case isFloodWait(err):
			return floodToRateLimit(err)
		case err == remote.ErrPhoneInvalid:
			return domain.ErrInvalidPhone
		}
		return &domain.VerificationError{Detail: "send code", Err: err}
	}

	s.mu.Lock()
	s.attempts[userID] = &authAttempt{
		phone:    phone,
		codeHash: codeHash,
		client:   client,
		stage:    domain.StageAwaitingCode,
	}
	s.mu.Unlock()

	s.logger.Info("verification code sent", zap.Int64("user_id", userID))
	return nil
}

// SubmitCode checks the verification code against the pending attempt.
// On ErrTwoFactorRequired the attempt stays alive awaiting SubmitPassword.
func (s *AuthService) SubmitCode(ctx context.Context, userID int64, rawCode string) error {
	code := nonDigits.ReplaceAllString(rawCode, "")
	if len(code) != 5 {
		return domain.ErrInvalidCode
	}

	s.mu.Lock()
	attempt, ok := s.attempts[userID]
	s.mu.Unlock()
	if !ok || attempt.stage != domain.StageAwaitingCode {
		return domain.ErrSessionExpired
	}
	if !attempt.client.Connected() {
		s.discardAttempt(userID)
		return domain.ErrConnectionLost
	}

	time.Sleep(codeSubmitDelay)

	err := attempt.client.SignIn(ctx, attempt.phone, attempt.codeHash, code)
	switch {
	case err == nil:
		return s.finalize(ctx, userID, attempt)
	case err == remote.ErrPasswordNeeded:
		s.mu.Lock()
		attempt.stage = domain.StageAwaitingPassword
		s.mu.Unlock()
		return domain.ErrTwoFactorRequired
	case err == remote.ErrCodeInvalid:
		// Wrong code is retryable, the attempt stays open.
		return domain.ErrInvalidCode
	case err == remote.ErrCodeExpired:
		s.discardAttempt(userID)
		return domain.ErrCodeExpired
	case isFloodWait(err):
		s.discardAttempt(userID)
		return floodToRateLimit(err)
	}

	s.discardAttempt(userID)
	return &domain.VerificationError{Detail: "sign in", Err: err}
}

// SubmitPassword finishes a login that hit two-factor protection
func (s *AuthService) SubmitPassword(ctx context.Context, userID int64, password string) error {
	s.mu.Lock()
	attempt, ok := s.attempts[userID]
	s.mu.Unlock()
	if !ok || attempt.stage != domain.StageAwaitingPassword {
		return domain.ErrSessionExpired
	}
	if !attempt.client.Connected() {
		s.discardAttempt(userID)
		return domain.ErrConnectionLost
	}

	err := attempt.client.CheckPassword(ctx, password)
	switch {
	case err == nil:
		return s.finalize(ctx, userID, attempt)
	case err == remote.ErrPasswordInvalid:
		return domain.ErrInvalidCode
	case isFloodWait(err):
		s.discardAttempt(userID)
		return floodToRateLimit(err)
	}

	s.discardAttempt(userID)
	return &domain.VerificationError{Detail: "check password", Err: err}
}

// finalize shuts the login client down so session material is flushed to
// disk, then records the account link. The shutdown must happen before the
// session file is checked; Stop flushes, plain Disconnect is the fallback.
func (s *AuthService) finalize(ctx context.Context, userID int64, attempt *authAttempt) error {
	if err := attempt.client.Stop(); err != nil {
		s.logger.Warn("graceful stop failed, disconnecting",
			zap.Int64("user_id", userID),
			zap.Error(err))
		_ = attempt.client.Disconnect()
	}

	s.mu.Lock()
	delete(s.attempts, userID)
	s.mu.Unlock()

	if !s.sessions.IsValid(userID) {
		return &domain.VerificationError{Detail: "session file missing after login"}
	}

	sessionFile := s.sessions.Path(userID)
	backoff := retry.WithMaxRetries(2, retry.NewConstant(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.userRepo.UpsertUser(userID, attempt.phone, sessionFile, s.adminIDs[userID]); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// The session file already authenticates the user; the record
		// will be written on the next successful operation.
		s.logger.Error("failed to persist account link",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	s.logger.Info("account linked", zap.Int64("user_id", userID))
	return nil
}

// Cancel abandons any pending login attempt
func (s *AuthService) Cancel(userID int64) {
	s.discardAttempt(userID)
}

// Logout removes the user's session file. The database record, including
// any paid subscription, is left untouched so a later login restores it.
func (s *AuthService) Logout(userID int64) error {
	s.discardAttempt(userID)
	if err := s.sessions.Remove(userID); err != nil {
		return err
	}
	s.logger.Info("logged out", zap.Int64("user_id", userID))
	return nil
}

func (s *AuthService) discardAttempt(userID int64) {
	s.mu.Lock()
	attempt, ok := s.attempts[userID]
	delete(s.attempts, userID)
	s.mu.Unlock()
	if ok {
		_ = attempt.client.Disconnect()
	}
}

func isFloodWait(err error) bool {
	_, ok := err.(*remote.FloodWaitError)
	return ok
}

func floodToRateLimit(err error) error {
	fw := err.(*remote.FloodWaitError)
	return &domain.RateLimitedError{RetryAfter: fw.RetryAfter}
}
