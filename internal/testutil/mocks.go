package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/remote"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(userID int64) (*domain.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpsertUser(userID int64, phone, sessionFile string, isAdmin bool) error {
	args := m.Called(userID, phone, sessionFile, isAdmin)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementDownloadCount(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) SetTier(userID int64, tier domain.Tier) error {
	args := m.Called(userID, tier)
	return args.Error(0)
}

func (m *MockUserRepository) SetChannelsVerified(userID int64, verified bool) error {
	args := m.Called(userID, verified)
	return args.Error(0)
}

func (m *MockUserRepository) SetAdmin(userID int64, isAdmin bool) error {
	args := m.Called(userID, isAdmin)
	return args.Error(0)
}

func (m *MockUserRepository) ListUsers() ([]domain.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockStatsRepository is a mock for StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) AddDownloadStat(userID int64, fileName string, fileSize int64) error {
	args := m.Called(userID, fileName, fileSize)
	return args.Error(0)
}

func (m *MockStatsRepository) UserStats(userID int64) (int, int64, error) {
	args := m.Called(userID)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockStatsRepository) SystemStats() (*domain.SystemStats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemStats), args.Error(1)
}

// MockPaymentRepository is a mock for PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) AddPayment(userID int64, method string, amount float64, transactionID string) error {
	args := m.Called(userID, method, amount, transactionID)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListPending() ([]domain.Payment, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) VerifyPayment(paymentID int) (int64, error) {
	args := m.Called(paymentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockClient is a mock for remote.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClient) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Stop() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockClient) SendCode(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}

func (m *MockClient) SignIn(ctx context.Context, phone, codeHash, code string) error {
	args := m.Called(ctx, phone, codeHash, code)
	return args.Error(0)
}

func (m *MockClient) CheckPassword(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

func (m *MockClient) GetChat(ctx context.Context, chat string) (*remote.Chat, error) {
	args := m.Called(ctx, chat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Chat), args.Error(1)
}

func (m *MockClient) GetDialogs(ctx context.Context) ([]remote.Chat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]remote.Chat), args.Error(1)
}

func (m *MockClient) ResolvePeer(ctx context.Context, chat string) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *MockClient) GetChatMember(ctx context.Context, chat string) (string, error) {
	args := m.Called(ctx, chat)
	return args.String(0), args.Error(1)
}

func (m *MockClient) GetMessage(ctx context.Context, chat string, messageID int) (*remote.Message, error) {
	args := m.Called(ctx, chat, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Message), args.Error(1)
}

func (m *MockClient) Download(ctx context.Context, msg *remote.Message, path string, onProgress remote.ProgressFunc) error {
	args := m.Called(ctx, msg, path, onProgress)
	return args.Error(0)
}

func (m *MockClient) CopyMessage(ctx context.Context, fromChat string, messageID int, toUser int64) error {
	args := m.Called(ctx, fromChat, messageID, toUser)
	return args.Error(0)
}

// MockFactory is a mock for remote.Factory
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) NewClient(userID int64) (remote.Client, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(remote.Client), args.Error(1)
}

// MockSender is a mock for MediaSender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendMessage(userID int64, text string) error {
	args := m.Called(userID, text)
	return args.Error(0)
}

func (m *MockSender) SendVideo(userID int64, path, caption string) error {
	args := m.Called(userID, path, caption)
	return args.Error(0)
}

func (m *MockSender) SendPhoto(userID int64, path, caption string) error {
	args := m.Called(userID, path, caption)
	return args.Error(0)
}

func (m *MockSender) SendAudio(userID int64, path, caption string) error {
	args := m.Called(userID, path, caption)
	return args.Error(0)
}

func (m *MockSender) SendVoice(userID int64, path string) error {
	args := m.Called(userID, path)
	return args.Error(0)
}

func (m *MockSender) SendAnimation(userID int64, path, caption string) error {
	args := m.Called(userID, path, caption)
	return args.Error(0)
}

func (m *MockSender) SendSticker(userID int64, path string) error {
	args := m.Called(userID, path)
	return args.Error(0)
}

func (m *MockSender) SendDocument(userID int64, path, fileName, caption string) error {
	args := m.Called(userID, path, fileName, caption)
	return args.Error(0)
}
