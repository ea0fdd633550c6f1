package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/progress"
	"restrictedbot/internal/remote"
	"restrictedbot/internal/repository"
)

// MediaSender delivers downloaded files back to the user through the bot
type MediaSender interface {
	SendMessage(userID int64, text string) error
	SendVideo(userID int64, path, caption string) error
	SendPhoto(userID int64, path, caption string) error
	SendAudio(userID int64, path, caption string) error
	SendVoice(userID int64, path string) error
	SendAnimation(userID int64, path, caption string) error
	SendSticker(userID int64, path string) error
	SendDocument(userID int64, path, fileName, caption string) error
}

// batchItemDelay spaces consecutive fetches of a batch apart
const batchItemDelay = 500 * time.Millisecond

// maxBatchSize caps how many consecutive messages one command may fetch
const maxBatchSize = 10

// TransferService moves media from restricted chats to the requesting user.
// It owns the per-user single-flight guard and cooldown stamps; persistent
// counters live in the repositories.
type TransferService struct {
	sessions  *SessionService
	quotas    *QuotaGate
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	sender    MediaSender
	dir       string
	logger    *zap.Logger

	mu           sync.Mutex
	active       map[int64]bool
	lastTransfer map[int64]time.Time

	now func() time.Time
}

// NewTransferService creates a new transfer service
func NewTransferService(
	sessions *SessionService,
	quotas *QuotaGate,
	userRepo repository.UserRepository,
	statsRepo repository.StatsRepository,
	sender MediaSender,
	downloadDir string,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		sessions:     sessions,
		quotas:       quotas,
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		sender:       sender,
		dir:          downloadDir,
		logger:       logger,
		active:       make(map[int64]bool),
		lastTransfer: make(map[int64]time.Time),
		now:          time.Now,
	}
}

// acquire takes the user's single-flight slot. Concurrent requests are
// rejected outright rather than queued.
func (s *TransferService) acquire(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[userID] {
		return domain.ErrAlreadyInProgress
	}
	s.active[userID] = true
	return nil
}

func (s *TransferService) release(userID int64) {
	s.mu.Lock()
	delete(s.active, userID)
	s.mu.Unlock()
}

// admit loads the user and enforces cooldown and daily quota
func (s *TransferService) admit(userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUser(userID)
	if err != nil {
		return nil, &domain.TransferFailedError{Detail: "load user", Err: err}
	}
	if user == nil {
		return nil, domain.ErrAuthRequired
	}

	if cd := s.quotas.Cooldown(user); cd > 0 {
		s.mu.Lock()
		last, ok := s.lastTransfer[userID]
		s.mu.Unlock()
		if ok {
			if elapsed := s.now().Sub(last); elapsed < cd {
				return nil, &domain.CooldownError{Remaining: cd - elapsed}
			}
		}
	}

	if err := s.quotas.CanProceed(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Download fetches the linked message's media and relays it to the user.
// Progress updates flow through tracker, which may be nil.
func (s *TransferService) Download(ctx context.Context, userID int64, rawLink string, tracker *progress.Tracker) (*domain.TransferResult, error) {
	link, err := domain.ParseLink(rawLink)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(userID); err != nil {
		return nil, err
	}
	defer s.release(userID)

	user, err := s.admit(userID)
	if err != nil {
		return nil, err
	}

	result, err := s.downloadOne(ctx, user, link, tracker)
	if err != nil {
		return nil, err
	}

	s.stamp(userID)
	return result, nil
}

// downloadOne runs a single admitted download. Callers hold the user's
// single-flight slot.
func (s *TransferService) downloadOne(ctx context.Context, user *domain.User, link *domain.MessageLink, tracker *progress.Tracker) (*domain.TransferResult, error) {
	var result *domain.TransferResult

	err := s.sessions.WithSession(ctx, user.UserID, func(sess *Session) error {
		msg, err := sess.GetMessage(ctx, link)
		if err != nil {
			return err
		}
		if msg.Media == nil {
			return domain.ErrNoMediaFound
		}

		if limit := s.quotas.FileSizeLimit(user); msg.Media.Size > limit {
			return &domain.FileTooLargeError{Size: msg.Media.Size, Limit: limit}
		}

		fileName := domain.FileName(msg.Media.Kind, msg.Media.FileName, msg.Media.MimeType, msg.ID)
		path := filepath.Join(s.dir, uuid.NewString()+"_"+fileName)
		defer func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("failed to remove temp file",
					zap.String("path", path),
					zap.Error(err))
			}
		}()

		var onProgress remote.ProgressFunc
		if tracker != nil {
			onProgress = tracker.Report
		}
		if err := sess.Download(ctx, msg, path, onProgress); err != nil {
			return err
		}

		if err := s.relay(user.UserID, msg, path, fileName); err != nil {
			return &domain.TransferFailedError{Detail: "send to user", Err: err}
		}

		s.record(user, fileName, msg.Media.Size)
		result = &domain.TransferResult{
			FileName:  fileName,
			FileSize:  msg.Media.Size,
			Remaining: s.quotas.Remaining(user),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// relay maps media kinds to sender calls. Anything unmatched goes out as a
// document, and a failed kind-specific send is retried as a document before
// the transfer is declared failed.
func (s *TransferService) relay(userID int64, msg *remote.Message, path, fileName string) error {
	caption := msg.Caption

	var err error
	switch msg.Media.Kind {
	case domain.MediaVideo:
		err = s.sender.SendVideo(userID, path, caption)
	case domain.MediaPhoto:
		err = s.sender.SendPhoto(userID, path, caption)
	case domain.MediaAudio:
		err = s.sender.SendAudio(userID, path, caption)
	case domain.MediaVoice:
		err = s.sender.SendVoice(userID, path)
	case domain.MediaAnimation:
		err = s.sender.SendAnimation(userID, path, caption)
	case domain.MediaSticker:
		err = s.sender.SendSticker(userID, path)
	default:
		return s.sender.SendDocument(userID, path, fileName, caption)
	}
	if err == nil {
		return nil
	}

	s.logger.Warn("typed send failed, retrying as document",
		zap.Int64("user_id", userID),
		zap.String("kind", string(msg.Media.Kind)),
		zap.Error(err))
	return s.sender.SendDocument(userID, path, fileName, caption)
}

// record updates persistent counters. Failures are logged, not surfaced;
// the user already has their file.
func (s *TransferService) record(user *domain.User, fileName string, size int64) {
	if err := s.userRepo.IncrementDownloadCount(user.UserID); err != nil {
		s.logger.Error("failed to increment download count",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
	} else {
		user.DownloadCount++
	}
	if err := s.statsRepo.AddDownloadStat(user.UserID, fileName, size); err != nil {
		s.logger.Error("failed to record download stat",
			zap.Int64("user_id", user.UserID),
			zap.Error(err))
	}
}

// stamp marks a completed transfer for cooldown purposes. Failed attempts
// never stamp, so a failure does not cost the user their cooldown window.
func (s *TransferService) stamp(userID int64) {
	s.mu.Lock()
	s.lastTransfer[userID] = s.now()
	s.mu.Unlock()
}

// Forward re-sends the linked message to the user without downloading.
// No size ceiling applies since no file touches local disk.
func (s *TransferService) Forward(ctx context.Context, userID int64, rawLink string) error {
	link, err := domain.ParseLink(rawLink)
	if err != nil {
		return err
	}

	if err := s.acquire(userID); err != nil {
		return err
	}
	defer s.release(userID)

	user, err := s.admit(userID)
	if err != nil {
		return err
	}

	err = s.sessions.WithSession(ctx, userID, func(sess *Session) error {
		return sess.CopyMessage(ctx, link, userID)
	})
	if err != nil {
		return err
	}

	s.record(user, "forwarded message", 0)
	s.stamp(userID)
	return nil
}

// Batch downloads the count messages that follow the linked one. Individual
// failures are skipped; the tally reports how many came through.
func (s *TransferService) Batch(ctx context.Context, userID int64, rawLink string, count int) (*domain.BatchResult, error) {
	if count < 1 {
		count = 1
	}
	if count > maxBatchSize {
		count = maxBatchSize
	}

	link, err := domain.ParseLink(rawLink)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(userID); err != nil {
		return nil, err
	}
	defer s.release(userID)

	result := &domain.BatchResult{Requested: count}
	for i := 1; i <= count; i++ {
		user, err := s.admit(userID)
		if err != nil {
			// Quota or cooldown ran out mid-batch; stop early.
			if result.Succeeded > 0 {
				break
			}
			return nil, err
		}

		item := &domain.MessageLink{
			Chat:      link.Chat,
			MessageID: link.MessageID + i,
			Private:   link.Private,
		}
		if _, err := s.downloadOne(ctx, user, item, nil); err != nil {
			s.logger.Debug("batch item skipped",
				zap.Int64("user_id", userID),
				zap.Int("message_id", item.MessageID),
				zap.Error(err))
		} else {
			result.Succeeded++
		}

		if i < count {
			time.Sleep(batchItemDelay)
		}
	}
	if result.Succeeded > 0 {
		s.stamp(userID)
	}
	return result, nil
}
