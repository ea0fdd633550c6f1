package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/remote"
)

// SessionService opens short-lived connections on a user's saved session.
// Every operation runs inside WithSession so connections never leak.
type SessionService struct {
	factory  remote.Factory
	sessions *remote.SessionStore
	logger   *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(factory remote.Factory, sessions *remote.SessionStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		factory:  factory,
		sessions: sessions,
		logger:   logger,
	}
}

// Session is one live connection handed to a WithSession callback
type Session struct {
	userID int64
	client remote.Client
	logger *zap.Logger
}

// WithSession connects on the user's stored credentials, runs fn and always
// disconnects. A revoked session removes the stale file and reports
// ErrSessionExpired so the user is sent back through login.
func (s *SessionService) WithSession(ctx context.Context, userID int64, fn func(*Session) error) error {
	if !s.sessions.IsValid(userID) {
		return domain.ErrAuthRequired
	}

	client, err := s.factory.NewClient(userID)
	if err != nil {
		return &domain.TransferFailedError{Detail: "client setup", Err: err}
	}

	if err := client.Connect(ctx); err != nil {
		if err == remote.ErrSessionInvalid {
			return s.expireSession(userID)
		}
		return domain.ErrConnectionLost
	}
	defer func() {
		if err := client.Disconnect(); err != nil {
			s.logger.Warn("disconnect failed",
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}()

	err = fn(&Session{userID: userID, client: client, logger: s.logger})
	if err == remote.ErrSessionInvalid {
		return s.expireSession(userID)
	}
	return err
}

func (s *SessionService) expireSession(userID int64) error {
	if err := s.sessions.Remove(userID); err != nil {
		s.logger.Warn("failed to remove stale session file",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
	return domain.ErrSessionExpired
}

// VerifyChannels reports whether the user is a member of every required
// channel. Channels that cannot be checked count as not joined.
func (s *SessionService) VerifyChannels(ctx context.Context, userID int64, channels []string) (bool, []string, error) {
	var missing []string
	err := s.WithSession(ctx, userID, func(sess *Session) error {
		for _, channel := range channels {
			status, err := sess.client.GetChatMember(ctx, channel)
			if err != nil {
				sess.logger.Debug("membership check failed",
					zap.String("channel", channel),
					zap.Error(err))
				missing = append(missing, channel)
				continue
			}
			switch status {
			case "member", "administrator", "creator":
			default:
				missing = append(missing, channel)
			}
		}
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return len(missing) == 0, missing, nil
}

// resolveChat makes the chat known to the session. Restricted channels are
// often invisible to a direct lookup, so three strategies run in order:
// direct chat info, a dialog scan, then a raw peer resolve.
func (sess *Session) resolveChat(ctx context.Context, chat string) error {
	if _, err := sess.client.GetChat(ctx, chat); err == nil {
		return nil
	}

	if dialogs, err := sess.client.GetDialogs(ctx); err == nil {
		for _, d := range dialogs {
			if matchesChat(d, chat) {
				return nil
			}
		}
	}

	if err := sess.client.ResolvePeer(ctx, chat); err != nil {
		if err == remote.ErrSessionInvalid {
			return err
		}
		return &domain.PeerUnresolvedError{Chat: chat}
	}
	return nil
}

func matchesChat(d remote.Chat, chat string) bool {
	if d.Username != "" && strings.EqualFold(d.Username, strings.TrimPrefix(chat, "@")) {
		return true
	}
	return strconv.FormatInt(d.ID, 10) == chat
}

// GetMessage fetches one message after resolving its chat
func (sess *Session) GetMessage(ctx context.Context, link *domain.MessageLink) (*remote.Message, error) {
	if err := sess.resolveChat(ctx, link.Chat); err != nil {
		return nil, err
	}

	msg, err := sess.client.GetMessage(ctx, link.Chat, link.MessageID)
	if err != nil {
		return nil, translateAccessError(err, link.Chat)
	}
	return msg, nil
}

// Download pulls the message's media to path, reporting raw progress
func (sess *Session) Download(ctx context.Context, msg *remote.Message, path string, onProgress remote.ProgressFunc) error {
	if err := sess.client.Download(ctx, msg, path, onProgress); err != nil {
		if err == remote.ErrSessionInvalid {
			return err
		}
		return &domain.TransferFailedError{Detail: "download", Err: err}
	}
	return nil
}

// CopyMessage re-sends a message to the user without downloading it
func (sess *Session) CopyMessage(ctx context.Context, link *domain.MessageLink, toUser int64) error {
	if err := sess.resolveChat(ctx, link.Chat); err != nil {
		return err
	}
	if err := sess.client.CopyMessage(ctx, link.Chat, link.MessageID, toUser); err != nil {
		return translateAccessError(err, link.Chat)
	}
	return nil
}

// translateAccessError maps remote failures onto the user-facing taxonomy
func translateAccessError(err error, chat string) error {
	switch err {
	case remote.ErrChannelPrivate:
		return &domain.AccessDeniedError{Reason: "channel is private"}
	case remote.ErrNotParticipant:
		return &domain.AccessDeniedError{Reason: "join the channel first"}
	case remote.ErrAdminRequired:
		return &domain.AccessDeniedError{Reason: "admin rights required"}
	case remote.ErrPeerInvalid:
		return &domain.PeerUnresolvedError{Chat: chat}
	case remote.ErrMessageNotFound:
		return domain.ErrNoMediaFound
	case remote.ErrSessionInvalid:
		return err
	}
	if fw, ok := err.(*remote.FloodWaitError); ok {
		return &domain.RateLimitedError{RetryAfter: fw.RetryAfter}
	}
	return &domain.TransferFailedError{Detail: "fetch message", Err: err}
}
