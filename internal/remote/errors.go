package remote

import (
	"errors"
	"fmt"
	"time"
)

// Errors surfaced by Client implementations. The service layer translates
// these into the user-facing taxonomy in internal/domain.
var (
	ErrNotConnected    = errors.New("client not connected")
	ErrPhoneInvalid    = errors.New("phone number invalid")
	ErrCodeInvalid     = errors.New("phone code invalid")
	ErrCodeExpired     = errors.New("phone code expired")
	ErrPasswordNeeded  = errors.New("two-factor password needed")
	ErrPasswordInvalid = errors.New("two-factor password invalid")
	ErrSessionInvalid  = errors.New("session revoked or expired")
	ErrPeerInvalid     = errors.New("peer id invalid")
	ErrChannelPrivate  = errors.New("channel is private")
	ErrNotParticipant  = errors.New("user is not a participant")
	ErrAdminRequired   = errors.New("chat admin rights required")
	ErrMessageNotFound = errors.New("message not found")
)

// FloodWaitError is the remote service's rate-limit signal
type FloodWaitError struct {
	RetryAfter time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait %s", e.RetryAfter)
}
