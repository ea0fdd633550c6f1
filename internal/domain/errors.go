package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors surfaced at user-facing operation boundaries
var (
	ErrInvalidLink       = errors.New("invalid link format")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrCodeExpired       = errors.New("verification code expired")
	ErrAuthRequired      = errors.New("not logged in")
	ErrSessionExpired    = errors.New("login session expired")
	ErrConnectionLost    = errors.New("connection lost")
	ErrTwoFactorRequired = errors.New("two-factor password required")
	ErrNoMediaFound      = errors.New("no downloadable media found")
	ErrAlreadyInProgress = errors.New("another transfer is already in progress")
	ErrUserNotFound      = errors.New("user not found")
)

// RateLimitedError reports a remote flood-wait
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// AccessDeniedError covers private channels, missing membership and
// admin-only content
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Reason
}

// PeerUnresolvedError means a chat could not be resolved by any strategy
type PeerUnresolvedError struct {
	Chat string
}

func (e *PeerUnresolvedError) Error() string {
	return "cannot resolve chat " + e.Chat
}

// QuotaExceededError reports a spent daily quota
type QuotaExceededError struct {
	Used int
	Max  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily limit reached (%d/%d)", e.Used, e.Max)
}

// CooldownError reports that the inter-transfer cooldown is still running
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, wait %s", e.Remaining.Round(time.Second))
}

// FileTooLargeError reports a file over the tier's size ceiling
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes (limit %d)", e.Size, e.Limit)
}

// TransferFailedError wraps a failed download, relay or copy
type TransferFailedError struct {
	Detail string
	Err    error
}

func (e *TransferFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer failed: %s: %v", e.Detail, e.Err)
	}
	return "transfer failed: " + e.Detail
}

func (e *TransferFailedError) Unwrap() error { return e.Err }

// VerificationError wraps an unrecoverable login failure
type VerificationError struct {
	Detail string
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verification failed: %s: %v", e.Detail, e.Err)
	}
	return "verification failed: " + e.Detail
}

func (e *VerificationError) Unwrap() error { return e.Err }
