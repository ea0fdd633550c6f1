package service

import (
	"time"

	"restrictedbot/internal/config"
	"restrictedbot/internal/domain"
)

// adminFileSize is the effectively unlimited ceiling applied to admins
const adminFileSize int64 = 50 << 30

// UnlimitedDownloads is the Remaining value for users with no daily cap
const UnlimitedDownloads = -1

// QuotaGate decides what a user's tier entitles them to. It is stateless;
// counters live in the database and cooldown stamps in TransferService.
type QuotaGate struct {
	limits   config.Limits
	adminIDs map[int64]bool
}

// NewQuotaGate creates a new quota gate
func NewQuotaGate(limits config.Limits, adminIDs []int64) *QuotaGate {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &QuotaGate{limits: limits, adminIDs: admins}
}

// Tier resolves the user's effective tier. The configured admin list wins
// over anything stored in the database.
func (q *QuotaGate) Tier(user *domain.User) domain.Tier {
	switch {
	case q.adminIDs[user.UserID] || user.IsAdmin:
		return domain.TierAdmin
	case user.IsPro:
		return domain.TierPro
	case user.IsPremium:
		return domain.TierPremium
	}
	return domain.TierFree
}

// DailyLimit returns the tier's download allowance per day
func (q *QuotaGate) DailyLimit(tier domain.Tier) int {
	switch tier {
	case domain.TierPro:
		return q.limits.ProDownloads
	case domain.TierPremium:
		return q.limits.PremiumDownloads
	}
	return q.limits.FreeDownloads
}

// CanProceed checks the user's remaining daily quota. Admins are exempt.
func (q *QuotaGate) CanProceed(user *domain.User) error {
	tier := q.Tier(user)
	if tier == domain.TierAdmin {
		return nil
	}
	limit := q.DailyLimit(tier)
	if user.DownloadCount >= limit {
		return &domain.QuotaExceededError{Used: user.DownloadCount, Max: limit}
	}
	return nil
}

// Cooldown returns the wait the user must keep between transfers.
// Only the free tier is throttled.
func (q *QuotaGate) Cooldown(user *domain.User) time.Duration {
	if q.Tier(user) == domain.TierFree {
		return time.Duration(q.limits.CooldownSeconds) * time.Second
	}
	return 0
}

// FileSizeLimit returns the largest file the user may download
func (q *QuotaGate) FileSizeLimit(user *domain.User) int64 {
	return q.TierFileSize(q.Tier(user))
}

// TierFileSize returns the tier's per-file size ceiling in bytes
func (q *QuotaGate) TierFileSize(tier domain.Tier) int64 {
	switch tier {
	case domain.TierAdmin:
		return adminFileSize
	case domain.TierPro:
		return q.limits.ProFileSize
	case domain.TierPremium:
		return q.limits.PremiumFileSize
	}
	return q.limits.FreeFileSize
}

// Remaining returns how many downloads the user has left today, or
// UnlimitedDownloads for admins.
func (q *QuotaGate) Remaining(user *domain.User) int {
	tier := q.Tier(user)
	if tier == domain.TierAdmin {
		return UnlimitedDownloads
	}
	left := q.DailyLimit(tier) - user.DownloadCount
	if left < 0 {
		return 0
	}
	return left
}
