package domain

import "time"

// Tier is a user's subscription level
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
	TierAdmin   Tier = "admin"
)

// User represents a bot user with a linked Telegram account
type User struct {
	UserID             int64
	PhoneNumber        string
	SessionFile        string
	IsActive           bool
	IsAdmin            bool
	IsPremium          bool
	IsPro              bool
	DownloadCount      int
	DailyReset         time.Time
	ChannelsVerified   bool
	LastUsed           time.Time
	CreatedAt          time.Time
	SubscriptionExpiry *time.Time
}

// SubscriptionExpired reports whether the user's paid tier has lapsed
func (u *User) SubscriptionExpired(now time.Time) bool {
	return u.SubscriptionExpiry != nil && now.After(*u.SubscriptionExpiry)
}

// HasPaidTier reports whether the user is on premium or pro
func (u *User) HasPaidTier() bool {
	return u.IsPremium || u.IsPro
}

// AuthStage represents a step of the login conversation
type AuthStage string

const (
	StageIdle             AuthStage = "idle"
	StageAwaitingPhone    AuthStage = "awaiting_phone"
	StageAwaitingCode     AuthStage = "awaiting_code"
	StageAwaitingPassword AuthStage = "awaiting_password"

	StageAwaitingTransaction AuthStage = "awaiting_transaction"
	StageAwaitingBroadcast   AuthStage = "awaiting_broadcast"
)

// StateData is the in-memory conversation state kept per user
type StateData struct {
	Stage  AuthStage
	Tier   Tier
	Method string
}
