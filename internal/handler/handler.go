package handler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/middleware"
	"restrictedbot/internal/service"
)

// Handler manages all bot interactions
type Handler struct {
	bot             *tele.Bot
	authService     *service.AuthService
	sessionService  *service.SessionService
	transferService *service.TransferService
	premiumService  *service.PremiumService
	quotas          *service.QuotaGate
	channels        []string
	adminIDs        map[int64]bool
	logger          *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	sessionService *service.SessionService,
	transferService *service.TransferService,
	premiumService *service.PremiumService,
	quotas *service.QuotaGate,
	channels []string,
	adminIDs []int64,
	logger *zap.Logger,
) *Handler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &Handler{
		bot:             bot,
		authService:     authService,
		sessionService:  sessionService,
		transferService: transferService,
		premiumService:  premiumService,
		quotas:          quotas,
		channels:        channels,
		adminIDs:        admins,
		logger:          logger,
		states:          make(map[int64]*domain.StateData),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	requireAuth := middleware.RequireAuth(h.authService, h.logger)
	requireAdmin := middleware.RequireAdmin(h.adminIDs, h.logger)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleHelp)
	h.bot.Handle("/cancel", h.handleCancel)
	h.bot.Handle("/logout", h.handleLogout, requireAuth)
	h.bot.Handle("/me", h.handleProfile, requireAuth)
	h.bot.Handle("/batch", h.handleBatch, requireAuth)
	h.bot.Handle("/forward", h.handleForward, requireAuth)
	h.bot.Handle("/premium", h.handlePremium)

	// Admin commands
	h.bot.Handle("/stats", h.handleStats, requireAdmin)
	h.bot.Handle("/broadcast", h.handleBroadcast, requireAdmin)
	h.bot.Handle("/payments", h.handlePayments, requireAdmin)
	h.bot.Handle("/approve", h.handleApprove, requireAdmin)
	h.bot.Handle("/grant", h.handleGrant, requireAdmin)
	h.bot.Handle("/revoke", h.handleRevoke, requireAdmin)

	// Messages
	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnContact, h.handleContact)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnLogin, h.handleLogin)
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnVerify, h.handleVerify, requireAuth)
	h.bot.Handle(&btnProfile, h.handleProfile, requireAuth)
	h.bot.Handle(&btnPremium, h.handlePremium)
	h.bot.Handle(&btnBuyPremium, h.handleBuy)
	h.bot.Handle(&btnBuyPro, h.handleBuy)
	h.bot.Handle(&btnPayMethod, h.handlePayMethod)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{Stage: domain.StageIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{Stage: domain.StageIdle})
}

func (h *Handler) isAdmin(userID int64) bool {
	return h.adminIDs[userID]
}

// Inline keyboard buttons
var (
	btnLogin = tele.Btn{
		Unique: "login",
		Text:   "🔑 Log in",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Cancel",
	}
	btnVerify = tele.Btn{
		Unique: "verify",
		Text:   "✅ I joined the channels",
	}
	btnProfile = tele.Btn{
		Unique: "profile",
		Text:   "👤 My profile",
	}
	btnPremium = tele.Btn{
		Unique: "premium",
		Text:   "⭐ Premium",
	}
	btnBuyPremium = tele.Btn{
		Unique: "buy_premium",
		Text:   "⭐ Premium — $5/month",
	}
	btnBuyPro = tele.Btn{
		Unique: "buy_pro",
		Text:   "🚀 Pro — $15/month",
	}
	btnPayMethod = tele.Btn{
		Unique: "pay_method",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup(authenticated bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	if !authenticated {
		menu.Inline(
			menu.Row(btnLogin),
			menu.Row(btnPremium),
		)
		return menu
	}
	menu.Inline(
		menu.Row(btnProfile),
		menu.Row(btnPremium),
	)
	return menu
}

func cancelMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancel))
	return markup
}

// errorText maps service errors to user-facing replies
func errorText(err error) string {
	var (
		quota     *domain.QuotaExceededError
		cooldown  *domain.CooldownError
		tooLarge  *domain.FileTooLargeError
		denied    *domain.AccessDeniedError
		limited   *domain.RateLimitedError
		unresolvd *domain.PeerUnresolvedError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidLink):
		return "That doesn't look like a message link. Send something like https://t.me/channel/123"
	case errors.Is(err, domain.ErrAuthRequired):
		return "You need to log in first. Use /start"
	case errors.Is(err, domain.ErrSessionExpired):
		return "Your session has expired. Please log in again with /start"
	case errors.Is(err, domain.ErrNoMediaFound):
		return "No downloadable media found in that message"
	case errors.Is(err, domain.ErrAlreadyInProgress):
		return "⏳ You already have a transfer running. Wait for it to finish"
	case errors.Is(err, domain.ErrConnectionLost):
		return "Connection lost. Please try again"
	case errors.As(err, &quota):
		return fmt.Sprintf("📛 Daily limit reached (%d/%d). Upgrade with /premium or come back tomorrow",
			quota.Used, quota.Max)
	case errors.As(err, &cooldown):
		return fmt.Sprintf("🕐 Please wait %s before the next download", cooldown.Remaining.Round(time.Second))
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("📦 File is too big for your plan (%.1f MB, limit %.1f MB). See /premium",
			float64(tooLarge.Size)/1024/1024, float64(tooLarge.Limit)/1024/1024)
	case errors.As(err, &denied):
		return "🚫 " + capitalize(denied.Reason)
	case errors.As(err, &limited):
		return fmt.Sprintf("Telegram is rate limiting us. Try again in %s", limited.RetryAfter)
	case errors.As(err, &unresolvd):
		return "Couldn't access that chat. Make sure your account has joined it"
	}
	return "Something went wrong. Please try again later"
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
