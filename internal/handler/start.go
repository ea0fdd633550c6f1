package handler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/domain"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.ResetState(userID)

	if !h.authService.IsAuthenticated(userID) {
		return c.Send(
			"👋 Welcome!\n\n"+
				"I can fetch media from restricted channels your account has joined.\n\n"+
				"To get started, log in with your own Telegram account. "+
				"Your credentials go straight to Telegram, never to us.",
			mainMenuMarkup(false),
		)
	}

	return c.Send(
		"🏠 Main menu\n\n"+
			"Send me a message link to download its media:\n"+
			"• https://t.me/channel/123\n"+
			"• https://t.me/c/1234567/89\n\n"+
			"Use /batch <link> <n> for the next n messages, /help for everything else.",
		mainMenuMarkup(true),
	)
}

// handleHelp handles /help command
func (h *Handler) handleHelp(c tele.Context) error {
	help := "📖 Commands\n\n" +
		"Send a message link to download its media.\n\n" +
		"/start — main menu\n" +
		"/me — your plan and remaining downloads\n" +
		"/batch <link> <n> — fetch the n messages after the link\n" +
		"/forward <link> — copy a message without downloading\n" +
		"/premium — upgrade your plan\n" +
		"/logout — unlink your account\n" +
		"/cancel — abort the current operation"

	if h.isAdmin(c.Sender().ID) {
		help += "\n\nAdmin:\n" +
			"/stats — system statistics\n" +
			"/payments — pending payments\n" +
			"/approve <id> — approve a payment\n" +
			"/grant <user> <tier> — assign a tier\n" +
			"/revoke <user> — drop to free\n" +
			"/broadcast — message all users"
	}
	return c.Send(help)
}

// handleProfile shows the user's tier and remaining quota
func (h *Handler) handleProfile(c tele.Context) error {
	userID := c.Sender().ID

	user, err := h.authService.User(userID)
	if err != nil {
		h.logger.Error("Failed to load user", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(errorText(err))
	}

	tier := h.quotas.Tier(user)
	limit := h.quotas.DailyLimit(tier)

	var b strings.Builder
	fmt.Fprintf(&b, "👤 Your profile\n\n")
	fmt.Fprintf(&b, "Plan: %s\n", tierLabel(tier))
	if tier == domain.TierAdmin {
		fmt.Fprintf(&b, "Downloads today: %d (unlimited)\n", user.DownloadCount)
	} else {
		fmt.Fprintf(&b, "Downloads today: %d of %d\n", user.DownloadCount, limit)
	}
	fmt.Fprintf(&b, "Max file size: %.0f MB\n", float64(h.quotas.FileSizeLimit(user))/1024/1024)
	if user.SubscriptionExpiry != nil && user.HasPaidTier() {
		fmt.Fprintf(&b, "Subscription ends: %s\n", user.SubscriptionExpiry.Format("2 Jan 2006"))
	}

	total, size, err := h.premiumService.UserStats(userID)
	if err == nil {
		fmt.Fprintf(&b, "\nAll time: %d downloads, %.1f MB", total, float64(size)/1024/1024)
	}

	return c.Send(b.String())
}

func tierLabel(tier domain.Tier) string {
	switch tier {
	case domain.TierAdmin:
		return "👑 Admin"
	case domain.TierPro:
		return "🚀 Pro"
	case domain.TierPremium:
		return "⭐ Premium"
	}
	return "Free"
}

// handleVerify re-checks membership of the required channels
func (h *Handler) handleVerify(c tele.Context) error {
	userID := c.Sender().ID

	if len(h.channels) == 0 {
		return c.Send("No channel membership is required. You're all set!")
	}

	ok, missing, err := h.sessionService.VerifyChannels(context.Background(), userID, h.channels)
	if err != nil {
		h.logger.Error("Channel verification failed", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(errorText(err))
	}

	if !ok {
		return c.Send(
			"❗ You still need to join:\n"+strings.Join(missing, "\n"),
			verifyMarkup(),
		)
	}

	h.rememberVerified(userID)
	return c.Send("✅ All channels verified. Send me a link!")
}

func (h *Handler) rememberVerified(userID int64) {
	// Best effort; verification is re-checked from the remote side anyway.
	if err := h.authService.SetChannelsVerified(userID); err != nil {
		h.logger.Warn("failed to store verification flag",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

func verifyMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnVerify))
	return markup
}
