package handler

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/domain"
)

// handleStats shows aggregate system statistics
func (h *Handler) handleStats(c tele.Context) error {
	stats, err := h.premiumService.SystemStats()
	if err != nil {
		h.logger.Error("Failed to load system stats", zap.Error(err))
		return c.Send(errorText(err))
	}

	return c.Send(fmt.Sprintf(
		"📊 System stats\n\n"+
			"Users: %d (%d active)\n"+
			"Premium: %d, Pro: %d, Admins: %d\n"+
			"Downloads: %d (%.1f GB)\n"+
			"Pending payments: %d",
		stats.TotalUsers, stats.ActiveUsers,
		stats.PremiumUsers, stats.ProUsers, stats.AdminUsers,
		stats.TotalDownloads, float64(stats.TotalSize)/1024/1024/1024,
		stats.PendingPayments,
	))
}

// handlePayments lists payments awaiting review
func (h *Handler) handlePayments(c tele.Context) error {
	pending, err := h.premiumService.PendingPayments()
	if err != nil {
		h.logger.Error("Failed to list pending payments", zap.Error(err))
		return c.Send(errorText(err))
	}

	if len(pending) == 0 {
		return c.Send("No pending payments.")
	}

	var b strings.Builder
	b.WriteString("💰 Pending payments\n\n")
	for _, p := range pending {
		fmt.Fprintf(&b, "#%d — user %d, $%.0f via %s, ref %s (%s)\n",
			p.ID, p.UserID, p.Amount, methodLabel(p.Method), p.TransactionID,
			p.CreatedAt.Format("2 Jan 15:04"))
	}
	b.WriteString("\nApprove with /approve <id>")
	return c.Send(b.String())
}

// handleApprove handles /approve <payment id>
func (h *Handler) handleApprove(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /approve <payment id>")
	}
	paymentID, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Send("The payment id must be a number.")
	}

	userID, tier, err := h.premiumService.ApprovePayment(paymentID)
	if err != nil {
		h.logger.Error("Failed to approve payment",
			zap.Error(err),
			zap.Int("payment_id", paymentID),
		)
		return c.Send(errorText(err))
	}

	if _, err := h.bot.Send(tele.ChatID(userID),
		fmt.Sprintf("🎉 Your payment was approved! You're now on %s for 30 days.", tierLabel(tier)),
	); err != nil {
		h.logger.Warn("failed to notify user of approval",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	return c.Send(fmt.Sprintf("✅ Payment #%d approved, user %d is now %s.",
		paymentID, userID, tierLabel(tier)))
}

// handleGrant handles /grant <user id> <premium|pro>
func (h *Handler) handleGrant(c tele.Context) error {
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Usage: /grant <user id> <premium|pro>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("The user id must be a number.")
	}

	tier := domain.Tier(strings.ToLower(args[1]))
	if tier != domain.TierPremium && tier != domain.TierPro {
		return c.Send("The tier must be premium or pro.")
	}

	if err := h.premiumService.GrantTier(userID, tier); err != nil {
		h.logger.Error("Failed to grant tier", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(errorText(err))
	}
	return c.Send(fmt.Sprintf("✅ User %d is now %s for 30 days.", userID, tierLabel(tier)))
}

// handleRevoke handles /revoke <user id>
func (h *Handler) handleRevoke(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /revoke <user id>")
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("The user id must be a number.")
	}

	if err := h.premiumService.RevokeTier(userID); err != nil {
		h.logger.Error("Failed to revoke tier", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(errorText(err))
	}
	return c.Send(fmt.Sprintf("✅ User %d is back on the free plan.", userID))
}

// handleBroadcast asks for the message to send to everyone
func (h *Handler) handleBroadcast(c tele.Context) error {
	h.SetState(c.Sender().ID, &domain.StateData{Stage: domain.StageAwaitingBroadcast})
	return c.Send("Send me the message to broadcast to all users, or /cancel.", cancelMarkup())
}

// handleBroadcastText sends the pending broadcast
func (h *Handler) handleBroadcastText(c tele.Context, text string) error {
	userID := c.Sender().ID
	h.ResetState(userID)

	if !h.isAdmin(userID) {
		return nil
	}

	if err := c.Send("📣 Broadcasting..."); err != nil {
		h.logger.Warn("failed to send status message", zap.Error(err))
	}

	sent, failed, err := h.premiumService.Broadcast(text)
	if err != nil {
		h.logger.Error("Broadcast failed", zap.Error(err))
		return c.Send(errorText(err))
	}
	return c.Send(fmt.Sprintf("✅ Broadcast done: %d delivered, %d failed.", sent, failed))
}
