package handler

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/service"
)

// handlePremium shows the available plans
func (h *Handler) handlePremium(c tele.Context) error {
	text := "⭐ Plans\n\n" +
		fmt.Sprintf("Free: %s\n", h.planLine(domain.TierFree)) +
		fmt.Sprintf("Premium ($%.0f/month): %s\n", service.PremiumPrice, h.planLine(domain.TierPremium)) +
		fmt.Sprintf("Pro ($%.0f/month): %s\n\n", service.ProPrice, h.planLine(domain.TierPro)) +
		"Paid plans also skip the cooldown between downloads."

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnBuyPremium),
		markup.Row(btnBuyPro),
	)
	return c.Send(text, markup)
}

// planLine renders a tier's configured allowances so the advertised numbers
// always match what the quota gate enforces
func (h *Handler) planLine(tier domain.Tier) string {
	return fmt.Sprintf("%d downloads/day, files up to %d MB",
		h.quotas.DailyLimit(tier), h.quotas.TierFileSize(tier)/1024/1024)
}

// handleBuy reacts to a plan button and offers payment methods
func (h *Handler) handleBuy(c tele.Context) error {
	userID := c.Sender().ID

	tier := domain.TierPremium
	if c.Callback() != nil && strings.Contains(c.Callback().Unique, "pro") {
		tier = domain.TierPro
	}

	methods := h.premiumService.PaymentMethods()
	if len(methods) == 0 {
		return c.Send("Payments aren't set up yet. Contact the admin directly.")
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for name := range methods {
		btn := markup.Data(methodLabel(name), btnPayMethod.Unique, string(tier)+":"+name)
		rows = append(rows, markup.Row(btn))
	}
	markup.Inline(rows...)

	price, err := service.PriceFor(tier)
	if err != nil {
		return c.Send(errorText(err))
	}

	h.SetState(userID, &domain.StateData{Stage: domain.StageIdle, Tier: tier})
	return c.Send(
		fmt.Sprintf("%s costs $%.0f per month. Pick a payment method:", tierLabel(tier), price),
		markup,
	)
}

// handlePayMethod shows the payment address and waits for a transaction id
func (h *Handler) handlePayMethod(c tele.Context) error {
	userID := c.Sender().ID

	data := ""
	if c.Callback() != nil {
		data = strings.TrimSpace(c.Callback().Data)
	}
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return c.Send("Something went wrong. Start over with /premium.")
	}
	tier, method := domain.Tier(parts[0]), parts[1]

	address, ok := h.premiumService.PaymentMethods()[method]
	if !ok {
		return c.Send("That payment method is no longer available. Start over with /premium.")
	}

	h.SetState(userID, &domain.StateData{
		Stage:  domain.StageAwaitingTransaction,
		Tier:   tier,
		Method: method,
	})

	price, err := service.PriceFor(tier)
	if err != nil {
		return c.Send(errorText(err))
	}

	return c.Send(
		fmt.Sprintf("Send $%.0f via %s to:\n\n`%s`\n\n"+
			"Then reply here with the transaction ID or reference number.",
			price, methodLabel(method), address),
		&tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: cancelMarkup()},
	)
}

// handleTransactionText records the submitted payment for admin review
func (h *Handler) handleTransactionText(c tele.Context, text string) error {
	userID := c.Sender().ID
	state := h.GetState(userID)

	err := h.premiumService.SubmitPayment(userID, state.Method, state.Tier, text)
	if err != nil {
		h.logger.Error("Failed to submit payment",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		h.ResetState(userID)
		return c.Send(errorText(err))
	}

	h.ResetState(userID)
	h.notifyAdmins(fmt.Sprintf("💰 New payment claim from %d: %s via %s, ref %s",
		userID, tierLabel(state.Tier), methodLabel(state.Method), text))

	return c.Send(
		"🕐 Thanks! Your payment is awaiting review. " +
			"You'll get a message as soon as it's approved.",
	)
}

func (h *Handler) notifyAdmins(text string) {
	for adminID := range h.adminIDs {
		if _, err := h.bot.Send(tele.ChatID(adminID), text); err != nil {
			h.logger.Debug("failed to notify admin",
				zap.Int64("admin_id", adminID),
				zap.Error(err))
		}
	}
}

func methodLabel(method string) string {
	switch method {
	case "mtn":
		return "MTN Mobile Money"
	case "vodafone":
		return "Vodafone Cash"
	case "bitcoin":
		return "Bitcoin"
	case "usdt":
		return "USDT (TRC20)"
	}
	return method
}
