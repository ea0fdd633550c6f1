package handler

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/domain"
)

// handleLogin starts the account linking conversation
func (h *Handler) handleLogin(c tele.Context) error {
	userID := c.Sender().ID

	if h.authService.IsAuthenticated(userID) {
		return c.Send("You're already logged in. Use /logout first if you want to switch accounts.")
	}

	h.SetState(userID, &domain.StateData{Stage: domain.StageAwaitingPhone})

	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact("📱 Share my number")))

	return c.Send(
		"Send me your phone number in international format (like +15551234567), "+
			"or tap the button below.",
		markup,
	)
}

// handleContact handles a shared contact during login
func (h *Handler) handleContact(c tele.Context) error {
	userID := c.Sender().ID

	if h.GetState(userID).Stage != domain.StageAwaitingPhone {
		return nil
	}

	contact := c.Message().Contact
	if contact == nil || contact.UserID != userID {
		return c.Send("Please share your own contact, not someone else's.")
	}

	phone := contact.PhoneNumber
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return h.startLogin(c, phone)
}

func (h *Handler) handlePhoneText(c tele.Context, text string) error {
	return h.startLogin(c, text)
}

func (h *Handler) startLogin(c tele.Context, phone string) error {
	userID := c.Sender().ID

	err := h.authService.StartLogin(context.Background(), userID, phone)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPhone) {
			return c.Send("That phone number doesn't look right. Use international format, like +15551234567.")
		}
		h.logger.Error("Failed to start login", zap.Error(err), zap.Int64("user_id", userID))
		h.ResetState(userID)
		return c.Send(errorText(err), &tele.ReplyMarkup{RemoveKeyboard: true})
	}

	h.SetState(userID, &domain.StateData{Stage: domain.StageAwaitingCode})
	return c.Send(
		"📨 Telegram just sent a login code to that account.\n\n"+
			"Type it here with spaces between the digits (like `1 2 3 4 5`), "+
			"otherwise Telegram may void the code.",
		&tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: cancelMarkup()},
	)
}

func (h *Handler) handleCodeText(c tele.Context, text string) error {
	userID := c.Sender().ID

	err := h.authService.SubmitCode(context.Background(), userID, text)
	switch {
	case err == nil:
		h.ResetState(userID)
		return h.afterLogin(c)
	case errors.Is(err, domain.ErrTwoFactorRequired):
		h.SetState(userID, &domain.StateData{Stage: domain.StageAwaitingPassword})
		return c.Send("🔐 This account has two-step verification. Send me your password.", cancelMarkup())
	case errors.Is(err, domain.ErrInvalidCode):
		return c.Send("That code isn't right. Try again, digits only.", cancelMarkup())
	case errors.Is(err, domain.ErrCodeExpired):
		h.ResetState(userID)
		return c.Send("The code expired. Start over with /start.")
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrConnectionLost):
		h.ResetState(userID)
		return c.Send(errorText(err))
	}

	h.logger.Error("Code verification failed", zap.Error(err), zap.Int64("user_id", userID))
	h.ResetState(userID)
	return c.Send(errorText(err))
}

func (h *Handler) handlePasswordText(c tele.Context, text string) error {
	userID := c.Sender().ID

	// The password just flashed by in the chat history.
	if err := c.Delete(); err != nil {
		h.logger.Debug("could not delete password message", zap.Error(err))
	}

	err := h.authService.SubmitPassword(context.Background(), userID, text)
	switch {
	case err == nil:
		h.ResetState(userID)
		return h.afterLogin(c)
	case errors.Is(err, domain.ErrInvalidCode):
		return c.Send("Wrong password. Try again.", cancelMarkup())
	case errors.Is(err, domain.ErrSessionExpired), errors.Is(err, domain.ErrConnectionLost):
		h.ResetState(userID)
		return c.Send(errorText(err))
	}

	h.logger.Error("Password verification failed", zap.Error(err), zap.Int64("user_id", userID))
	h.ResetState(userID)
	return c.Send(errorText(err))
}

func (h *Handler) afterLogin(c tele.Context) error {
	if len(h.channels) > 0 {
		return c.Send(
			"✅ Logged in!\n\nOne more step: join these channels, then tap the button.\n"+
				strings.Join(h.channels, "\n"),
			verifyMarkup(),
		)
	}
	return c.Send("✅ Logged in! Send me a message link to get started.", mainMenuMarkup(true))
}

// handleLogout unlinks the account. The subscription survives a logout.
func (h *Handler) handleLogout(c tele.Context) error {
	userID := c.Sender().ID

	if err := h.authService.Logout(userID); err != nil {
		h.logger.Error("Logout failed", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(errorText(err))
	}

	h.ResetState(userID)
	return c.Send("👋 Account unlinked. Your subscription, if any, stays on your profile.")
}

// handleCancel aborts whatever conversation is in flight
func (h *Handler) handleCancel(c tele.Context) error {
	userID := c.Sender().ID

	h.authService.Cancel(userID)
	h.ResetState(userID)
	return c.Send("Cancelled.", mainMenuMarkup(h.authService.IsAuthenticated(userID)))
}
