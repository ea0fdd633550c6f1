package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/domain"
	"restrictedbot/internal/progress"
	"restrictedbot/internal/service"
)

// handleText routes free-form text by conversation state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	switch h.GetState(userID).Stage {
	case domain.StageAwaitingPhone:
		return h.handlePhoneText(c, text)
	case domain.StageAwaitingCode:
		return h.handleCodeText(c, text)
	case domain.StageAwaitingPassword:
		return h.handlePasswordText(c, text)
	case domain.StageAwaitingTransaction:
		return h.handleTransactionText(c, text)
	case domain.StageAwaitingBroadcast:
		return h.handleBroadcastText(c, text)
	}

	if _, err := domain.ParseLink(text); err == nil {
		return h.handleDownload(c, text)
	}

	return c.Send("Send me a message link, or use /help to see what I can do.")
}

// handleDownload runs one download, live-editing a status message
func (h *Handler) handleDownload(c tele.Context, link string) error {
	userID := c.Sender().ID

	if !h.authService.IsAuthenticated(userID) {
		return c.Send("You need to log in first. Use /start", mainMenuMarkup(false))
	}

	status, err := h.bot.Send(c.Recipient(), "⏳ Fetching...")
	if err != nil {
		h.logger.Warn("failed to send status message", zap.Error(err))
	}

	tracker := progress.NewTracker()
	done := make(chan struct{})
	go h.editProgress(status, tracker, done)

	result, err := h.transferService.Download(context.Background(), userID, link, tracker)
	tracker.Close()
	<-done

	if status != nil {
		_ = h.bot.Delete(status)
	}

	if err != nil {
		h.logger.Info("Download failed",
			zap.Int64("user_id", userID),
			zap.String("link", link),
			zap.Error(err),
		)
		return c.Send(errorText(err))
	}

	h.logger.Info("Download finished",
		zap.Int64("user_id", userID),
		zap.String("file", result.FileName),
		zap.Int64("size", result.FileSize),
	)
	if result.Remaining == service.UnlimitedDownloads {
		return c.Send("✅ Done!")
	}
	return c.Send(fmt.Sprintf("✅ Done! %d downloads left today.", result.Remaining))
}

// editProgress consumes tracker updates and edits the status message.
// The tracker drops updates rather than waiting, so a slow edit here
// never stalls the download.
func (h *Handler) editProgress(status *tele.Message, tracker *progress.Tracker, done chan<- struct{}) {
	defer close(done)
	for update := range tracker.Updates() {
		if status == nil {
			continue
		}
		text := "⬇️ " + update.String()
		if edited, err := h.bot.Edit(status, text); err == nil {
			status = edited
		}
	}
}

// handleForward handles /forward <link>: the message is copied through the
// user's account instead of being downloaded, so no size ceiling applies
func (h *Handler) handleForward(c tele.Context) error {
	userID := c.Sender().ID

	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /forward <link>\nCopies the message to you without downloading it.")
	}
	link := args[0]

	if err := h.transferService.Forward(context.Background(), userID, link); err != nil {
		h.logger.Info("Forward failed",
			zap.Int64("user_id", userID),
			zap.String("link", link),
			zap.Error(err),
		)
		return c.Send(errorText(err))
	}
	return c.Send("✅ Forwarded.")
}

// handleBatch handles /batch <link> <count>
func (h *Handler) handleBatch(c tele.Context) error {
	userID := c.Sender().ID

	args := c.Args()
	if len(args) < 1 {
		return c.Send("Usage: /batch <link> <count>\nFetches the messages that follow the linked one.")
	}

	link := args[0]
	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return c.Send("The count must be a positive number.")
		}
		count = n
	}

	if err := c.Send(fmt.Sprintf("⏳ Fetching up to %d messages...", count)); err != nil {
		h.logger.Warn("failed to send status message", zap.Error(err))
	}

	result, err := h.transferService.Batch(context.Background(), userID, link, count)
	if err != nil {
		h.logger.Info("Batch failed",
			zap.Int64("user_id", userID),
			zap.String("link", link),
			zap.Error(err),
		)
		return c.Send(errorText(err))
	}

	return c.Send(fmt.Sprintf("✅ Batch finished: %d of %d messages delivered.",
		result.Succeeded, result.Requested))
}
