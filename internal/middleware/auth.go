package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"restrictedbot/internal/service"
)

// RequireAuth rejects updates from users without a linked account
func RequireAuth(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			if !authService.IsAuthenticated(userID) {
				logger.Debug("unauthenticated access rejected",
					zap.Int64("user_id", userID))
				return c.Send("You need to log in first. Use /start")
			}

			return next(c)
		}
	}
}

// RequireAdmin rejects updates from users outside the configured admin list
func RequireAdmin(adminIDs map[int64]bool, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			if !adminIDs[userID] {
				logger.Warn("admin command from non-admin",
					zap.Int64("user_id", userID),
					zap.String("text", c.Text()))
				return nil
			}

			return next(c)
		}
	}
}
