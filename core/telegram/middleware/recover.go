package middleware

import (
	"runtime/debug"

	"github.com/m3rciful/finbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
// The user gets the notice text (when non-empty) and keeps whatever dialogue
// state they were in, so the same input can simply be re-issued.
func RecoverMiddleware(notice string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.TG.Error("panic recovered",
						slog.String("event", "tg.panic"),
						slog.Any("err", r),
						slog.String("stack", string(debug.Stack())),
					)
					if notice != "" {
						_ = c.Send(notice)
					}
				}
			}()
			return next(c)
		}
	}
}
