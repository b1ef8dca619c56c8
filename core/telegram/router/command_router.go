package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/finbot/core/logger"
	tg "github.com/m3rciful/finbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures owner gating for restricted commands.
type CommandRouteOptions struct {
	IsOwner       func(userID int64) bool
	OnOwnerReject tele.HandlerFunc
}

// CommandRoutes prepares slash-command routes from the registry.
// Owner-only commands are rejected inline before the handler runs.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		handler := def.Handler
		if handler == nil {
			continue
		}
		if def.OwnerOnly {
			handler = ownerGate(handler, opts)
		}
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  wrapCommand(name, handler),
		})
	}

	logger.Info(logger.Background(), "tg", "tg.wire",
		slog.String("status", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

func wrapCommand(name string, h tele.HandlerFunc) tele.HandlerFunc {
	handlerName := normalizeHandlerName(name)
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, handlerName, start, func() error {
			return h(c)
		})
	}
}

func ownerGate(next tele.HandlerFunc, opts CommandRouteOptions) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender != nil && opts.IsOwner != nil && opts.IsOwner(sender.ID) {
			return next(c)
		}
		if opts.OnOwnerReject != nil {
			return opts.OnOwnerReject(c)
		}
		return nil
	}
}
