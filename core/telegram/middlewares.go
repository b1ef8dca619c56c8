package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/finbot/core/config"
	"github.com/m3rciful/finbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions configures the shared middleware chain.
type MiddlewareOptions struct {
	// PanicNotice is sent to the chat when a handler panics. Empty disables it.
	PanicNotice string
	// Access gates every update; nil disables access control.
	Access *middleware.AccessOptions
	// OnLimited is invoked for rate-limited updates.
	OnLimited tele.HandlerFunc
}

// DefaultMiddlewares builds the global chain: recover, access, rate limit,
// logger, metrics. Order matters: access runs before any handler logic,
// the logger tags the context before metrics wrap the reply surface.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware(opts.PanicNotice)},
	}

	if opts.Access != nil {
		mws = append(mws, Middleware{
			Name: "access",
			Use:  middleware.AccessMiddleware(*opts.Access),
		})
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			rlOpts := middleware.RateLimitOptions{
				Interval:  interval,
				Exclude:   ex,
				OnLimited: opts.OnLimited,
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use:  middleware.RateLimitMiddleware(rlOpts),
			})
		}
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	return mws
}
