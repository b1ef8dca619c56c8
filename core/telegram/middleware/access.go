package middleware

import tele "gopkg.in/telebot.v4"

// Gate answers whether a user identity may interact with the bot at all.
type Gate interface {
	Allowed(userID int64) bool
}

// AccessOptions configures the allow-list gate.
type AccessOptions struct {
	Gate Gate
	// DenyText is sent (or shown as a callback alert) to rejected users.
	DenyText string
}

// AccessMiddleware rejects every update whose sender is not on the allow-list.
// Rejected users get the fixed denial text and no session or state is touched
// downstream.
func AccessMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return nil
			}
			if opts.Gate == nil || opts.Gate.Allowed(user.ID) {
				return next(c)
			}
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: opts.DenyText, ShowAlert: true})
			}
			return c.Send(opts.DenyText)
		}
	}
}
