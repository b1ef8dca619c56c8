// Package app assembles the bot: ledger client, access policy, dialogue
// machine, and their wiring into the Telegram runtime.
package app

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/finbot/core/buildinfo"
	coreconfig "github.com/m3rciful/finbot/core/config"
	coretelegram "github.com/m3rciful/finbot/core/telegram"
	"github.com/m3rciful/finbot/core/telegram/callbacks"
	"github.com/m3rciful/finbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/finbot/core/telegram/helpers"
	"github.com/m3rciful/finbot/core/telegram/middleware"
	"github.com/m3rciful/finbot/core/telegram/router"
	"github.com/m3rciful/finbot/internal/access"
	"github.com/m3rciful/finbot/internal/dialog"
	"github.com/m3rciful/finbot/internal/ledger"
)

const (
	noticeDenied  = "Sorry, this is a private bot 🙂"
	noticeTrouble = "Oops, something went wrong 🙈 Let's try again?"
	noticeStale   = "That button is out of date, press /start"
	noticeLost    = "I work through the buttons 🙂 Press /start"

	helpText = "I keep the books for the shop 📒\n\n" +
		"➕ Add transaction — record income and expenses\n" +
		"📊 Analysis — reports and breakdowns (owners only)\n" +
		"💰 Check balance — cash / QR / bank (owners only)\n" +
		"💳 Debts — owed to me and my debts (owners only)\n\n" +
		"/start — main menu\n" +
		"/help — this message\n\n" +
		"Everything else happens through the buttons."
)

// callbackKeys are the button namespaces the dialogue machine understands.
var callbackKeys = []string{
	"menu", "type", "expcat", "inccat", "payment", "comment",
	"aperiod", "atype", "special", "balance", "debts_type", "debts", "back",
}

// App owns the long-lived bot components.
type App struct {
	policy  *access.Policy
	machine *dialog.Machine
}

// New builds the application from configuration.
func New(cfg *coreconfig.Config) *App {
	client := ledger.NewClient(ledger.Options{
		URL:     cfg.Ledger.URL,
		Timeout: time.Duration(cfg.Ledger.TimeoutSeconds) * time.Second,
	})
	store := dialog.NewStore()
	return &App{
		policy:  access.NewPolicy(cfg.Access.AllowedIDs, cfg.Access.OwnerIDs),
		machine: dialog.NewMachine(store, client),
	}
}

// Bootstrap returns the Telegram run options: registry, middlewares, routes.
func Bootstrap(cfg *coreconfig.Config) (coretelegram.RunOptions, error) {
	a := New(cfg)

	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)

	mws := coretelegram.DefaultMiddlewares(cfg, coretelegram.MiddlewareOptions{
		PanicNotice: noticeTrouble,
		Access: &middleware.AccessOptions{
			Gate:     a.policy,
			DenyText: noticeDenied,
		},
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsOwner: cfg.Access.IsOwner,
	})
	routes = append(routes,
		router.CallbackRoute(reg, router.CallbackOptions{}),
		router.TextRoute(a, reg, router.TextOptions{}),
	)

	return coretelegram.RunOptions{
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
	}, nil
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Main menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler: func(c tele.Context) error {
			return tghelpers.SendHTML(c, helpText)
		},
		Description: "How the bot works",
	})
	reg.RegisterCommand("/version", commands.Command{
		Handler: func(c tele.Context) error {
			return tghelpers.SendText(c, versionLine())
		},
		Description: "Build information",
		OwnerOnly:   true,
		Hidden:      true,
	})
}

func versionLine() string {
	line := "finbot " + buildinfo.Version + " (" + buildinfo.Commit + ")"
	if buildinfo.Date != "" {
		line += " built " + buildinfo.Date
	}
	return line
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	for _, key := range callbackKeys {
		// The key is re-joined with the payload so the machine sees the
		// same "key:value" string the keyboard was built from.
		k := key
		_ = reg.RegisterCallback(k, func(c tele.Context) error {
			payload := callbacks.CallbackPayload(c)
			return a.dispatch(c, func(ctx context.Context, role access.Role, out dialog.Outbox) error {
				return a.machine.Press(ctx, c.Sender().ID, role, k+":"+payload, out)
			})
		})
	}
	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: noticeStale})
	})
	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, noticeLost)
	})
}

func (a *App) handleStart(c tele.Context) error {
	return a.dispatch(c, func(ctx context.Context, role access.Role, out dialog.Outbox) error {
		return a.machine.Start(ctx, c.Sender().ID, role, out)
	})
}

// InProgress reports whether the user's next text message belongs to a flow.
// Part of the text router's Conversation contract.
func (a *App) InProgress(userID int64) bool {
	return a.machine.ExpectsText(userID)
}

// Resume feeds a text message into the user's in-flight flow.
func (a *App) Resume(c tele.Context) error {
	return a.dispatch(c, func(ctx context.Context, role access.Role, out dialog.Outbox) error {
		return a.machine.Text(ctx, c.Sender().ID, role, c.Text(), out)
	})
}

// dispatch runs one machine event with the update's context, role, and
// outbox. Machine errors mean a contract violation (stale or forged input),
// not a user mistake: the user gets the generic notice and the error goes
// up to the router for logging.
func (a *App) dispatch(c tele.Context, fn func(ctx context.Context, role access.Role, out dialog.Outbox) error) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	role := a.policy.RoleOf(sender.ID)
	if err := fn(ctx, role, newOutbox(c)); err != nil {
		_ = tghelpers.SendText(c, noticeTrouble)
		return err
	}
	return nil
}
