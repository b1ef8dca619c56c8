package app

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/finbot/core/telegram/helpers"
	"github.com/m3rciful/finbot/core/telegram/keyboard"
	"github.com/m3rciful/finbot/core/telegram/middleware"
	"github.com/m3rciful/finbot/internal/dialog"
)

// teleOutbox adapts one Telegram update's context to the dialog Outbox.
// Message handles are *tele.Message values.
type teleOutbox struct {
	c tele.Context
}

func newOutbox(c tele.Context) *teleOutbox {
	return &teleOutbox{c: c}
}

func (o *teleOutbox) Send(text string, kb dialog.Keyboard) (dialog.MsgRef, error) {
	msg, err := o.c.Bot().Send(o.c.Recipient(), text, sendOptions(kb))
	if err != nil {
		return nil, err
	}
	middleware.CountMessage(o.c, len(kb) > 0)
	return msg, nil
}

func (o *teleOutbox) Edit(ref dialog.MsgRef, text string, kb dialog.Keyboard) error {
	msg, ok := ref.(*tele.Message)
	if !ok || msg == nil {
		return errors.New("app: edit target is not a message")
	}
	_, err := o.c.Bot().Edit(msg, text, sendOptions(kb))
	if err == nil {
		middleware.CountMessage(o.c, len(kb) > 0)
	}
	return err
}

func (o *teleOutbox) Delete(ref dialog.MsgRef) {
	msg, ok := ref.(*tele.Message)
	if !ok || msg == nil {
		return
	}
	tghelpers.DeleteAsync(o.c, msg)
}

func (o *teleOutbox) DeleteInbound() {
	msg := o.c.Message()
	if msg == nil || o.c.Callback() != nil {
		return
	}
	tghelpers.DeleteAsync(o.c, msg)
}

func (o *teleOutbox) Alert(text string) {
	if o.c.Callback() == nil {
		_ = o.c.Send(text)
		return
	}
	_ = o.c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

func sendOptions(kb dialog.Keyboard) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markupFor(kb),
	}
}

// markupFor converts a dialog keyboard to inline markup. Button data is
// "key:value"; key becomes the callback unique so the registry can route it.
func markupFor(kb dialog.Keyboard) *tele.ReplyMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(kb))
	for _, row := range kb {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			unique, data, _ := strings.Cut(b.Data, ":")
			btns = append(btns, keyboard.InlineBtn{
				Text:   b.Label,
				Unique: unique,
				Data:   data,
			})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineRows(rows...)
}
