package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

// kvContext is a minimal tele.Context carrying only the Get/Set store the
// counters live in. Everything else panics if touched.
type kvContext struct {
	tele.Context
	values map[string]any
}

func newKVContext() *kvContext {
	return &kvContext{values: make(map[string]any)}
}

func (c *kvContext) Get(key string) any        { return c.values[key] }
func (c *kvContext) Set(key string, value any) { c.values[key] = value }

func TestCountMessage(t *testing.T) {
	c := newKVContext()

	CountMessage(c, false)
	CountMessage(c, false)
	msgs, kb := GetCounters(c)
	if msgs != 2 || kb {
		t.Errorf("counters = (%d, %v), want (2, false)", msgs, kb)
	}

	CountMessage(c, true)
	msgs, kb = GetCounters(c)
	if msgs != 3 || !kb {
		t.Errorf("counters = (%d, %v), want (3, true)", msgs, kb)
	}
}

func TestGetCountersEmpty(t *testing.T) {
	msgs, kb := GetCounters(newKVContext())
	if msgs != 0 || kb {
		t.Errorf("counters = (%d, %v), want zero values", msgs, kb)
	}
}

func TestHasKeyboard(t *testing.T) {
	if hasKeyboard([]interface{}{&tele.SendOptions{}}) {
		t.Error("send options without markup must not count as keyboard")
	}
	if !hasKeyboard([]interface{}{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}) {
		t.Error("send options with markup must count as keyboard")
	}
	if !hasKeyboard([]interface{}{&tele.ReplyMarkup{}}) {
		t.Error("bare markup must count as keyboard")
	}
	if hasKeyboard(nil) {
		t.Error("no options, no keyboard")
	}
}
