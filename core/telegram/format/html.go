package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats specially.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// B wraps text in bold tags, escaping the content first.
func B(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Code wraps text in inline-code tags, escaping the content first.
func Code(text string) string {
	return "<code>" + EscapeHTML(text) + "</code>"
}
