package dialog

// MsgRef is an opaque handle to a transport message. The machine only ever
// passes it back to the Outbox that produced it.
type MsgRef any

// Button is one inline key. Data is the full callback payload ("key:value").
type Button struct {
	Label string
	Data  string
}

// Keyboard is rows of buttons, transport-agnostic.
type Keyboard [][]Button

// Outbox is the machine's entire view of the messaging transport.
// It is scoped to the chat of the event being processed.
type Outbox interface {
	// Send posts a new message and returns its handle.
	Send(text string, kb Keyboard) (MsgRef, error)
	// Edit replaces an existing message's text and keyboard.
	Edit(ref MsgRef, text string, kb Keyboard) error
	// Delete removes a message. Best-effort: failures are swallowed
	// by the implementation and never reported.
	Delete(ref MsgRef)
	// DeleteInbound removes the user message that triggered the current
	// event. Best-effort, like Delete.
	DeleteInbound()
	// Alert shows a non-blocking notice (callback answer popup).
	Alert(text string)
}
