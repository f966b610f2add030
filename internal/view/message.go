package view

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// MessageKind selects the styling of a message.
type MessageKind string

const (
	KindSuccess MessageKind = "success"
	KindError   MessageKind = "error"
	KindWarning MessageKind = "warning"
)

// Message is a transient notice.  With SlotID set it is rendered next to
// that slot's controls, otherwise as a page banner.
type Message struct {
	Kind   MessageKind `json:"k"`
	Text   string      `json:"t"`
	SlotID model.ID    `json:"s,omitempty"`
}

// Success returns a success message.
func Success(text string) *Message { return &Message{Kind: KindSuccess, Text: text} }

// Failure returns an error message, optionally attached to a slot.
func Failure(text string, slotID model.ID) *Message {
	return &Message{Kind: KindError, Text: text, SlotID: slotID}
}

// Warning returns a warning message.
func Warning(text string) *Message { return &Message{Kind: KindWarning, Text: text} }

// maxMessageLen bounds the text taken from a cookie, in bytes.
const maxMessageLen = 500

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Encode serializes m for a cookie value.
func (m Message) Encode() string {
	b, _ := json.Marshal(m)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeMessage parses an encoded message.  Anything malformed yields
// nil: the value comes from the browser and is not trusted.
func DecodeMessage(raw string) *Message {
	if raw == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var m Message
	if err := json.Unmarshal(b, &m); err != nil || m.Text == "" {
		return nil
	}
	switch m.Kind {
	case KindSuccess, KindError, KindWarning:
	default:
		return nil
	}
	m.Text = clip(m.Text, maxMessageLen)
	return &m
}
