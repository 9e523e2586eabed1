// Package message normalizes the chat provider's webhook payloads into a
// single canonical shape. The provider delivers events in several formats:
// an array envelope wrapping the event object, a nested Body.Info structure,
// a simple number/message pair, and assorted flat status notifications.
// Parse never fails; unrecognizable input degrades to an unknown-category
// message so downstream stages always receive a well-formed value.
package message

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/zecobranca/cobranca-bot/internal/model"
)

type Category string

const (
	CategoryReceived         Category = "received"
	CategorySent             Category = "sent"
	CategoryAckUpdate        Category = "ack_update"
	CategoryChargeStatus     Category = "charge_status"
	CategoryMessageStatus    Category = "message_status"
	CategoryConnectionStatus Category = "connection_status"
	CategoryGroupMessage     Category = "group_message"
	CategoryUnknown          Category = "unknown"
)

// Message is the canonical, shape-independent form of one webhook event.
type Message struct {
	ID              string
	Sender          string
	Text            string
	Type            string // explicit provider type, lowercased, "" when absent
	Category        Category
	TimestampMillis int64
	FromSelf        bool
	AckCode         *int // 0-4, only for acknowledgement events
	StatusCode      *int // delivery/charge/connection status notifications
	InstanceID      string

	// ShouldProcess is set by Classify: true only for user messages that
	// warrant a conversation turn.
	ShouldProcess bool

	ackCommand  bool // payload carried the explicit "cmd":"ack" marker
	simpleShape bool // payload matched the number/message two-field format
}

// Parse normalizes a raw webhook body. It never returns an error: total
// parse failure yields a Message with empty fields and CategoryUnknown.
func Parse(raw []byte) *Message {
	m := &Message{Category: CategoryUnknown}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		Classify(m)
		return m
	}

	// Array envelope: the subject object sits at index 1.
	if trimmed[0] == '[' {
		var envelope []json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope) >= 2 {
			return Parse(envelope[1])
		}
		Classify(m)
		return m
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		Classify(m)
		return m
	}

	switch {
	case isNestedShape(fields):
		ev, ok := decodeNested(trimmed)
		if !ok {
			// Structural decode failed, scan the raw text instead.
			ev = scanNested(string(trimmed))
		}
		ev.apply(m)
	case isSimpleShape(fields):
		parseSimple(fields, m)
	default:
		parseFlat(trimmed, m)
	}

	Classify(m)
	return m
}

// isNestedShape reports whether the payload carries the provider's nested
// structure: a Body object wrapping an Info object.
func isNestedShape(fields map[string]json.RawMessage) bool {
	rawBody, ok := fields["Body"]
	if !ok {
		return false
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return false
	}
	_, ok = body["Info"]
	return ok
}

func isSimpleShape(fields map[string]json.RawMessage) bool {
	_, hasNumber := fields["number"]
	_, hasMessage := fields["message"]
	return hasNumber && hasMessage
}

// parseSimple handles {"number": "...", "message": "...", "quoted_message_id": "..."}.
func parseSimple(fields map[string]json.RawMessage, m *Message) {
	var simple struct {
		Number          string `json:"number"`
		Message         string `json:"message"`
		QuotedMessageID string `json:"quoted_message_id"`
	}
	raw, _ := json.Marshal(fields)
	if err := json.Unmarshal(raw, &simple); err != nil {
		return
	}

	m.Sender = cleanSender(simple.Number)
	m.Text = simple.Message
	m.Type = "received"
	m.TimestampMillis = time.Now().UnixMilli()
	m.simpleShape = true
	if simple.QuotedMessageID != "" {
		m.ID = simple.QuotedMessageID
	} else {
		m.ID = model.CreateID()
	}
}

// parseFlat handles payloads with top-level fields only: acknowledgement
// commands, status notifications and messages without the nested body.
// Field matching is case-insensitive, so both the provider's capitalized
// keys (Type, Id, RemoteJid) and plain lowercase ones resolve.
func parseFlat(raw []byte, m *Message) {
	var flat struct {
		Type       *string `json:"type"`
		ID         *string `json:"id"`
		From       *string `json:"from"`
		RemoteJid  *string `json:"remoteJid"`
		SenderJid  *string `json:"senderJid"`
		Text       *string `json:"text"`
		Body       *string `json:"body"`
		Message    *string `json:"message"`
		Cmd        *string `json:"cmd"`
		Ack        *int    `json:"ack"`
		Status     *int    `json:"status"`
		Timestamp  *int64  `json:"timestamp"`
		FromMe     *bool   `json:"fromMe"`
		InstanceID *string `json:"instanceId"`
	}
	if err := json.Unmarshal(raw, &flat); err != nil {
		return
	}

	m.Type = resolveType(flat.Type)
	m.Sender = resolveSender(flat.RemoteJid, flat.SenderJid, flat.From)
	m.Text = firstString(flat.Text, flat.Body, flat.Message)
	m.TimestampMillis = resolveTimestamp(flat.Timestamp)
	m.StatusCode = flat.Status
	m.AckCode = flat.Ack
	m.InstanceID = firstString(flat.InstanceID)
	if flat.FromMe != nil {
		m.FromSelf = *flat.FromMe
	}
	if flat.Cmd != nil && strings.EqualFold(*flat.Cmd, "ack") {
		m.ackCommand = true
		if m.AckCode == nil {
			m.AckCode = flat.Status
		}
	}

	m.ID = firstString(flat.ID)
	if m.ID == "" && (m.Sender != "" || m.Text != "" || m.Type != "" || m.AckCode != nil || m.StatusCode != nil) {
		m.ID = model.CreateID()
	}
}
