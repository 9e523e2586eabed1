package message

import (
	"encoding/json"
	"strings"

	"github.com/zecobranca/cobranca-bot/internal/model"
)

// Transport suffixes the provider appends to identifiers: direct chats,
// group chats and contact-store entries.
var senderSuffixes = []string{"@s.whatsapp.net", "@g.us", "@c.us"}

// millisThreshold separates second-scale from millisecond-scale timestamps.
const millisThreshold = int64(1_000_000_000_000)

// nestedEvent is the provider's full event structure. Every field is a
// pointer so the resolvers can tell absent from zero.
type nestedEvent struct {
	Type       *string     `json:"Type"`
	ID         *string     `json:"Id"`
	RemoteJid  *string     `json:"RemoteJid"`
	SenderJid  *string     `json:"SenderJid"`
	Text       *string     `json:"Text"`
	Timestamp  *int64      `json:"Timestamp"`
	FromMe     *bool       `json:"FromMe"`
	Status     *int        `json:"Status"`
	InstanceID *string     `json:"InstanceId"`
	Body       *nestedBody `json:"Body"`
}

type nestedBody struct {
	Info *nestedInfo `json:"Info"`
	Text *string     `json:"Text"`
}

type nestedInfo struct {
	ID        *string `json:"Id"`
	RemoteJid *string `json:"RemoteJid"`
	SenderJid *string `json:"SenderJid"`
	PushName  *string `json:"PushName"`
	Timestamp *int64  `json:"Timestamp"`
	FromMe    *bool   `json:"FromMe"`
	Status    *int    `json:"Status"`
}

// decodeNested attempts the strict structural parse of the nested shape.
// It fails when the JSON does not decode or the Body.Info block is absent,
// in which case the caller runs the tolerant scanner instead.
func decodeNested(raw []byte) (*nestedEvent, bool) {
	ev := &nestedEvent{}
	if err := json.Unmarshal(raw, ev); err != nil {
		return nil, false
	}
	if ev.Body == nil || ev.Body.Info == nil {
		return nil, false
	}
	return ev, true
}

func (ev *nestedEvent) info() *nestedInfo {
	if ev.Body == nil || ev.Body.Info == nil {
		return &nestedInfo{}
	}
	return ev.Body.Info
}

func (ev *nestedEvent) bodyText() *string {
	if ev.Body == nil {
		return nil
	}
	return ev.Body.Text
}

// apply resolves every canonical field from the event. Each field follows a
// fixed precedence chain where the nested Body.Info value beats the
// top-level one.
func (ev *nestedEvent) apply(m *Message) {
	info := ev.info()

	m.Type = resolveType(ev.Type)
	m.Sender = resolveSender(info.RemoteJid, info.SenderJid, ev.RemoteJid, ev.SenderJid)
	m.Text = firstString(ev.bodyText(), ev.Text)
	m.TimestampMillis = resolveTimestamp(info.Timestamp, ev.Timestamp)
	m.StatusCode = firstInt(info.Status, ev.Status)
	m.InstanceID = firstString(ev.InstanceID)
	if fromMe := firstBool(info.FromMe, ev.FromMe); fromMe != nil {
		m.FromSelf = *fromMe
	}

	m.ID = firstString(info.ID, ev.ID)
	if m.ID == "" {
		m.ID = model.CreateID()
	}
}

// resolveSender picks the highest-precedence non-empty identifier and only
// then strips the transport suffix. Cleaning never applies to a candidate
// that loses the precedence race.
func resolveSender(candidates ...*string) string {
	return cleanSender(firstString(candidates...))
}

func cleanSender(sender string) string {
	for _, suffix := range senderSuffixes {
		sender = strings.ReplaceAll(sender, suffix, "")
	}
	return sender
}

func resolveType(typ *string) string {
	if typ == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*typ))
}

// resolveTimestamp normalizes to milliseconds: second-scale values get
// multiplied by 1000, millisecond-scale ones pass through.
func resolveTimestamp(candidates ...*int64) int64 {
	for _, c := range candidates {
		if c == nil || *c == 0 {
			continue
		}
		if *c < millisThreshold {
			return *c * 1000
		}
		return *c
	}
	return 0
}

func firstString(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return ""
}

func firstInt(candidates ...*int) *int {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func firstBool(candidates ...*bool) *bool {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
