package message

import "strings"

// Fragments of the bot's own canned replies. The provider reflects sent
// messages back through the webhook; anything matching one of these must
// never be processed as user input or the bot answers itself forever.
var ownReplyMarkers = []string{
	"Eu sou o ZéCobrança",
	"Menu inicial:",
	"Você escolheu Consultar Débito",
	"Você escolheu Pagamento",
	"Consulta realizada com sucesso",
	"Pagamento realizado com sucesso",
	"Deseja voltar ao menu? (sim/nao)",
	"Obrigado! Até logo",
}

var ackDescriptions = map[int]string{
	0: "clock",
	1: "sent",
	2: "delivered",
	3: "read",
	4: "played",
}

// Classify assigns the category and the processing decision. It only reads
// resolved fields, so classifying the same message twice is a no-op.
func Classify(m *Message) {
	m.Category = categoryOf(m)
	m.ShouldProcess = shouldProcess(m)
}

// categoryOf applies the detection precedence, first match wins.
func categoryOf(m *Message) Category {
	switch {
	case m.ackCommand || m.AckCode != nil:
		return CategoryAckUpdate
	case m.Type == "receveid_message": // provider ships this misspelling
		return CategoryReceived
	case m.Type != "":
		return Category(m.Type)
	case m.Sender != "" && strings.TrimSpace(m.Text) != "":
		return CategoryReceived
	case m.simpleShape:
		return CategoryReceived
	case m.FromSelf:
		return CategorySent
	default:
		return CategoryUnknown
	}
}

func shouldProcess(m *Message) bool {
	return m.Category == CategoryReceived &&
		m.Sender != "" &&
		strings.TrimSpace(m.Text) != "" &&
		!m.FromSelf &&
		!IsOwnReply(m.Text)
}

// IsOwnReply reports whether text looks like one of the bot's own replies.
func IsOwnReply(text string) bool {
	for _, marker := range ownReplyMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// AckDescription names the delivery stage an acknowledgement code stands for.
func (m *Message) AckDescription() string {
	if m.AckCode == nil {
		return ""
	}
	if desc, ok := ackDescriptions[*m.AckCode]; ok {
		return desc
	}
	return "unknown"
}
