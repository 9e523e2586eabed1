package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/zecobranca/cobranca-bot/internal/model"
	"github.com/zecobranca/cobranca-bot/internal/service/responder"
	"github.com/zecobranca/cobranca-bot/internal/store"
	"github.com/zecobranca/cobranca-bot/pkg/message"
)

type stubSender struct {
	err   error
	sent  int
	texts []string
}

func (s *stubSender) Send(_ context.Context, to string, text string, instanceID string) error {
	s.sent++
	s.texts = append(s.texts, text)
	return s.err
}

type fixture struct {
	handler       echo.HandlerFunc
	sender        *stubSender
	conversations responder.ConversationStore
}

func newFixture(sendErr error) *fixture {
	conversations := store.NewMemoryStore()
	sender := &stubSender{err: sendErr}
	processor := responder.New(conversations, sender, "inst-test")
	return &fixture{
		handler:       Webhook(processor),
		sender:        sender,
		conversations: conversations,
	}
}

func (f *fixture) post(t *testing.T, body string) (int, map[string]interface{}) {
	t.Helper()

	server := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := f.handler(server.NewContext(req, rec))
	if err != nil {
		server.HTTPErrorHandler(err, server.NewContext(req, rec))
	}

	response := map[string]interface{}{}
	json.Unmarshal(rec.Body.Bytes(), &response)
	return rec.Code, response
}

func TestWebhookConversationFlow(t *testing.T) {
	assert := assert.New(t)

	fix := newFixture(nil)
	user := "5511999999999"

	t.Run("new user gets the menu", func(t *testing.T) {
		code, response := fix.post(t, `{"number": "`+user+`", "message": "Hello!"}`)
		assert.Equal(http.StatusOK, code)
		assert.Equal("Processed successfully", response["message"])
		assert.Equal("received", response["type"])

		state, err := fix.conversations.Load(user)
		assert.Nil(err)
		assert.Equal(model.StepMenu, state.Step)
		assert.Contains(fix.sender.texts[0], "1")
		assert.Contains(fix.sender.texts[0], "2")
	})

	t.Run("option 1 enters debt inquiry", func(t *testing.T) {
		code, _ := fix.post(t, `{"number": "`+user+`", "message": "1"}`)
		assert.Equal(http.StatusOK, code)

		state, err := fix.conversations.Load(user)
		assert.Nil(err)
		assert.Equal(model.StepDebtInquiry, state.Step)
		assert.Contains(fix.sender.texts[1], "Consultar Débito")
	})

	t.Run("document echoes back and asks to return", func(t *testing.T) {
		code, _ := fix.post(t, `{"number": "`+user+`", "message": "12345678900"}`)
		assert.Equal(http.StatusOK, code)

		state, err := fix.conversations.Load(user)
		assert.Nil(err)
		assert.Equal(model.StepDone, state.Step)
		assert.Contains(fix.sender.texts[2], "12345678900")
		assert.Contains(fix.sender.texts[2], "Deseja voltar ao menu?")
	})

	t.Run("sim returns to the menu", func(t *testing.T) {
		code, _ := fix.post(t, `{"number": "`+user+`", "message": "sim"}`)
		assert.Equal(http.StatusOK, code)

		state, err := fix.conversations.Load(user)
		assert.Nil(err)
		assert.Equal(model.StepMenu, state.Step)
		assert.Contains(fix.sender.texts[3], "Menu inicial:")
	})
}

func TestWebhookAckShortCircuits(t *testing.T) {
	assert := assert.New(t)

	fix := newFixture(nil)
	code, response := fix.post(t, `{"cmd": "ack", "ack": 2, "id": "x"}`)

	assert.Equal(http.StatusOK, code)
	assert.Equal("ACK received", response["message"])
	assert.Equal("delivered", response["description"])
	assert.Equal(0, fix.sender.sent)
}

func TestWebhookStatusEvents(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"charge status", `{"Type": "charge_status", "Status": 5}`, "Charge status received"},
		{"message status", `{"Type": "message_status", "Status": 1}`, "Message status received"},
		{"connection status", `{"Type": "connection_status", "Status": 0}`, "Connection status received"},
		{"group message", `{"Type": "group_message", "RemoteJid": "12036304@g.us", "Text": "oi"}`, "Group message received"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			fix := newFixture(nil)
			code, response := fix.post(t, tc.body)

			assert.Equal(http.StatusOK, code)
			assert.Equal(tc.message, response["message"])
			assert.Equal(0, fix.sender.sent)
		})
	}
}

func TestWebhookSendFailure(t *testing.T) {
	assert := assert.New(t)

	fix := newFixture(model.ErrorSendFailed)
	code, response := fix.post(t, `{"number": "551199", "message": "1"}`)

	assert.Equal(http.StatusBadRequest, code)
	assert.NotEmpty(response["error"])

	// Accepted behavior: the conversation still advanced.
	state, err := fix.conversations.Load("551199")
	assert.Nil(err)
	assert.Equal(model.StepDebtInquiry, state.Step)
}

func TestWebhookMalformedBody(t *testing.T) {
	assert := assert.New(t)

	fix := newFixture(nil)
	code, response := fix.post(t, `{{{not json`)

	assert.Equal(http.StatusOK, code)
	assert.Equal("Webhook received", response["message"])
	assert.Equal("unknown", response["type"])
	assert.Equal(0, fix.sender.sent)
}

func TestWebhookIgnoresReflectedReplies(t *testing.T) {
	assert := assert.New(t)

	fix := newFixture(nil)
	body := `{"type": "received", "from": "551199", "body": "Olá! Eu sou o ZéCobrança 🤖\nDigite:\n1️⃣ Consultar Débito\n2️⃣ Pagamento"}`
	code, response := fix.post(t, body)

	assert.Equal(http.StatusOK, code)
	assert.Equal("Message confirmation ignored", response["message"])
	assert.Equal(0, fix.sender.sent)
}

func TestWebhookSelfSent(t *testing.T) {
	assert := assert.New(t)

	fix := newFixture(nil)
	code, response := fix.post(t, `{"type": "received", "from": "551199", "body": "oi", "fromMe": true}`)

	assert.Equal(http.StatusOK, code)
	assert.Equal("Message confirmation ignored", response["message"])
	assert.Equal(0, fix.sender.sent)
}

type failingProcessor struct{}

func (failingProcessor) Process(context.Context, *message.Message) error {
	return errors.New("conversation table corrupted")
}

func TestWebhookUnrecoverableError(t *testing.T) {
	assert := assert.New(t)

	fix := &fixture{handler: Webhook(failingProcessor{})}
	code, response := fix.post(t, `{"number": "551199", "message": "1"}`)

	// Generic message only, internal detail stays in the logs.
	assert.Equal(http.StatusInternalServerError, code)
	assert.Equal("Internal Server Error", response["message"])
}

func TestHealth(t *testing.T) {
	assert := assert.New(t)

	server := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	err := Health()(server.NewContext(req, rec))
	assert.Nil(err)
	assert.Equal(http.StatusOK, rec.Code)

	response := map[string]interface{}{}
	json.Unmarshal(rec.Body.Bytes(), &response)
	assert.Equal("OK", response["status"])
	assert.Equal("cobranca-bot", response["service"])
	assert.NotZero(response["timestamp"])
}
