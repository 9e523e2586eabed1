package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/zecobranca/cobranca-bot/internal/model"
	"github.com/zecobranca/cobranca-bot/pkg/message"
)

type WebhookProcessor interface {
	Process(ctx context.Context, m *message.Message) error
}

// Webhook accepts the provider's notifications. Every recognized event is
// acknowledged with 200 whether or not it triggers a conversation turn;
// only a failed reply maps to 400. Raw payloads are logged at debug level
// and never echoed back.
func Webhook(processor WebhookProcessor) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := c.Request().Body
		defer body.Close()

		rawRequest, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
		log.Debugf("webhook body: %s", rawRequest)

		m := message.Parse(rawRequest)
		log.Infof("webhook parsed: category=%s from=%s id=%s", m.Category, m.Sender, m.ID)

		switch m.Category {
		case message.CategoryAckUpdate:
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message":     "ACK received",
				"ack":         m.AckCode,
				"description": m.AckDescription(),
			})
		case message.CategoryChargeStatus:
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message": "Charge status received",
				"status":  m.StatusCode,
			})
		case message.CategoryMessageStatus:
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message": "Message status received",
				"status":  m.StatusCode,
			})
		case message.CategoryConnectionStatus:
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message": "Connection status received",
				"status":  m.StatusCode,
			})
		case message.CategoryGroupMessage:
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message": "Group message received",
				"from":    m.Sender,
			})
		}

		if !m.ShouldProcess {
			if m.Sender == "" {
				return c.JSON(http.StatusOK, map[string]interface{}{
					"message": "Webhook received",
					"type":    m.Category,
				})
			}
			if m.FromSelf || message.IsOwnReply(m.Text) {
				log.Infof("ignoring reflected message from %s to prevent echo loop", m.Sender)
				return c.JSON(http.StatusOK, map[string]interface{}{
					"message": "Message confirmation ignored",
					"type":    m.Category,
				})
			}
			return c.JSON(http.StatusOK, map[string]interface{}{
				"message": "System webhook received",
				"type":    m.Category,
			})
		}

		if err := processor.Process(c.Request().Context(), m); err != nil {
			if errors.Is(err, model.ErrorSendFailed) {
				log.Errorf("processing webhook for %s: %v", m.Sender, err)
				return c.JSON(http.StatusBadRequest, map[string]interface{}{
					"error": err.Error(),
				})
			}
			// Anything else is unrecoverable; the error handler turns it
			// into a generic 500.
			return fmt.Errorf("processing webhook: %w", err)
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "Processed successfully",
			"type":    m.Category,
		})
	}
}
