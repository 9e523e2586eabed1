// Package chatpro is the outbound boundary: it delivers replies through the
// provider's send_message endpoint.
package chatpro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zecobranca/cobranca-bot/internal/model"
)

const sendTimeout = 10 * time.Second

type sendRequest struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

func New(baseURL string, apiToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: sendTimeout},
		baseURL:    baseURL,
		apiToken:   apiToken,
	}
}

// Send posts a text message to the recipient through the given provider
// instance. A non-2xx response or transport failure comes back as a wrapped
// model.ErrorSendFailed, never a panic.
func (c *Client) Send(ctx context.Context, to string, text string, instanceID string) error {
	payload, err := json.Marshal(sendRequest{Number: to, Message: text})
	if err != nil {
		return fmt.Errorf("marshalling send request: %w", err)
	}

	url := fmt.Sprintf("%s%s/api/v1/send_message", c.baseURL, instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating send request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("Authorization", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", model.ErrorSendFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: provider returned %d", model.ErrorSendFailed, resp.StatusCode)
	}

	return nil
}
