package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://graph.facebook.com/v20.0"

var ErrNotConfigured = errors.New("whatsapp: access token or phone number id not configured")

// Client talks to the WhatsApp Cloud (Graph) API for one business
// phone number.
type Client struct {
	HTTPClient    *http.Client
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
}

func NewClient(accessToken, phoneNumberID string) *Client {
	return &Client{
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		AccessToken:   accessToken,
		PhoneNumberID: phoneNumberID,
		BaseURL:       defaultBaseURL,
	}
}

// SendText delivers a plain text message to the given phone number.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if c.AccessToken == "" || c.PhoneNumberID == "" {
		return ErrNotConfigured
	}

	payload := sendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             messageText{Body: body},
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.BaseURL, c.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("whatsapp api error")
		return fmt.Errorf("whatsapp api: status %d", resp.StatusCode)
	}

	var result SendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("whatsapp response: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("whatsapp api: %s (code %d)", result.Error.Message, result.Error.Code)
	}

	log.Info().Str("to", to).Msg("whatsapp message sent")
	return nil
}
