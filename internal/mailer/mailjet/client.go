package mailjet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wonny/marketbrief/internal/brief"
	"github.com/wonny/marketbrief/pkg/config"
	"github.com/wonny/marketbrief/pkg/httputil"
	"github.com/wonny/marketbrief/pkg/logger"
)

const providerName = "mailjet"

// Client submits email through the Mailjet v3.1 send API
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	apiKey    string
	apiSecret string
	baseURL   string
	fromEmail string
	fromName  string
}

// NewClient creates a new Mailjet client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		apiKey:     cfg.Mailjet.APIKey,
		apiSecret:  cfg.Mailjet.APISecret,
		baseURL:    cfg.Mailjet.BaseURL,
		fromEmail:  cfg.Mailjet.FromEmail,
		fromName:   cfg.Mailjet.FromName,
	}
}

// Mailjet v3.1 send API wire types

type address struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type message struct {
	From     address   `json:"From"`
	To       []address `json:"To"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart"`
	HTMLPart string    `json:"HTMLPart,omitempty"`
}

type sendRequest struct {
	Messages []message `json:"Messages"`
}

type sendResponse struct {
	Messages []messageResult `json:"Messages"`
}

type messageResult struct {
	Status string `json:"Status"`
	Errors []struct {
		ErrorMessage string `json:"ErrorMessage"`
	} `json:"Errors"`
}

// Send submits one message addressed to all recipients.
// Any failure is terminal for the run; there is no local queuing.
func (c *Client) Send(ctx context.Context, msg brief.Message) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return &brief.DeliveryError{Provider: providerName, Op: "send", Err: fmt.Errorf("missing API credentials")}
	}
	if len(msg.Recipients) == 0 {
		return &brief.DeliveryError{Provider: providerName, Op: "send", Err: fmt.Errorf("no recipients configured")}
	}

	to := make([]address, 0, len(msg.Recipients))
	for _, r := range msg.Recipients {
		to = append(to, address{Email: r})
	}

	payload := sendRequest{
		Messages: []message{{
			From:     address{Email: c.fromEmail, Name: c.fromName},
			To:       to,
			Subject:  msg.Subject,
			TextPart: msg.TextBody,
			HTMLPart: msg.HTMLBody,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &brief.DeliveryError{Provider: providerName, Op: "send", Err: fmt.Errorf("marshal payload: %w", err)}
	}

	url := c.baseURL + "/v3.1/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &brief.DeliveryError{Provider: providerName, Op: "send", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return &brief.DeliveryError{Provider: providerName, Op: "send", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &brief.DeliveryError{
			Provider: providerName,
			Op:       "send",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &brief.DeliveryError{Provider: providerName, Op: "send", Err: fmt.Errorf("decode response: %w", err)}
	}

	// A 200 can still carry per-message rejections
	for _, m := range result.Messages {
		if m.Status != "success" {
			errMsg := "message rejected"
			if len(m.Errors) > 0 {
				errMsg = m.Errors[0].ErrorMessage
			}
			return &brief.DeliveryError{
				Provider: providerName,
				Op:       "send",
				Status:   resp.StatusCode,
				Err:      fmt.Errorf("message status %q: %s", m.Status, errMsg),
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"recipients": len(msg.Recipients),
		"subject":    msg.Subject,
	}).Info("Email delivered")

	return nil
}
