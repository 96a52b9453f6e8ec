package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/propertyplus/propertyplus/internal/env"
)

// webhookMailer hands mail off to an external delivery service via a JSON
// POST. Useful when outbound SMTP is blocked and delivery runs through an
// internal relay.
type webhookMailer struct {
	config     env.MailerConfig
	httpClient *http.Client
}

func newWebhookMailer(config env.MailerConfig) *webhookMailer {
	return &webhookMailer{config: config, httpClient: &http.Client{}}
}

type webhookMailPayload struct {
	From     string   `json:"from"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	HtmlBody string   `json:"htmlBody"`
	TextBody string   `json:"textBody"`
}

func (m *webhookMailer) Send(ctx context.Context, mail Mail) error {
	payload := webhookMailPayload{
		From:     m.config.FromAddress.String(),
		To:       mail.To,
		Subject:  mail.Subject,
		HtmlBody: mail.HtmlBody,
		TextBody: mail.TextBody,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.WebhookConfig.URL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := m.config.WebhookConfig.AuthToken; token != nil {
		req.Header.Set("Authorization", "Bearer "+*token)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send mail via webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return checkStatus(resp)
}

func checkStatus(r *http.Response) error {
	if 200 <= r.StatusCode && r.StatusCode < 300 {
		return nil
	}
	if errorBody, err := io.ReadAll(r.Body); err == nil {
		if errorBodyStr := strings.TrimSpace(string(errorBody)); errorBodyStr != "" {
			return fmt.Errorf("webhook returned %v (%v)", r.Status, errorBodyStr)
		}
	}
	return fmt.Errorf("webhook returned %v", r.Status)
}
