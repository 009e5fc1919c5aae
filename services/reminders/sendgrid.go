package reminders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kapostolos1/estia-app/pkg/config"
)

const sendGridBaseURL = "https://api.sendgrid.com"

// SendGridMailer sends reminder emails through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey     string
	from       string
	fromName   string
	baseURL    string
	httpClient *http.Client
}

func NewSendGridMailer(cfg *config.Config) *SendGridMailer {
	return &SendGridMailer{
		apiKey:     cfg.SendGrid.APIKey,
		from:       cfg.SendGrid.From,
		fromName:   cfg.SendGrid.FromName,
		baseURL:    sendGridBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgMail struct {
	Personalizations []struct {
		To []sgAddress `json:"to"`
	} `json:"personalizations"`
	From    sgAddress `json:"from"`
	Subject string    `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (m *SendGridMailer) SendRenewalReminder(ctx context.Context, toEmail, toName string, endsAt time.Time) error {
	greeting := "Hello"
	if toName != "" {
		greeting = "Hello " + toName
	}

	body := fmt.Sprintf(
		"%s,\n\nYour subscription expires on %s. Renew now to keep your booking calendar open.\n",
		greeting, endsAt.Format("Monday, 2 January 2006 at 15:04 MST"),
	)

	mail := sgMail{
		From:    sgAddress{Email: m.from, Name: m.fromName},
		Subject: "Your subscription expires in 24 hours",
	}
	mail.Personalizations = []struct {
		To []sgAddress `json:"to"`
	}{{To: []sgAddress{{Email: toEmail, Name: toName}}}}
	mail.Content = []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{{Type: "text/plain", Value: body}}

	payload, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("failed to encode reminder mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
