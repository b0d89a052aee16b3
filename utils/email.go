package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mailgun/mailgun-go/v3"
	"github.com/sirupsen/logrus"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// ZeptoMailer sends through the ZeptoMail HTTP API.
type ZeptoMailer struct {
	APIURL string // e.g. https://api.zeptomail.com/v1.1/email
	APIKey string // e.g. Zoho-enczapikey xxxxx
	From   string
	Client *http.Client
	Logger *logrus.Logger
}

func (z *ZeptoMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if z.APIURL == "" || z.APIKey == "" || z.From == "" {
		return fmt.Errorf("missing required email config")
	}

	payload := emailRequest{
		From:     emailAddress{Address: z.From},
		To:       []toRecipient{{Email: emailWithName{Address: to}}},
		Subject:  subject,
		HtmlBody: htmlBody,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", z.APIKey)

	client := z.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	if z.Logger != nil {
		z.Logger.WithField("to", to).Info("email sent")
	}
	return nil
}

// MailgunMailer sends through a Mailgun domain.
type MailgunMailer struct {
	mg   mailgun.Mailgun
	from string
}

func NewMailgunMailer(domain, apiKey, from string) *MailgunMailer {
	return &MailgunMailer{mg: mailgun.NewMailgun(domain, apiKey), from: from}
}

func (m *MailgunMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := m.mg.NewMessage(m.from, subject, "", to)
	message.SetHtml(htmlBody)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, _, err := m.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}

// LogMailer only logs outgoing mail. Used when no provider is configured.
type LogMailer struct {
	Logger *logrus.Logger
}

func (l LogMailer) Send(_ context.Context, to, subject, _ string) error {
	l.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Warn("email provider not configured, message dropped")
	return nil
}
