package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultMailgunBaseURL = "https://api.mailgun.net"

	verifySubject  = "Verify Your Email"
	verifyTemplate = "verify-email"
)

type MailgunConfig struct {
	APIKey  string
	Domain  string
	From    string
	BaseURL string // defaults to DefaultMailgunBaseURL
}

type MailgunMailer struct {
	cfg    MailgunConfig
	client *http.Client
}

func NewMailgunMailer(cfg MailgunConfig) (*MailgunMailer, error) {
	if cfg.APIKey == "" || cfg.Domain == "" {
		return nil, errors.New("mailgun api key and domain are required")
	}
	if cfg.From == "" {
		cfg.From = "Accounts <no-reply@" + cfg.Domain + ">"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMailgunBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &MailgunMailer{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

// SendVerification renders the stored "verify-email" template with the code
// and the recipient address as the greeting name.
func (m *MailgunMailer) SendVerification(ctx context.Context, to, code string) error {
	return m.send(ctx, to, verifySubject, verifyTemplate, map[string]string{
		"code":     code,
		"username": to,
	})
}

func (m *MailgunMailer) send(ctx context.Context, to, subject, template string, vars map[string]string) error {
	form := url.Values{}
	form.Set("from", m.cfg.From)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("template", template)
	for k, v := range vars {
		form.Set("v:"+k, v)
	}

	endpoint := fmt.Sprintf("%s/v3/%s/messages", m.cfg.BaseURL, url.PathEscape(m.cfg.Domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mailgun: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
