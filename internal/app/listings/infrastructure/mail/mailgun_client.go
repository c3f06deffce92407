package mail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MailgunClient клиент REST API Mailgun для отправки писем
// Используется потоком сброса пароля
type MailgunClient struct {
	baseURL    string
	domain     string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewMailgunClient создает новый клиент Mailgun
func NewMailgunClient(baseURL, domain, apiKey, from string) *MailgunClient {
	return &MailgunClient{
		baseURL: baseURL,
		domain:  domain,
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send отправляет письмо через Mailgun Messages API
func (c *MailgunClient) Send(ctx context.Context, to string, subject string, body string) error {
	form := url.Values{}
	form.Set("from", c.from)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", body)

	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailgun returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
