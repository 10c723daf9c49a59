package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/auth-service/internal/secret"
	"github.com/jrsteele09/auth-service/users"
)

const (
	MessageStream      = "outbound"
	PostmarkAuthHeader = "X-Postmark-Server-Token"
	DefaultTimeout     = 10 * time.Second
)

type sendEmailRequest struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HtmlBody      string `json:"HtmlBody"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

var _ Client = (*PostmarkClient)(nil)

// PostmarkClient sends mail through the Postmark HTTP API.
type PostmarkClient struct {
	httpClient *http.Client
	endpoint   string
	sender     users.Email
	authToken  secret.String
}

type PostmarkOption func(*PostmarkClient)

func WithHTTPClient(c *http.Client) PostmarkOption {
	return func(p *PostmarkClient) {
		p.httpClient = c
	}
}

func NewPostmarkClient(baseURL string, sender users.Email, authToken secret.String, opts ...PostmarkOption) (*PostmarkClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[NewPostmarkClient] parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("[NewPostmarkClient] base url %q must be absolute", baseURL)
	}
	if authToken.IsEmpty() {
		return nil, fmt.Errorf("[NewPostmarkClient] auth token is required")
	}

	p := &PostmarkClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		endpoint:   base.JoinPath("email").String(),
		sender:     sender,
		authToken:  authToken,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *PostmarkClient) SendEmail(ctx context.Context, recipient users.Email, subject, content string) error {
	body, err := json.Marshal(sendEmailRequest{
		From:          p.sender.String(),
		To:            recipient.String(),
		Subject:       subject,
		HtmlBody:      content,
		TextBody:      content,
		MessageStream: MessageStream,
	})
	if err != nil {
		return fmt.Errorf("[PostmarkClient.SendEmail] encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("[PostmarkClient.SendEmail] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(PostmarkAuthHeader, p.authToken.Expose())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[PostmarkClient.SendEmail] send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("[PostmarkClient.SendEmail] postmark returned %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	log.Debug().Str("subject", subject).Msg("email sent")
	return nil
}
