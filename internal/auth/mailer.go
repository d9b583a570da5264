package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farhanmaulana/cetakin-backend/pkg/config"
	"github.com/farhanmaulana/cetakin-backend/pkg/logger"
)

// Mailer delivers sign-in links to buyers.
type Mailer interface {
	SendSignInLink(ctx context.Context, to, link string) error
}

// NewMailer picks the delivery backend from configuration. Without an API
// endpoint the link is only logged, which is what local development wants.
func NewMailer(cfg config.MailerConfig, logg *logger.Logger) (Mailer, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		if logg == nil {
			return nil, fmt.Errorf("mailer: logger is required for the log backend")
		}
		return &logMailer{logg: logg}, nil
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("mailer: api key is required when an api url is set")
	}
	return &httpMailer{
		httpClient: &http.Client{Timeout: defaultMailTimeout},
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		from:       cfg.DefaultFrom,
	}, nil
}

type logMailer struct {
	logg *logger.Logger
}

func (m *logMailer) SendSignInLink(ctx context.Context, to, link string) error {
	ctx = m.logg.WithFields(ctx, map[string]any{
		"to":   to,
		"link": link,
	})
	m.logg.Info(ctx, "sign-in link issued")
	return nil
}

const defaultMailTimeout = 15 * time.Second

type httpMailer struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	from       string
}

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m *httpMailer) SendSignInLink(ctx context.Context, to, link string) error {
	body, err := json.Marshal(mailRequest{
		From:    m.from,
		To:      to,
		Subject: "Your Cetakin sign-in link",
		HTML:    signInLinkHTML(link),
	})
	if err != nil {
		return fmt.Errorf("encoding mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}

func signInLinkHTML(link string) string {
	return `<p>Tap the button below to sign in to Cetakin. The link expires shortly and can be used once.</p>` +
		`<p><a href="` + link + `">Sign in</a></p>`
}
