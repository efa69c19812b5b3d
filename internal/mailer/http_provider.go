package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// httpProvider talks to a JSON delivery API (Resend-style: POST /emails with
// a bearer key).
type httpProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider creates a Provider backed by an HTTP delivery API
func NewHTTPProvider(baseURL, apiKey string, client *http.Client) Provider {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Name implements Provider
func (p *httpProvider) Name() string {
	return "http"
}

type httpSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type httpSendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send implements Provider
func (p *httpProvider) Send(ctx context.Context, msg *OutgoingEmail) (string, error) {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	body, err := json.Marshal(httpSendRequest{
		From:    from,
		To:      splitAddresses(msg.To),
		Cc:      splitAddresses(msg.Cc),
		Bcc:     splitAddresses(msg.Bcc),
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var parsed httpSendResponse
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := parsed.Message
		if detail == "" {
			detail = strings.TrimSpace(string(respBody))
		}
		return "", fmt.Errorf("delivery API returned %d: %s", resp.StatusCode, detail)
	}

	return parsed.ID, nil
}

// splitAddresses turns a comma-joined address list into a slice
func splitAddresses(joined string) []string {
	if joined == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
