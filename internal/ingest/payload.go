package ingest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// InboundAttachment is a decoded attachment carried by an inbound payload
type InboundAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// InboundEmail is the provider-independent shape all ingestion paths
// normalize into before anything is persisted.
type InboundEmail struct {
	MessageID   string
	From        string
	FromName    string
	To          string
	Cc          string
	Bcc         string
	ReplyTo     string
	Subject     string
	TextContent string
	HTMLContent string
	Attachments []InboundAttachment
}

// address is one party in a provider payload. Providers deliver either a
// plain string ("Jane <jane@example.com>" or "jane@example.com") or an
// object ({"email": "...", "name": "..."}).
type address struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UnmarshalJSON accepts both the string and the object shape
func (a *address) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Name, a.Email = splitNameAddress(s)
		return nil
	}
	type plain address
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = address(p)
	return nil
}

// addressList is an ordered set of addresses. Providers deliver a single
// address, an array of addresses, or a comma-joined string.
type addressList []address

// UnmarshalJSON accepts a single address or an array of them
func (l *addressList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var addrs []address
		if err := json.Unmarshal(data, &addrs); err != nil {
			return err
		}
		*l = addrs
		return nil
	}
	var a address
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Email == "" {
		*l = nil
		return nil
	}
	// A comma-joined string is still a list.
	if strings.Contains(a.Email, ",") && a.Name == "" {
		var addrs []address
		for _, part := range strings.Split(a.Email, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, email := splitNameAddress(part)
			addrs = append(addrs, address{Email: email, Name: name})
		}
		*l = addrs
		return nil
	}
	*l = addressList{a}
	return nil
}

// join flattens the list into the comma-joined storage form
func (l addressList) join() string {
	parts := make([]string, 0, len(l))
	for _, a := range l {
		if a.Email != "" {
			parts = append(parts, a.Email)
		}
	}
	return strings.Join(parts, ", ")
}

// splitNameAddress splits "Name <addr>" into its parts. A bare address
// comes back with an empty name.
func splitNameAddress(s string) (name, email string) {
	s = strings.TrimSpace(s)
	open := strings.LastIndex(s, "<")
	close := strings.LastIndex(s, ">")
	if open >= 0 && close > open {
		name = strings.Trim(strings.TrimSpace(s[:open]), `"`)
		email = strings.TrimSpace(s[open+1 : close])
		return name, email
	}
	return "", s
}

// webhookPayload is the generic JSON webhook shape. Field aliases cover the
// common provider spellings.
type webhookPayload struct {
	MessageID   string              `json:"messageId"`
	From        addressList         `json:"from"`
	To          addressList         `json:"to"`
	Cc          addressList         `json:"cc"`
	Bcc         addressList         `json:"bcc"`
	ReplyTo     addressList         `json:"replyTo"`
	Subject     string              `json:"subject"`
	Text        string              `json:"text"`
	TextContent string              `json:"textContent"`
	HTML        string              `json:"html"`
	HTMLContent string              `json:"htmlContent"`
	Attachments []payloadAttachment `json:"attachments"`
}

type payloadAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"` // base64
}

// ParseJSONPayload normalizes a generic JSON webhook body into an
// InboundEmail. Malformed JSON is a parse error; missing required fields are
// caught later by Service.Ingest.
func ParseJSONPayload(body []byte) (*InboundEmail, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	inbound := &InboundEmail{
		MessageID:   p.MessageID,
		To:          p.To.join(),
		Cc:          p.Cc.join(),
		Bcc:         p.Bcc.join(),
		ReplyTo:     p.ReplyTo.join(),
		Subject:     p.Subject,
		TextContent: coalesce(p.Text, p.TextContent),
		HTMLContent: coalesce(p.HTML, p.HTMLContent),
	}
	if len(p.From) > 0 {
		inbound.From = p.From[0].Email
		inbound.FromName = p.From[0].Name
	}

	for _, att := range p.Attachments {
		if att.Content == "" {
			continue
		}
		content, err := base64.StdEncoding.DecodeString(att.Content)
		if err != nil {
			return nil, fmt.Errorf("malformed attachment %q: %w", att.Filename, err)
		}
		inbound.Attachments = append(inbound.Attachments, InboundAttachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Content:     content,
		})
	}

	return inbound, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
