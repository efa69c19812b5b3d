package ingest

import (
	"io"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParseMIME normalizes a raw RFC 822 message (webhook raw-MIME bodies and
// inbound SMTP deliveries) into an InboundEmail.
func ParseMIME(r io.Reader) (*InboundEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	inbound := &InboundEmail{
		MessageID:   strings.Trim(env.GetHeader("Message-Id"), "<>"),
		Subject:     env.GetHeader("Subject"),
		TextContent: env.Text,
		HTMLContent: env.HTML,
		To:          headerAddresses(env, "To"),
		Cc:          headerAddresses(env, "Cc"),
		Bcc:         headerAddresses(env, "Bcc"),
		ReplyTo:     headerAddresses(env, "Reply-To"),
	}
	inbound.FromName, inbound.From = splitNameAddress(env.GetHeader("From"))

	for _, att := range env.Attachments {
		inbound.Attachments = append(inbound.Attachments, InboundAttachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Content:     att.Content,
		})
	}
	// Inline parts with a filename count as attachments too.
	for _, att := range env.Inlines {
		if att.FileName == "" {
			continue
		}
		inbound.Attachments = append(inbound.Attachments, InboundAttachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Content:     att.Content,
		})
	}

	return inbound, nil
}

// headerAddresses flattens an address header into the comma-joined storage
// form, falling back to the raw header when it does not parse
func headerAddresses(env *enmime.Envelope, header string) string {
	addrs, err := env.AddressList(header)
	if err != nil || len(addrs) == 0 {
		return strings.TrimSpace(env.GetHeader(header))
	}
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, a.Address)
	}
	return strings.Join(parts, ", ")
}
