package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// smtpProvider relays outbound mail through an SMTP submission endpoint,
// for deployments without an HTTP delivery API.
type smtpProvider struct {
	addr     string
	helo     string
	username string
	password string
}

// NewSMTPProvider creates a Provider that relays through an SMTP server
func NewSMTPProvider(addr, helo, username, password string) Provider {
	return &smtpProvider{
		addr:     addr,
		helo:     helo,
		username: username,
		password: password,
	}
}

// Name implements Provider
func (p *smtpProvider) Name() string {
	return "smtp"
}

// Send implements Provider. The message id is generated locally since SMTP
// relays do not return one.
func (p *smtpProvider) Send(ctx context.Context, msg *OutgoingEmail) (string, error) {
	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), p.helo)

	raw, err := buildRawMessage(messageID, msg)
	if err != nil {
		return "", err
	}

	recipients := splitAddresses(msg.To)
	recipients = append(recipients, splitAddresses(msg.Cc)...)
	recipients = append(recipients, splitAddresses(msg.Bcc)...)
	if len(recipients) == 0 {
		return "", fmt.Errorf("no recipients")
	}

	var auth sasl.Client
	if p.username != "" {
		auth = sasl.NewPlainClient("", p.username, p.password)
	}

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", p.addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	done := make(chan error, 1)
	go func() {
		done <- p.exchange(conn, auth, msg.From, recipients, raw)
	}()

	select {
	case err := <-done:
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", err
		}
		return messageID, nil
	case <-ctx.Done():
		// Dropping the connection unblocks the exchange goroutine
		conn.Close()
		return "", ctx.Err()
	}
}

// exchange runs the SMTP conversation on an established connection
func (p *smtpProvider) exchange(conn net.Conn, auth sasl.Client, from string, recipients []string, raw []byte) error {
	c := smtp.NewClient(conn)
	defer c.Close()

	if p.helo != "" {
		if err := c.Hello(p.helo); err != nil {
			return err
		}
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		host := p.addr
		if h, _, err := net.SplitHostPort(p.addr); err == nil {
			host = h
		}
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from, nil); err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return err
		}
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(raw); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildRawMessage assembles an RFC 822 message with text and HTML
// alternatives
func buildRawMessage(messageID string, msg *OutgoingEmail) ([]byte, error) {
	var buf bytes.Buffer

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	writeHeader(&buf, "From", from)
	writeHeader(&buf, "To", msg.To)
	if msg.Cc != "" {
		writeHeader(&buf, "Cc", msg.Cc)
	}
	if msg.ReplyTo != "" {
		writeHeader(&buf, "Reply-To", msg.ReplyTo)
	}
	writeHeader(&buf, "Subject", msg.Subject)
	writeHeader(&buf, "Message-Id", "<"+messageID+">")
	writeHeader(&buf, "Date", time.Now().UTC().Format(time.RFC1123Z))
	writeHeader(&buf, "MIME-Version", "1.0")

	switch {
	case msg.HTML != "" && msg.Text != "":
		mw := multipart.NewWriter(&buf)
		writeHeader(&buf, "Content-Type", `multipart/alternative; boundary="`+mw.Boundary()+`"`)
		buf.WriteString("\r\n")
		if err := writePart(mw, "text/plain; charset=utf-8", msg.Text); err != nil {
			return nil, err
		}
		if err := writePart(mw, "text/html; charset=utf-8", msg.HTML); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
	case msg.HTML != "":
		writeHeader(&buf, "Content-Type", "text/html; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(msg.HTML)
	default:
		writeHeader(&buf, "Content-Type", "text/plain; charset=utf-8")
		buf.WriteString("\r\n")
		buf.WriteString(msg.Text)
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	value = strings.ReplaceAll(value, "\r", "")
	buf.WriteString(strings.ReplaceAll(value, "\n", " "))
	buf.WriteString("\r\n")
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(body))
	return err
}
