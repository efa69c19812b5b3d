package mailer

import (
	"context"
)

// OutgoingEmail is a composed message handed to a delivery provider.
// Address fields are comma-joined lists.
type OutgoingEmail struct {
	From     string
	FromName string
	To       string
	Cc       string
	Bcc      string
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string
}

// Provider delivers a composed message through an external service and
// returns the provider-assigned message id.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *OutgoingEmail) (string, error)
}
