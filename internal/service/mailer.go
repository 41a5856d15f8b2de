package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Mailer delivers account emails
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
}

// LogMailer writes the verification link to the log instead of sending mail
type LogMailer struct{}

func (LogMailer) SendVerification(_ context.Context, email, link string) error {
	log.Info().
		Str("to", email).
		Str("link", link).
		Msg("Verification email (mock)")
	return nil
}
