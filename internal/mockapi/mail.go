package mockapi

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// Mailer queues confirmation mails for delivery.
type Mailer interface {
	Enqueue(mail domain.ConfirmationMail)
}

// LogSender "delivers" confirmation mails by logging the link, the way a
// development server without SMTP does.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, mail domain.ConfirmationMail) error {
	s.Log.Info().Str("to", mail.To).Str("link", mail.Link).Msg("confirmation mail")
	return nil
}

// directMailer sends on the caller's goroutine.
type directMailer struct {
	sender LogSender
}

func (m directMailer) Enqueue(mail domain.ConfirmationMail) {
	_ = m.sender.Send(context.Background(), mail)
}
