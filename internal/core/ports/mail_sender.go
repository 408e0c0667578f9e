package ports

import (
	"context"

	"github.com/controlsys/defect-web/internal/core/domain"
)

// MailSender delivers one confirmation mail.
type MailSender interface {
	Send(ctx context.Context, mail domain.ConfirmationMail) error
}
