package mail

import (
	"context"
	"fmt"

	"github.com/propertyplus/propertyplus/internal/env"
	"go.uber.org/zap"
)

type Mail struct {
	To       []string
	Subject  string
	HtmlBody string
	TextBody string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// NewMailer builds the Mailer selected by the MAILER_TYPE configuration.
// Without a configured type a noop mailer is returned that only logs, which
// keeps local development working without mail infrastructure.
func NewMailer(ctx context.Context, config env.MailerConfig, logger *zap.Logger) (Mailer, error) {
	switch config.Type {
	case env.MailerTypeSMTP:
		return newSMTPMailer(config)
	case env.MailerTypeSES:
		return newSESMailer(ctx, config)
	case env.MailerTypeWebhook:
		return newWebhookMailer(config), nil
	case env.MailerTypeUnspecified:
		return newNoopMailer(logger), nil
	default:
		return nil, fmt.Errorf("unsupported mailer type: %v", config.Type)
	}
}
