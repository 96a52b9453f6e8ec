package mail

import (
	"context"

	"go.uber.org/zap"
)

type noopMailer struct {
	logger *zap.Logger
}

func newNoopMailer(logger *zap.Logger) *noopMailer {
	return &noopMailer{logger: logger}
}

func (m *noopMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.Warn("no mailer configured, mail not sent",
		zap.Strings("to", mail.To), zap.String("subject", mail.Subject))
	m.logger.Sugar().Debugf("mail body:\n%v", mail.TextBody)
	return nil
}
