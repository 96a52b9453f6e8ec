package mail

import (
	"context"
	"fmt"

	"github.com/propertyplus/propertyplus/internal/env"
	gomail "github.com/wneessen/go-mail"
)

type smtpMailer struct {
	config env.MailerConfig
	client *gomail.Client
}

func newSMTPMailer(config env.MailerConfig) (*smtpMailer, error) {
	smtpConfig := config.SmtpConfig
	opts := []gomail.Option{gomail.WithPort(smtpConfig.Port)}
	if smtpConfig.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(smtpConfig.Username),
			gomail.WithPassword(smtpConfig.Password),
		)
	}
	if smtpConfig.ImplicitTLS {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	client, err := gomail.NewClient(smtpConfig.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create SMTP client: %w", err)
	}
	return &smtpMailer{config: config, client: client}, nil
}

func (m *smtpMailer) Send(ctx context.Context, mail Mail) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.config.FromAddress.String()); err != nil {
		return err
	}
	if err := msg.To(mail.To...); err != nil {
		return err
	}
	msg.Subject(mail.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, mail.TextBody)
	msg.AddAlternativeString(gomail.TypeTextHTML, mail.HtmlBody)
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}
	return nil
}
