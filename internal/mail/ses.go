package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/propertyplus/propertyplus/internal/env"
)

type sesMailer struct {
	config env.MailerConfig
	client *ses.Client
}

// newSESMailer relies on the default AWS credential chain, so the usual
// AWS_* environment variables or an instance profile configure access.
func newSESMailer(ctx context.Context, config env.MailerConfig) (*sesMailer, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load AWS config: %w", err)
	}
	return &sesMailer{config: config, client: ses.NewFromConfig(awsConfig)}, nil
}

func (m *sesMailer) Send(ctx context.Context, mail Mail) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.config.FromAddress.String()),
		Destination: &sestypes.Destination{ToAddresses: mail.To},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(mail.Subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Html: &sestypes.Content{Data: aws.String(mail.HtmlBody), Charset: aws.String("UTF-8")},
				Text: &sestypes.Content{Data: aws.String(mail.TextBody), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("could not send mail via SES: %w", err)
	}
	return nil
}
