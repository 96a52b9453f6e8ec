package context

import (
	"context"

	"github.com/propertyplus/propertyplus/internal/mail"
)

func WithMailer(ctx context.Context, mailer mail.Mailer) context.Context {
	return context.WithValue(ctx, ctxKeyMailer, mailer)
}

func GetMailer(ctx context.Context) mail.Mailer {
	if mailer, ok := ctx.Value(ctxKeyMailer).(mail.Mailer); ok {
		return mailer
	}
	panic("no mailer found in context")
}
