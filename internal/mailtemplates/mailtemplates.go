package mailtemplates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/mail"
	"github.com/propertyplus/propertyplus/internal/types"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

var purposeWording = map[types.VerificationPurpose]struct{ subject, intro string }{
	types.VerificationPurposeSignupEmail: {
		subject: "Confirm your email address",
		intro:   "Use this code to finish creating your PropertyPlus account.",
	},
	types.VerificationPurposePasswordReset: {
		subject: "Reset your password",
		intro:   "Use this code to reset your PropertyPlus password.",
	},
	types.VerificationPurposePasswordChange: {
		subject: "Confirm your password change",
		intro:   "Use this code to confirm changing your PropertyPlus password.",
	},
	types.VerificationPurposeTwoFactorToggle: {
		subject: "Confirm your two-factor authentication change",
		intro:   "Use this code to confirm changing your two-factor authentication settings.",
	},
	types.VerificationPurposeAccountDelete: {
		subject: "Confirm your account deletion",
		intro:   "Use this code to confirm deleting your PropertyPlus account.",
	},
}

type verificationCodeData struct {
	Title         string
	Intro         string
	Code          string
	ExpiryMinutes int
}

// VerificationCode renders the mail carrying a one-time code. The caller
// fills in the recipient.
func VerificationCode(
	purpose types.VerificationPurpose,
	code string,
	expiryWindow time.Duration,
) (mail.Mail, error) {
	wording, ok := purposeWording[purpose]
	if !ok {
		return mail.Mail{}, fmt.Errorf("no mail wording for purpose: %v", purpose)
	}
	expiryMinutes := int(expiryWindow.Minutes())
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "verification_code.html", verificationCodeData{
		Title:         wording.subject,
		Intro:         wording.intro,
		Code:          code,
		ExpiryMinutes: expiryMinutes,
	})
	if err != nil {
		return mail.Mail{}, err
	}
	return mail.Mail{
		Subject:  wording.subject,
		HtmlBody: buf.String(),
		TextBody: fmt.Sprintf(
			"%v\n\nYour verification code is: %v\n\nThe code expires in %v minutes. "+
				"If you did not request this code, you can ignore this mail.\n",
			wording.intro, code, expiryMinutes,
		),
	}, nil
}

type noticeData struct {
	Title       string
	Body        string
	SecurityUrl string
}

func renderNotice(subject, body string) (mail.Mail, error) {
	data := noticeData{Title: subject, Body: body}
	// Host is empty in tests, the link is skipped then
	if host := env.Host(); host != "" {
		data.SecurityUrl = host + "/settings/security"
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "notice.html", data); err != nil {
		return mail.Mail{}, err
	}
	return mail.Mail{
		Subject:  subject,
		HtmlBody: buf.String(),
		TextBody: fmt.Sprintf("%v\n\n%v\nIf this was not you, please contact support right away.\n", subject, body),
	}, nil
}

func Welcome(name string) (mail.Mail, error) {
	return renderNotice(
		"Welcome to PropertyPlus",
		fmt.Sprintf("Hi %v, your PropertyPlus account is ready. "+
			"You can now browse listings, save favorites and manage your profile.", name),
	)
}

func PasswordChanged(at time.Time) (mail.Mail, error) {
	return renderNotice(
		"Your password was changed",
		fmt.Sprintf("The password for your PropertyPlus account was changed on %v.",
			at.UTC().Format("Jan 2, 2006 at 15:04 UTC")),
	)
}

func PasswordReset(at time.Time) (mail.Mail, error) {
	return renderNotice(
		"Your password was reset",
		fmt.Sprintf("The password for your PropertyPlus account was reset on %v "+
			"and all active sessions were signed out.",
			at.UTC().Format("Jan 2, 2006 at 15:04 UTC")),
	)
}

func TwoFactorEnabled() (mail.Mail, error) {
	return renderNotice(
		"Two-factor authentication enabled",
		"Two-factor authentication was just enabled for your PropertyPlus account.",
	)
}

func TwoFactorDisabled() (mail.Mail, error) {
	return renderNotice(
		"Two-factor authentication disabled",
		"Two-factor authentication was just disabled for your PropertyPlus account.",
	)
}

func AccountDeleted() (mail.Mail, error) {
	return renderNotice(
		"Your account was deleted",
		"Your PropertyPlus account and all data associated with it were deleted.",
	)
}
