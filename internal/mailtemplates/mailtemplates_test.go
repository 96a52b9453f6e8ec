package mailtemplates_test

import (
	"testing"
	"time"

	"github.com/propertyplus/propertyplus/internal/mailtemplates"
	"github.com/propertyplus/propertyplus/internal/types"
	. "github.com/onsi/gomega"
)

func TestVerificationCode(t *testing.T) {
	purposes := []types.VerificationPurpose{
		types.VerificationPurposeSignupEmail,
		types.VerificationPurposePasswordReset,
		types.VerificationPurposePasswordChange,
		types.VerificationPurposeTwoFactorToggle,
		types.VerificationPurposeAccountDelete,
	}
	for _, purpose := range purposes {
		t.Run(string(purpose), func(t *testing.T) {
			g := NewWithT(t)
			rendered, err := mailtemplates.VerificationCode(purpose, "483921", 10*time.Minute)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(rendered.Subject).NotTo(BeEmpty())
			g.Expect(rendered.HtmlBody).To(ContainSubstring("483921"))
			g.Expect(rendered.HtmlBody).To(ContainSubstring("10 minutes"))
			g.Expect(rendered.TextBody).To(ContainSubstring("483921"))
		})
	}
}

func TestVerificationCode_UnknownPurpose(t *testing.T) {
	g := NewWithT(t)
	_, err := mailtemplates.VerificationCode(types.VerificationPurpose("bogus"), "483921", 10*time.Minute)
	g.Expect(err).To(HaveOccurred())
}

func TestPasswordChanged(t *testing.T) {
	g := NewWithT(t)
	at := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	rendered, err := mailtemplates.PasswordChanged(at)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rendered.Subject).To(Equal("Your password was changed"))
	g.Expect(rendered.HtmlBody).To(ContainSubstring("Jun 1, 2025 at 14:30 UTC"))
	g.Expect(rendered.TextBody).To(ContainSubstring("Jun 1, 2025 at 14:30 UTC"))
}

func TestPasswordReset(t *testing.T) {
	g := NewWithT(t)
	rendered, err := mailtemplates.PasswordReset(time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rendered.Subject).To(Equal("Your password was reset"))
	g.Expect(rendered.HtmlBody).To(ContainSubstring("signed out"))
}

func TestWelcome(t *testing.T) {
	g := NewWithT(t)
	rendered, err := mailtemplates.Welcome("Ada")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rendered.Subject).To(Equal("Welcome to PropertyPlus"))
	g.Expect(rendered.HtmlBody).To(ContainSubstring("Ada"))
}

func TestAccountDeleted(t *testing.T) {
	g := NewWithT(t)
	rendered, err := mailtemplates.AccountDeleted()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rendered.Subject).To(Equal("Your account was deleted"))
	g.Expect(rendered.HtmlBody).To(ContainSubstring("deleted"))
}
