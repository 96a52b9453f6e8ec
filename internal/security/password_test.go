package security_test

import (
	"testing"

	"github.com/propertyplus/propertyplus/internal/security"
	"github.com/propertyplus/propertyplus/internal/types"
	. "github.com/onsi/gomega"
)

func TestHashPassword(t *testing.T) {
	g := NewWithT(t)

	salt, hash, err := security.HashPassword("correct horse battery staple")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(salt).NotTo(BeEmpty())
	g.Expect(hash).NotTo(BeEmpty())
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	g := NewWithT(t)

	salt1, hash1, err := security.HashPassword("correct horse battery staple")
	g.Expect(err).NotTo(HaveOccurred())

	salt2, hash2, err := security.HashPassword("correct horse battery staple")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(salt1).NotTo(Equal(salt2))
	g.Expect(hash1).NotTo(Equal(hash2))
}

func TestVerifyPassword(t *testing.T) {
	g := NewWithT(t)

	salt, hash, err := security.HashPassword("correct horse battery staple")
	g.Expect(err).NotTo(HaveOccurred())

	user := types.UserAccount{PasswordHash: hash, PasswordSalt: salt}
	g.Expect(security.VerifyPassword(user, "correct horse battery staple")).To(Succeed())
	g.Expect(security.VerifyPassword(user, "incorrect horse")).To(MatchError(security.ErrInvalidPassword))
}

func TestVerifyPassword_NoPasswordSet(t *testing.T) {
	g := NewWithT(t)

	user := types.UserAccount{}
	g.Expect(security.VerifyPassword(user, "anything")).To(MatchError(security.ErrInvalidPassword))
}
