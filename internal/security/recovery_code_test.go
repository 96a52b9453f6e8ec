package security_test

import (
	"testing"

	"github.com/propertyplus/propertyplus/internal/security"
	. "github.com/onsi/gomega"
)

func TestGenerateRecoveryCodes(t *testing.T) {
	g := NewWithT(t)

	codes, err := security.GenerateRecoveryCodes()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(codes).To(HaveLen(10))

	seen := make(map[string]bool)
	for _, code := range codes {
		g.Expect(code).To(MatchRegexp("^[0-9a-f]{10}$"))
		g.Expect(seen[code]).To(BeFalse(), "duplicate code %s", code)
		seen[code] = true
	}
}

func TestFormatRecoveryCode(t *testing.T) {
	g := NewWithT(t)

	g.Expect(security.FormatRecoveryCode("abcde12345")).To(Equal("abcde-12345"))
	// codes of unexpected length pass through untouched
	g.Expect(security.FormatRecoveryCode("abc")).To(Equal("abc"))
	g.Expect(security.FormatRecoveryCode("abcde-12345")).To(Equal("abcde-12345"))
}

func TestNormalizeRecoveryCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "formatted code",
			input:    "abcde-12345",
			expected: "abcde12345",
		},
		{
			name:     "plain code",
			input:    "abcde12345",
			expected: "abcde12345",
		},
		{
			name:     "uppercase",
			input:    "ABCDE-12345",
			expected: "abcde12345",
		},
		{
			name:     "surrounding whitespace",
			input:    " abcde-12345\n",
			expected: "abcde12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			g.Expect(security.NormalizeRecoveryCode(tt.input)).To(Equal(tt.expected))
		})
	}
}

func TestVerifyRecoveryCode(t *testing.T) {
	g := NewWithT(t)

	salt, hash, err := security.HashRecoveryCode("abcde12345")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(security.VerifyRecoveryCode("abcde12345", salt, hash)).To(BeTrue())
	g.Expect(security.VerifyRecoveryCode("abcde-12345", salt, hash)).To(BeTrue())
	g.Expect(security.VerifyRecoveryCode("ABCDE-12345", salt, hash)).To(BeTrue())
	g.Expect(security.VerifyRecoveryCode("0000000000", salt, hash)).To(BeFalse())
}

func TestHashRecoveryCode_UniqueSalts(t *testing.T) {
	g := NewWithT(t)

	salt1, hash1, err := security.HashRecoveryCode("abcde12345")
	g.Expect(err).NotTo(HaveOccurred())
	salt2, hash2, err := security.HashRecoveryCode("abcde12345")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(salt1).NotTo(Equal(salt2))
	g.Expect(hash1).NotTo(Equal(hash2))
}
