package security_test

import (
	"testing"

	"github.com/propertyplus/propertyplus/internal/security"
	. "github.com/onsi/gomega"
)

func TestGenerateVerificationCode(t *testing.T) {
	g := NewWithT(t)

	code, err := security.GenerateVerificationCode()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(code).To(HaveLen(security.VerificationCodeLength))
	g.Expect(code).To(MatchRegexp("^[0-9]{6}$"))
}

func TestGenerateVerificationCode_NotConstant(t *testing.T) {
	g := NewWithT(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := security.GenerateVerificationCode()
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(code).To(MatchRegexp("^[0-9]{6}$"))
		seen[code] = true
	}
	g.Expect(len(seen)).To(BeNumerically(">", 1))
}

func TestNormalizeVerificationCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain code",
			input:    "123456",
			expected: "123456",
		},
		{
			name:     "surrounding whitespace",
			input:    "  123456  ",
			expected: "123456",
		},
		{
			name:     "trailing newline",
			input:    "123456\n",
			expected: "123456",
		},
		{
			name:     "internal spaces",
			input:    "123 456",
			expected: "123456",
		},
		{
			name:     "tabs",
			input:    "\t123456\t",
			expected: "123456",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			result := security.NormalizeVerificationCode(tt.input)
			g.Expect(result).To(Equal(tt.expected))
		})
	}
}
