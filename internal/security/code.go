package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const VerificationCodeLength = 6

// GenerateVerificationCode returns a uniformly random numeric code with
// VerificationCodeLength digits, left-padded with zeros.
func GenerateVerificationCode() (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < VerificationCodeLength; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", VerificationCodeLength, n), nil
}

// NormalizeVerificationCode removes all whitespace from a submitted code.
// The digits themselves are never altered.
func NormalizeVerificationCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
}
