package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"unicode"
)

const (
	recoveryCodeLength = 10
	recoveryCodeCount  = 10
)

// GenerateRecoveryCodes returns a fresh batch of one-time recovery codes.
// Codes are lowercase hex and only ever stored hashed.
func GenerateRecoveryCodes() ([]string, error) {
	codes := make([]string, recoveryCodeCount)
	for i := 0; i < recoveryCodeCount; i++ {
		code, err := generateRecoveryCode()
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

func generateRecoveryCode() (string, error) {
	codeBytes := make([]byte, 6)
	if _, err := rand.Read(codeBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(codeBytes)[:recoveryCodeLength], nil
}

// FormatRecoveryCode adds the display hyphen. Codes of unexpected length are
// returned unchanged.
func FormatRecoveryCode(code string) string {
	if len(code) != recoveryCodeLength {
		return code
	}
	return code[:5] + "-" + code[5:]
}

// NormalizeRecoveryCode undoes user-side formatting: hyphens and whitespace
// are dropped and the code is lowercased.
func NormalizeRecoveryCode(code string) string {
	code = strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
	return strings.ToLower(code)
}

func HashRecoveryCode(code string) (salt []byte, hash []byte, err error) {
	if salt, err = generateSalt(); err != nil {
		return nil, nil, err
	}
	return salt, generateHash(NormalizeRecoveryCode(code), salt), nil
}

func VerifyRecoveryCode(code string, salt []byte, hash []byte) bool {
	candidate := generateHash(NormalizeRecoveryCode(code), salt)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
