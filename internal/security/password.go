package security

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"github.com/propertyplus/propertyplus/internal/types"
	"golang.org/x/crypto/argon2"
)

const (
	saltLength   = 16
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var ErrInvalidPassword = errors.New("invalid password")

func HashPassword(password string) (salt []byte, hash []byte, err error) {
	if salt, err = generateSalt(); err != nil {
		return nil, nil, err
	}
	return salt, generateHash(password, salt), nil
}

func VerifyPassword(user types.UserAccount, password string) error {
	if len(user.PasswordHash) == 0 || len(user.PasswordSalt) == 0 {
		return ErrInvalidPassword
	}
	if subtle.ConstantTimeCompare(user.PasswordHash, generateHash(password, user.PasswordSalt)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

func generateSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func generateHash(value string, salt []byte) []byte {
	return argon2.IDKey([]byte(value), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}
