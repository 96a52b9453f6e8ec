package validation

import (
	"errors"
	"fmt"
	"net/mail"
)

var ErrValidationFailed = errors.New("validation failed")

func NewValidationFailedError(reason string) error {
	return fmt.Errorf("%w: %v", ErrValidationFailed, reason)
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return NewValidationFailedError("password must have at least 8 characters")
	} else if len(password) > 128 {
		return NewValidationFailedError("password must have at most 128 characters")
	}
	return nil
}

func ValidateMailAddress(value string) error {
	if value == "" {
		return NewValidationFailedError("email is empty")
	} else if _, err := mail.ParseAddress(value); err != nil {
		return NewValidationFailedError("email is not valid")
	}
	return nil
}
