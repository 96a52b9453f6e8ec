package envparse

import (
	"errors"
	"net/mail"
	"strconv"
	"time"
)

func PositiveDuration(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err != nil {
		return 0, err
	} else if d < 0 {
		return 0, errors.New("duration must not be negative")
	} else {
		return d, nil
	}
}

func NonNegativeNumber(value string) (int, error) {
	if n, err := strconv.Atoi(value); err != nil {
		return 0, err
	} else if n < 0 {
		return 0, errors.New("number must not be negative")
	} else {
		return n, nil
	}
}

func Float(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}

func ByteSlice(value string) ([]byte, error) {
	return []byte(value), nil
}

func MailAddress(value string) (mail.Address, error) {
	if addr, err := mail.ParseAddress(value); err != nil {
		return mail.Address{}, err
	} else {
		return *addr, nil
	}
}
