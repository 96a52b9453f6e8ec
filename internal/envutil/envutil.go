package envutil

import (
	"fmt"
	"os"
)

func GetEnv(key string) string {
	return os.Getenv(key)
}

func GetEnvOrNil(key string) *string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return &value
	}
	return nil
}

func GetEnvOrDefault(key string, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// RequireEnv returns the value of the given environment variable and panics if
// it is unset or empty. Only call this during initialization.
func RequireEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	panic(fmt.Sprintf("missing required environment variable %v", key))
}

func RequireEnvParsed[T any](key string, parseFunc func(string) (T, error)) T {
	value, err := parseFunc(RequireEnv(key))
	if err != nil {
		panic(fmt.Sprintf("could not parse environment variable %v: %v", key, err))
	}
	return value
}

func GetEnvParsedOrDefault[T any](key string, parseFunc func(string) (T, error), defaultValue T) T {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := parseFunc(value)
		if err != nil {
			panic(fmt.Sprintf("could not parse environment variable %v: %v", key, err))
		}
		return parsed
	}
	return defaultValue
}

func GetEnvParsedOrNil[T any](key string, parseFunc func(string) (T, error)) *T {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parsed, err := parseFunc(value)
		if err != nil {
			panic(fmt.Sprintf("could not parse environment variable %v: %v", key, err))
		}
		return &parsed
	}
	return nil
}
