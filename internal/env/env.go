package env

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/propertyplus/propertyplus/internal/envparse"
	"github.com/propertyplus/propertyplus/internal/envutil"
	"github.com/propertyplus/propertyplus/internal/verification"
)

var (
	databaseUrl                       string
	databaseMaxConns                  *int
	jwtSecret                         []byte
	host                              string
	listenAddress                     string
	mailerConfig                      MailerConfig
	sessionTokenValidDuration         time.Duration
	registration                      RegistrationMode
	signupCodeRequired                bool
	verificationStore                 VerificationStoreKind
	verificationResendWindow          time.Duration
	verificationExpiryWindow          time.Duration
	verificationMaxAttempts           int
	verificationSessionMaxAge         *time.Duration
	securityEventMaxAge               *time.Duration
	cleanupVerificationSessionCron    *string
	cleanupVerificationSessionTimeout time.Duration
	cleanupSecurityEventCron          *string
	cleanupSecurityEventTimeout       time.Duration
	sentryDSN                         string
	sentryDebug                       bool
	sentryEnvironment                 string
	otelSampler                       *SamplerConfig
	otelExporterSentryEnabled         bool
	otelExporterOtlpEnabled           bool
	enableQueryLogging                bool
	serverShutdownDelayDuration       *time.Duration
)

func Initialize() {
	if currentEnv, ok := os.LookupEnv("PROPERTYPLUS_ENV"); ok {
		fmt.Fprintf(os.Stderr, "environment=%v\n", currentEnv)
		if err := godotenv.Load(currentEnv); err != nil {
			fmt.Fprintf(os.Stderr, "environment %v not loaded: %v\n", currentEnv, err)
		}
		secretEnv := currentEnv + ".secret"
		if err := godotenv.Load(secretEnv); err != nil {
			fmt.Fprintf(os.Stderr, "environment %v not loaded: %v\n", secretEnv, err)
		}
	}

	databaseUrl = envutil.RequireEnv("DATABASE_URL")
	databaseMaxConns = envutil.GetEnvParsedOrNil("DATABASE_MAX_CONNS", strconv.Atoi)
	jwtSecret = envutil.RequireEnvParsed("JWT_SECRET", base64.StdEncoding.DecodeString)
	host = envutil.RequireEnv("PROPERTYPLUS_HOST")
	listenAddress = envutil.GetEnvOrDefault("LISTEN_ADDRESS", ":8080")
	enableQueryLogging = envutil.GetEnvParsedOrDefault("ENABLE_QUERY_LOGGING", strconv.ParseBool, false)
	serverShutdownDelayDuration = envutil.GetEnvParsedOrNil("SERVER_SHUTDOWN_DELAY_DURATION", envparse.PositiveDuration)
	registration = envutil.GetEnvParsedOrDefault("REGISTRATION", parseRegistrationMode, RegistrationEnabled)
	signupCodeRequired = envutil.GetEnvParsedOrDefault("SIGNUP_CODE_REQUIRED", strconv.ParseBool, true)
	sessionTokenValidDuration = envutil.GetEnvParsedOrDefault(
		"SESSION_TOKEN_VALID_DURATION", envparse.PositiveDuration, 24*time.Hour,
	)

	verificationStore = envutil.GetEnvParsedOrDefault(
		"VERIFICATION_STORE", parseVerificationStoreKind, VerificationStoreMemory,
	)
	verificationResendWindow = envutil.GetEnvParsedOrDefault(
		"VERIFICATION_RESEND_WINDOW", envparse.PositiveDuration, verification.DefaultResendWindow,
	)
	verificationExpiryWindow = envutil.GetEnvParsedOrDefault(
		"VERIFICATION_EXPIRY_WINDOW", envparse.PositiveDuration, verification.DefaultExpiryWindow,
	)
	verificationMaxAttempts = envutil.GetEnvParsedOrDefault(
		"VERIFICATION_MAX_ATTEMPTS", envparse.NonNegativeNumber, 0,
	)
	verificationSessionMaxAge = envutil.GetEnvParsedOrNil("VERIFICATION_SESSION_MAX_AGE", envparse.PositiveDuration)
	securityEventMaxAge = envutil.GetEnvParsedOrNil("SECURITY_EVENT_MAX_AGE", envparse.PositiveDuration)

	mailerConfig.Type = envutil.GetEnvParsedOrDefault("MAILER_TYPE", parseMailerType, MailerTypeUnspecified)
	if mailerConfig.Type != MailerTypeUnspecified {
		mailerConfig.FromAddress = envutil.RequireEnvParsed("MAILER_FROM_ADDRESS", envparse.MailAddress)
	}
	if mailerConfig.Type == MailerTypeSMTP {
		mailerConfig.SmtpConfig = &MailerSMTPConfig{
			Host:        envutil.GetEnv("MAILER_SMTP_HOST"),
			Port:        envutil.RequireEnvParsed("MAILER_SMTP_PORT", strconv.Atoi),
			Username:    envutil.GetEnv("MAILER_SMTP_USERNAME"),
			Password:    envutil.GetEnv("MAILER_SMTP_PASSWORD"),
			ImplicitTLS: envutil.GetEnvParsedOrDefault("MAILER_SMTP_IMPLICIT_TLS", strconv.ParseBool, false),
		}
	}
	if mailerConfig.Type == MailerTypeWebhook {
		mailerConfig.WebhookConfig = &MailerWebhookConfig{
			URL:       envutil.RequireEnv("MAILER_WEBHOOK_URL"),
			AuthToken: envutil.GetEnvOrNil("MAILER_WEBHOOK_AUTH_TOKEN"),
		}
	}

	cleanupVerificationSessionCron = envutil.GetEnvOrNil("CLEANUP_VERIFICATION_SESSION_CRON")
	cleanupVerificationSessionTimeout = envutil.GetEnvParsedOrDefault("CLEANUP_VERIFICATION_SESSION_TIMEOUT",
		envparse.PositiveDuration, 0)
	cleanupSecurityEventCron = envutil.GetEnvOrNil("CLEANUP_SECURITY_EVENT_CRON")
	cleanupSecurityEventTimeout = envutil.GetEnvParsedOrDefault("CLEANUP_SECURITY_EVENT_TIMEOUT",
		envparse.PositiveDuration, 0)

	sentryDSN = envutil.GetEnv("SENTRY_DSN")
	sentryDebug = envutil.GetEnvParsedOrDefault("SENTRY_DEBUG", strconv.ParseBool, false)
	sentryEnvironment = envutil.GetEnv("SENTRY_ENVIRONMENT")
	otelExporterSentryEnabled = envutil.GetEnvParsedOrDefault("OTEL_EXPORTER_SENTRY_ENABLED", strconv.ParseBool, false)
	otelExporterOtlpEnabled = envutil.GetEnvParsedOrDefault("OTEL_EXPORTER_OTLP_ENABLED", strconv.ParseBool, false)
	if s := envutil.GetEnvParsedOrNil("OTEL_SAMPLER", parseSamplerType); s != nil {
		otelSampler = &SamplerConfig{
			Sampler: *s,
			Arg:     envutil.GetEnvParsedOrDefault("OTEL_SAMPLER_ARG", envparse.Float, 1.0),
		}
	}
}

func DatabaseUrl() string {
	return databaseUrl
}

// DatabaseMaxConns overrides the MaxConns parameter of the pgx pool config.
func DatabaseMaxConns() *int {
	return databaseMaxConns
}

func JWTSecret() []byte {
	return jwtSecret
}

func Host() string { return host }

func ListenAddress() string { return listenAddress }

func GetMailerConfig() MailerConfig {
	return mailerConfig
}

func SessionTokenValidDuration() time.Duration {
	return sessionTokenValidDuration
}

func Registration() RegistrationMode {
	return registration
}

func SignupCodeRequired() bool {
	return signupCodeRequired
}

func VerificationStore() VerificationStoreKind {
	return verificationStore
}

func VerificationResendWindow() time.Duration {
	return verificationResendWindow
}

func VerificationExpiryWindow() time.Duration {
	return verificationExpiryWindow
}

func VerificationMaxAttempts() int {
	return verificationMaxAttempts
}

func VerificationSessionMaxAge() *time.Duration {
	return verificationSessionMaxAge
}

func SecurityEventMaxAge() *time.Duration {
	return securityEventMaxAge
}

func CleanupVerificationSessionCron() *string {
	return cleanupVerificationSessionCron
}

func CleanupVerificationSessionTimeout() time.Duration {
	return cleanupVerificationSessionTimeout
}

func CleanupSecurityEventCron() *string {
	return cleanupSecurityEventCron
}

func CleanupSecurityEventTimeout() time.Duration {
	return cleanupSecurityEventTimeout
}

func SentryDSN() string {
	return sentryDSN
}

func SentryDebug() bool {
	return sentryDebug
}

func SentryEnvironment() string {
	return sentryEnvironment
}

func EnableQueryLogging() bool {
	return enableQueryLogging
}

func OtelSampler() *SamplerConfig {
	return otelSampler
}

func OtelExporterSentryEnabled() bool {
	return otelExporterSentryEnabled
}

func OtelExporterOtlpEnabled() bool {
	return otelExporterOtlpEnabled
}

func ServerShutdownDelayDuration() *time.Duration {
	return serverShutdownDelayDuration
}
