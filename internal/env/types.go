package env

import (
	"fmt"
	"net/mail"
)

type MailerType string

const (
	MailerTypeUnspecified MailerType = ""
	MailerTypeSMTP        MailerType = "smtp"
	MailerTypeSES         MailerType = "ses"
	MailerTypeWebhook     MailerType = "webhook"
)

func parseMailerType(value string) (MailerType, error) {
	switch t := MailerType(value); t {
	case MailerTypeUnspecified, MailerTypeSMTP, MailerTypeSES, MailerTypeWebhook:
		return t, nil
	default:
		return "", fmt.Errorf("invalid MailerType: %v", value)
	}
}

type MailerConfig struct {
	Type          MailerType
	FromAddress   mail.Address
	SmtpConfig    *MailerSMTPConfig
	WebhookConfig *MailerWebhookConfig
}

type MailerSMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	ImplicitTLS bool
}

type MailerWebhookConfig struct {
	URL       string
	AuthToken *string
}

type RegistrationMode string

const (
	RegistrationEnabled  RegistrationMode = "enabled"
	RegistrationDisabled RegistrationMode = "disabled"
)

func parseRegistrationMode(value string) (RegistrationMode, error) {
	switch mode := RegistrationMode(value); mode {
	case RegistrationEnabled, RegistrationDisabled:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid RegistrationMode: %v", value)
	}
}

// VerificationStoreKind selects where verification sessions live. The memory
// store only works for single-replica deployments.
type VerificationStoreKind string

const (
	VerificationStoreMemory   VerificationStoreKind = "memory"
	VerificationStoreDatabase VerificationStoreKind = "database"
)

func parseVerificationStoreKind(value string) (VerificationStoreKind, error) {
	switch kind := VerificationStoreKind(value); kind {
	case VerificationStoreMemory, VerificationStoreDatabase:
		return kind, nil
	default:
		return "", fmt.Errorf("invalid VerificationStoreKind: %v", value)
	}
}

type SamplerType string

const (
	SamplerAlwaysOn                SamplerType = "always_on"
	SamplerAlwaysOff               SamplerType = "always_off"
	SamplerTraceIDRatio            SamplerType = "traceidratio"
	SamplerParentBasedAlwaysOn     SamplerType = "parentbased_always_on"
	SamplerParentBasedAlwaysOff    SamplerType = "parentbased_always_off"
	SamplerParentBasedTraceIDRatio SamplerType = "parentbased_traceidratio"
)

func parseSamplerType(value string) (SamplerType, error) {
	switch s := SamplerType(value); s {
	case SamplerAlwaysOn, SamplerAlwaysOff, SamplerTraceIDRatio,
		SamplerParentBasedAlwaysOn, SamplerParentBasedAlwaysOff, SamplerParentBasedTraceIDRatio:
		return s, nil
	default:
		return "", fmt.Errorf("invalid SamplerType: %v", value)
	}
}

type SamplerConfig struct {
	Sampler SamplerType
	Arg     float64
}
