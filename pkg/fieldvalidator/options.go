package fieldvalidator

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/messages"
	"github.com/goliatone/go-formrules/pkg/rules"
)

// DefaultMessage is shown when no message is configured or the configured
// message sanitises to nothing.
const DefaultMessage = "Please enter a valid value"

type config struct {
	key        string
	message    string
	messageKey string
	locale     string
	translator messages.Translator
	logger     *zap.Logger

	timeout  time.Duration
	precheck rules.Rule
}

// Option configures a Validator or AsyncValidator.
type Option func(*config)

// WithKey overrides the notification key. Defaults to the field name.
func WithKey(key string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			cfg.key = trimmed
		}
	}
}

// WithMessage sets the notification text shown when the rule fails.
func WithMessage(message string) Option {
	return func(cfg *config) {
		cfg.message = message
	}
}

// WithTranslator localises the message through t using messageKey, falling
// back to the configured message.
func WithTranslator(t messages.Translator, messageKey string) Option {
	return func(cfg *config) {
		cfg.translator = t
		cfg.messageKey = strings.TrimSpace(messageKey)
	}
}

// WithLocale selects the locale passed to the translator.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		cfg.locale = strings.TrimSpace(locale)
	}
}

// WithLogger sets the logger used for fail-soft conditions.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTimeout bounds each async check. Ignored by synchronous validators.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = timeout
	}
}

// WithPrecheck runs a synchronous rule before an async check; a failing
// precheck shows the notification without starting the async check. Ignored
// by synchronous validators.
func WithPrecheck(rule rules.Rule) Option {
	return func(cfg *config) {
		cfg.precheck = rule
	}
}

func newConfig(fieldName string, options []Option) config {
	cfg := config{
		key:    fieldName,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
