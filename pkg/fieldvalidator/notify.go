package fieldvalidator

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/host"
	"github.com/goliatone/go-formrules/pkg/messages"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// notifier applies a verdict to every control bound to a field.
type notifier struct {
	field      string
	key        string
	message    string
	messageKey string
	locale     string
	translator messages.Translator
	logger     *zap.Logger
}

func newNotifier(fieldName string, cfg config) notifier {
	return notifier{
		field:      fieldName,
		key:        cfg.key,
		message:    cfg.message,
		messageKey: cfg.messageKey,
		locale:     cfg.locale,
		translator: cfg.translator,
		logger:     cfg.logger.With(zap.String("field", fieldName), zap.String("key", cfg.key)),
	}
}

// resolveMessage returns the localised, sanitised notification text. It never
// returns an empty string.
func (n notifier) resolveMessage() string {
	msg := messages.Resolve(n.translator, n.locale, n.messageKey, n.message)
	if cleaned := sanitizeMessage(msg); cleaned != "" {
		return cleaned
	}
	return DefaultMessage
}

// apply sets or clears the keyed notification on each control. Every control
// receives the same mutation; failures are joined and returned after all
// controls were attempted.
func (n notifier) apply(controls []host.Control, valid bool) error {
	op := "set"
	message := ""
	if valid {
		op = "clear"
	} else {
		message = n.resolveMessage()
	}

	var errs []error
	for idx, control := range controls {
		if control == nil {
			n.logger.Warn("skipping nil control", zap.Int("control", idx))
			continue
		}
		var err error
		if valid {
			err = control.ClearNotification(n.key)
		} else {
			err = control.SetNotification(message, n.key)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("fieldvalidator: %s notification %q on field %q: %w", op, n.key, n.field, errors.Join(errs...))
}

func sanitizeMessage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	policy := messageSanitizer()
	cleaned := html.UnescapeString(trimmed)
	for i := 0; ; i++ {
		next := html.UnescapeString(policy.Sanitize(cleaned))
		if next == cleaned {
			break
		}
		if i == maxSanitizePasses {
			// Still changing: keep the escaped form so no markup survives.
			cleaned = policy.Sanitize(next)
			break
		}
		cleaned = next
	}
	return strings.Join(strings.Fields(cleaned), " ")
}

// maxSanitizePasses bounds the sanitise and unescape loop in sanitizeMessage.
const maxSanitizePasses = 4

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}
