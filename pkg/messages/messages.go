package messages

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrMissingTranslation is returned when a catalog has no message for a key in
// the requested locale or any of its fallbacks.
var ErrMissingTranslation = errors.New("messages: missing translation")

// Translator resolves a message key for a locale. Args are applied with
// fmt.Sprintf semantics by implementations that support them.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Catalog is a map-backed Translator. Lookups walk from the exact locale to its
// base language ("en-US" then "en") and finally to the default locale.
type Catalog struct {
	mu            sync.RWMutex
	defaultLocale string
	entries       map[string]map[string]string
}

// NewCatalog returns an empty catalog using defaultLocale as the last fallback.
func NewCatalog(defaultLocale string) *Catalog {
	return &Catalog{
		defaultLocale: normaliseLocale(defaultLocale),
		entries:       make(map[string]map[string]string),
	}
}

// Add registers messages for a locale, overwriting existing keys.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = normaliseLocale(locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.entries[locale]
	if !ok {
		bucket = make(map[string]string, len(messages))
		c.entries[locale] = bucket
	}
	for key, msg := range messages {
		bucket[strings.TrimSpace(key)] = msg
	}
}

// Translate implements Translator.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range localeChain(normaliseLocale(locale), c.defaultLocale) {
		if msg, ok := c.entries[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrMissingTranslation, key, locale)
}

// Resolve translates key, returning fallback when the translator is nil, the
// key is empty, or translation fails or yields only whitespace.
func Resolve(t Translator, locale, key, fallback string, args ...any) string {
	key = strings.TrimSpace(key)
	if t == nil || key == "" {
		return fallback
	}
	msg, err := t.Translate(locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func localeChain(locale, defaultLocale string) []string {
	chain := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	push := func(candidate string) {
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		chain = append(chain, candidate)
	}
	push(locale)
	if idx := strings.Index(locale, "-"); idx > 0 {
		push(locale[:idx])
	}
	push(defaultLocale)
	return chain
}

func normaliseLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	locale = strings.ReplaceAll(locale, "_", "-")
	return strings.ToLower(locale)
}
