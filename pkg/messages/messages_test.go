package messages

import (
	"errors"
	"testing"
)

func TestCatalog_LocaleFallback(t *testing.T) {
	catalog := NewCatalog("en")
	catalog.Add("en", map[string]string{
		"validation.url": "Enter a valid URL",
		"validation.max": "At most %d characters",
	})
	catalog.Add("es", map[string]string{
		"validation.url": "Introduce una URL válida",
	})

	cases := []struct {
		locale string
		key    string
		args   []any
		want   string
	}{
		{locale: "es-MX", key: "validation.url", want: "Introduce una URL válida"},
		{locale: "es_ES", key: "validation.url", want: "Introduce una URL válida"},
		{locale: "fr", key: "validation.url", want: "Enter a valid URL"},
		{locale: "", key: "validation.max", args: []any{10}, want: "At most 10 characters"},
	}
	for _, tc := range cases {
		got, err := catalog.Translate(tc.locale, tc.key, tc.args...)
		if err != nil {
			t.Fatalf("translate %s/%s: %v", tc.locale, tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("translate %s/%s = %q, want %q", tc.locale, tc.key, got, tc.want)
		}
	}

	if _, err := catalog.Translate("en", "missing"); !errors.Is(err, ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	blank := TranslatorFunc(func(string, string, ...any) (string, error) { return "  ", nil })
	failing := TranslatorFunc(func(string, string, ...any) (string, error) { return "", errors.New("nope") })
	ok := TranslatorFunc(func(locale, key string, _ ...any) (string, error) { return locale + ":" + key, nil })

	if got := Resolve(nil, "en", "k", "fallback"); got != "fallback" {
		t.Fatalf("nil translator: got %q", got)
	}
	if got := Resolve(ok, "en", " ", "fallback"); got != "fallback" {
		t.Fatalf("empty key: got %q", got)
	}
	if got := Resolve(blank, "en", "k", "fallback"); got != "fallback" {
		t.Fatalf("blank translation: got %q", got)
	}
	if got := Resolve(failing, "en", "k", "fallback"); got != "fallback" {
		t.Fatalf("failing translator: got %q", got)
	}
	if got := Resolve(ok, "en", "k", "fallback"); got != "en:k" {
		t.Fatalf("translated: got %q", got)
	}
}
