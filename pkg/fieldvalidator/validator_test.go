package fieldvalidator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formrules/pkg/fieldvalidator"
	"github.com/goliatone/go-formrules/pkg/host"
	"github.com/goliatone/go-formrules/pkg/host/memory"
	"github.com/goliatone/go-formrules/pkg/messages"
	"github.com/goliatone/go-formrules/pkg/rules"
	"github.com/goliatone/go-formrules/pkg/testsupport"
)

const (
	websiteField = "websiteurl"
	urlMessage   = "Please enter a valid URL"
)

func newURLValidator(t *testing.T, options ...fieldvalidator.Option) *fieldvalidator.Validator {
	t.Helper()
	options = append([]fieldvalidator.Option{fieldvalidator.WithMessage(urlMessage)}, options...)
	v, err := fieldvalidator.New(websiteField, rules.URL(), options...)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return v
}

func bindStub(t *testing.T, v *fieldvalidator.Validator, controls ...host.Control) *testsupport.StubField {
	t.Helper()
	field := testsupport.NewStubField(websiteField, nil, controls...)
	if err := v.Bind(testsupport.NewStubForm(field)); err != nil {
		t.Fatalf("bind: %v", err)
	}
	return field
}

func TestNew_RequiresFieldAndRule(t *testing.T) {
	if _, err := fieldvalidator.New(" ", rules.URL()); !errors.Is(err, fieldvalidator.ErrFieldNameRequired) {
		t.Fatalf("expected ErrFieldNameRequired, got %v", err)
	}
	if _, err := fieldvalidator.New(websiteField, nil); !errors.Is(err, fieldvalidator.ErrRuleRequired) {
		t.Fatalf("expected ErrRuleRequired, got %v", err)
	}
}

func TestOnChange_InvalidValuesSetNotification(t *testing.T) {
	for _, value := range []any{"foobar", "", "   ", nil, "example.com", "https://"} {
		control := testsupport.NewRecordingControl()
		field := bindStub(t, newURLValidator(t), control)

		if err := field.SetValue(value); err != nil {
			t.Fatalf("set %q: %v", value, err)
		}

		want := []testsupport.Call{{Op: testsupport.OpSet, Key: websiteField, Message: urlMessage}}
		if diff := cmp.Diff(want, control.Calls()); diff != "" {
			t.Fatalf("value %q: calls mismatch (-want +got):\n%s", value, diff)
		}
	}
}

func TestOnChange_ValidValueClearsNotification(t *testing.T) {
	control := testsupport.NewRecordingControl()
	field := bindStub(t, newURLValidator(t), control)

	if err := field.SetValue("https://learn.develop1.net"); err != nil {
		t.Fatalf("set: %v", err)
	}

	want := []testsupport.Call{{Op: testsupport.OpClear, Key: websiteField}}
	if diff := cmp.Diff(want, control.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestOnChange_InvalidThenValid(t *testing.T) {
	control := testsupport.NewRecordingControl()
	field := bindStub(t, newURLValidator(t), control)

	_ = field.SetValue("foo")
	_ = field.SetValue("https://learn.develop1.net")

	want := []testsupport.Call{
		{Op: testsupport.OpSet, Key: websiteField, Message: urlMessage},
		{Op: testsupport.OpClear, Key: websiteField},
	}
	if diff := cmp.Diff(want, control.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(control.Active()) != 0 {
		t.Fatalf("expected no active notifications, got %v", control.Active())
	}
}

func TestOnChange_RoundTripShowClearShow(t *testing.T) {
	form := memory.NewForm()
	field := form.MustAddField(websiteField, "")
	control := field.BoundControls()[0]
	newURLValidator(t).OnLoad(form)

	var states []bool
	for _, value := range []string{"nope", "https://example.com", "still nope"} {
		if err := field.SetValue(value); err != nil {
			t.Fatalf("set %q: %v", value, err)
		}
		_, shown := control.Notification(websiteField)
		states = append(states, shown)
	}

	if diff := cmp.Diff([]bool{true, false, true}, states); diff != "" {
		t.Fatalf("notification states mismatch (-want +got):\n%s", diff)
	}
}

func TestOnChange_RepeatedInvalidKeepsSingleNotification(t *testing.T) {
	form := memory.NewForm()
	field := form.MustAddField(websiteField, "")
	control := field.BoundControls()[0]
	newURLValidator(t).OnLoad(form)

	_ = field.SetValue("foobar")
	_ = field.SetValue("foobar")

	want := map[string]string{websiteField: urlMessage}
	if diff := cmp.Diff(want, control.Notifications()); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestOnChange_AllControlsReceiveSameMutation(t *testing.T) {
	first := testsupport.NewRecordingControl()
	second := testsupport.NewRecordingControl()
	// second starts with a stale notification the first does not have
	_ = second.SetNotification("stale", websiteField)

	field := bindStub(t, newURLValidator(t), first, second)
	_ = field.SetValue("https://example.com")

	if len(first.Active()) != 0 || len(second.Active()) != 0 {
		t.Fatalf("expected all controls cleared, got %v / %v", first.Active(), second.Active())
	}
	if got := first.Calls(); len(got) != 1 || got[0].Op != testsupport.OpClear {
		t.Fatalf("expected first control cleared once, got %v", got)
	}
}

func TestOnLoad_TwiceReplacesHandler(t *testing.T) {
	control := testsupport.NewRecordingControl()
	field := testsupport.NewStubField(websiteField, nil, control)
	form := testsupport.NewStubForm(field)
	v := newURLValidator(t)

	v.OnLoad(form)
	v.OnLoad(form)

	if got := field.HandlerCount(); got != 1 {
		t.Fatalf("expected one handler, got %d", got)
	}
	_ = field.SetValue("foobar")
	if got := len(control.Calls()); got != 1 {
		t.Fatalf("expected a single notification call, got %d", got)
	}
}

func TestOnLoad_MissingFieldIsFailSoft(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	v := newURLValidator(t, fieldvalidator.WithLogger(zap.New(core)))

	v.OnLoad(testsupport.NewStubForm())
	v.OnLoad(nil)

	if err := v.Bind(testsupport.NewStubForm()); !errors.Is(err, fieldvalidator.ErrFieldNotFound) {
		t.Fatalf("expected ErrFieldNotFound, got %v", err)
	}
	if err := v.Bind(nil); !errors.Is(err, fieldvalidator.ErrFormRequired) {
		t.Fatalf("expected ErrFormRequired, got %v", err)
	}
	if got := logs.FilterMessage("validator not bound").Len(); got != 2 {
		t.Fatalf("expected two warnings, got %d", got)
	}
}

func TestOnChange_MissingFieldOrControlsIsFailSoft(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	v := newURLValidator(t, fieldvalidator.WithLogger(zap.New(core)))

	if err := v.OnChange(nil); err != nil {
		t.Fatalf("nil field should not fail: %v", err)
	}
	if err := v.OnChange(testsupport.NewStubField(websiteField, "foobar")); err != nil {
		t.Fatalf("field without controls should not fail: %v", err)
	}
	if logs.Len() != 2 {
		t.Fatalf("expected two warnings, got %d", logs.Len())
	}
}

func TestOnChange_EvaluationErrorShowsNotification(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	v := newURLValidator(t, fieldvalidator.WithLogger(zap.New(core)))
	control := testsupport.NewRecordingControl()
	field := bindStub(t, v, control)

	if err := field.SetValue(12345); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, shown := control.Active()[websiteField]; !shown {
		t.Fatalf("expected notification for unclassifiable value")
	}
	if logs.FilterField(zap.String("rule", rules.NameURL)).Len() != 1 {
		t.Fatalf("expected evaluation warning to be logged")
	}
}

func TestOnChange_HostFailurePropagates(t *testing.T) {
	hostErr := errors.New("control detached")
	failing := testsupport.NewRecordingControl()
	failing.Err = hostErr
	healthy := testsupport.NewRecordingControl()
	field := bindStub(t, newURLValidator(t), failing, healthy)

	err := field.SetValue("foobar")
	if !errors.Is(err, hostErr) {
		t.Fatalf("expected host error to propagate, got %v", err)
	}
	if _, shown := healthy.Active()[websiteField]; !shown {
		t.Fatalf("expected remaining controls to still receive the notification")
	}
}

func TestMessage_SanitisedAndDefaulted(t *testing.T) {
	v := newURLValidator(t, fieldvalidator.WithMessage(`<b>Bad</b>   link <script>alert(1)</script>can't  use`))
	if got := v.Message(); got != "Bad link can't use" {
		t.Fatalf("unexpected sanitised message %q", got)
	}

	encoded := newURLValidator(t, fieldvalidator.WithMessage("Fix &lt;b&gt;this&lt;/b&gt; link"))
	if got := encoded.Message(); got != "Fix this link" {
		t.Fatalf("expected encoded markup stripped, got %q", got)
	}

	for _, raw := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;img src=x onerror=alert(1)&amp;gt;",
		"&lt;<b>i</b>mg src=x&gt;",
	} {
		got := newURLValidator(t, fieldvalidator.WithMessage(raw)).Message()
		if strings.Contains(got, "<") {
			t.Fatalf("message %q kept markup: %q", raw, got)
		}
	}

	blank := newURLValidator(t, fieldvalidator.WithMessage("<img src=x>"))
	if got := blank.Message(); got != fieldvalidator.DefaultMessage {
		t.Fatalf("expected default message, got %q", got)
	}
}

func TestMessage_Localised(t *testing.T) {
	catalog := messages.NewCatalog("en")
	catalog.Add("es", map[string]string{"website.invalid": "URL no válida"})

	v := newURLValidator(t,
		fieldvalidator.WithTranslator(catalog, "website.invalid"),
		fieldvalidator.WithLocale("es-ES"),
	)
	if got := v.Message(); got != "URL no válida" {
		t.Fatalf("expected localised message, got %q", got)
	}

	fallback := newURLValidator(t, fieldvalidator.WithTranslator(catalog, "missing.key"))
	if got := fallback.Message(); got != urlMessage {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestWithKey_OverridesNotificationKey(t *testing.T) {
	control := testsupport.NewRecordingControl()
	v := newURLValidator(t, fieldvalidator.WithKey("websiteurl.format"))
	field := bindStub(t, v, control)
	_ = field.SetValue("foobar")

	if got := control.Calls()[0].Key; got != "websiteurl.format" {
		t.Fatalf("expected custom key, got %q", got)
	}
	if !strings.HasSuffix(v.HandlerKey(), "websiteurl.format") {
		t.Fatalf("expected handler key to follow notification key, got %q", v.HandlerKey())
	}
}
