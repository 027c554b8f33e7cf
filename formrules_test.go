package formrules_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	formrules "github.com/goliatone/go-formrules"
	"github.com/goliatone/go-formrules/pkg/host/memory"
	"github.com/goliatone/go-formrules/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestURLValidator_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []testsupport.Call
	}{
		{
			name:   "not a url",
			values: []string{"foobar"},
			want: []testsupport.Call{
				{Op: testsupport.OpSet, Key: "websiteurl", Message: formrules.DefaultURLMessage},
			},
		},
		{
			name:   "fixed after invalid",
			values: []string{"foo", "https://learn.develop1.net"},
			want: []testsupport.Call{
				{Op: testsupport.OpSet, Key: "websiteurl", Message: formrules.DefaultURLMessage},
				{Op: testsupport.OpClear, Key: "websiteurl"},
			},
		},
		{
			name:   "empty",
			values: []string{""},
			want: []testsupport.Call{
				{Op: testsupport.OpSet, Key: "websiteurl", Message: formrules.DefaultURLMessage},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			control := testsupport.NewRecordingControl()
			field := testsupport.NewStubField("websiteurl", nil, control)
			form := testsupport.NewStubForm(field)

			v, err := formrules.URLValidator("websiteurl")
			if err != nil {
				t.Fatalf("url validator: %v", err)
			}
			if err := v.Bind(form); err != nil {
				t.Fatalf("bind: %v", err)
			}
			for _, value := range tc.values {
				_ = field.SetValue(value)
			}

			if diff := cmp.Diff(tc.want, control.Calls()); diff != "" {
				t.Fatalf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAttach_FromManifest(t *testing.T) {
	store, err := formrules.LoadManifest(os.DirFS("pkg/manifest/testdata/forms"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	form, ok := store.Form("account.main")
	if !ok {
		t.Fatalf("account.main missing from %v", store.Forms())
	}

	host := memory.NewForm()
	host.MustAddField("websiteurl", "not a url")
	host.MustAddField("emailaddress1", "")

	set, err := formrules.Attach(context.Background(), host, form)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if set.Len() != len(form.Fields) {
		t.Fatalf("expected %d validators, got %d", len(form.Fields), set.Len())
	}

	website, _ := host.Lookup("websiteurl")
	if err := website.FireOnChange(); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if msg, ok := website.BoundControls()[0].Notification("websiteurl"); !ok || msg != formrules.DefaultURLMessage {
		t.Fatalf("expected notification, got %q (%v)", msg, ok)
	}
	if err := website.SetValue("https://learn.develop1.net"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if keys := website.BoundControls()[0].Keys(); len(keys) != 0 {
		t.Fatalf("expected notification cleared, got %v", keys)
	}
}

func TestAttach_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := formrules.Attach(ctx, memory.NewForm(), formrules.ManifestForm{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := formrules.Attach(context.Background(), nil, formrules.ManifestForm{}); err == nil {
		t.Fatalf("expected error for nil host")
	}
}
