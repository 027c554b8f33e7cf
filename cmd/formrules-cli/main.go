package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	formrules "github.com/goliatone/go-formrules"
	"github.com/goliatone/go-formrules/pkg/host/memory"
	"github.com/goliatone/go-formrules/pkg/manifest"
	"github.com/goliatone/go-formrules/pkg/openapi"
	"github.com/goliatone/go-formrules/pkg/prompt"
)

type assignments []string

func (a *assignments) String() string { return strings.Join(*a, ",") }

func (a *assignments) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected field=value, got %q", value)
	}
	*a = append(*a, value)
	return nil
}

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the process exit code so deferred cleanup runs before exit.
func realMain(args []string) int {
	flags := flag.NewFlagSet("formrules-cli", flag.ContinueOnError)
	manifestDir := flags.String("manifest", "", "directory of rule manifests (json/yaml)")
	specPath := flags.String("openapi", "", "OpenAPI document to derive rules from")
	opID := flags.String("operation", "", "operation ID used with -openapi")
	formID := flags.String("form", "", "form ID used with -manifest")
	interactive := flags.Bool("interactive", false, "prompt for each field value")
	verbose := flags.Bool("verbose", false, "enable debug logging")
	var sets assignments
	flags.Var(&sets, "set", "field=value change to apply (repeatable)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, logger, options{
		manifestDir: *manifestDir,
		specPath:    *specPath,
		operation:   *opID,
		form:        *formID,
		sets:        sets,
		interactive: *interactive,
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, prompt.ErrAborted):
		logger.Info("aborted")
		return 130
	default:
		logger.Error("formrules-cli failed", zap.Error(err))
		return 1
	}
}

type options struct {
	manifestDir string
	specPath    string
	operation   string
	form        string
	sets        []string
	interactive bool
}

func run(ctx context.Context, logger *zap.Logger, opts options) error {
	form, err := resolveForm(ctx, opts)
	if err != nil {
		return err
	}
	logger.Debug("form resolved",
		zap.String("form", form.ID),
		zap.String("source", form.Source),
		zap.Int("bindings", len(form.Fields)),
	)

	target := memory.NewForm()
	for _, name := range form.FieldNames() {
		if _, err := target.AddField(name, ""); err != nil {
			return err
		}
	}

	set, err := formrules.Attach(ctx, target, form, manifest.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = set.Close() }()

	if opts.interactive {
		return prompt.NewSession(target, nil).Run(ctx)
	}

	for _, assignment := range opts.sets {
		name, value, _ := strings.Cut(assignment, "=")
		field, ok := target.Lookup(name)
		if !ok {
			logger.Warn("unknown field", zap.String("field", name))
			continue
		}
		if err := field.SetValue(value); err != nil {
			logger.Error("change failed", zap.String("field", name), zap.Error(err))
		}
	}
	fmt.Print(prompt.FormatState(target))
	return nil
}

func resolveForm(ctx context.Context, opts options) (manifest.Form, error) {
	switch {
	case opts.specPath != "":
		if opts.operation == "" {
			return manifest.Form{}, errors.New("-operation is required with -openapi")
		}
		doc, err := openapi.LoadFile(ctx, opts.specPath)
		if err != nil {
			return manifest.Form{}, err
		}
		return openapi.FormFromOperation(ctx, doc, opts.operation, openapi.WithValidation())
	case opts.manifestDir != "":
		store, err := formrules.LoadManifest(os.DirFS(opts.manifestDir))
		if err != nil {
			return manifest.Form{}, err
		}
		if opts.form == "" {
			forms := store.Forms()
			if len(forms) != 1 {
				return manifest.Form{}, fmt.Errorf("-form is required when the manifest holds %d forms", len(forms))
			}
			return forms[0], nil
		}
		form, ok := store.Form(opts.form)
		if !ok {
			return manifest.Form{}, fmt.Errorf("form %q not found in %s", opts.form, opts.manifestDir)
		}
		return form, nil
	default:
		return manifest.Form{}, errors.New("one of -manifest or -openapi is required")
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
