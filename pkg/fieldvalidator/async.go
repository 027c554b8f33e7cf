package fieldvalidator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formrules/pkg/host"
	"github.com/goliatone/go-formrules/pkg/rules"
)

// AsyncCheck is a validity check that may block, such as a duplicate lookup
// against a remote data source. It must honour ctx cancellation.
type AsyncCheck func(ctx context.Context, value any) (bool, error)

// AsyncValidator runs an AsyncCheck for each change and applies the verdict on
// the host dispatcher. A newer change cancels the in-flight check for the same
// field, and only the verdict of the most recent change is ever applied.
type AsyncValidator struct {
	notifier
	check      AsyncCheck
	precheck   rules.Rule
	dispatcher host.Dispatcher
	cfg        config

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	closed   bool
	base     context.Context
	stopBase context.CancelFunc
	wg       sync.WaitGroup
}

// NewAsync constructs an AsyncValidator. Verdicts are posted to dispatcher so
// they land on the host's thread; pass host.Inline only when the host has no
// thread affinity.
func NewAsync(fieldName string, check AsyncCheck, dispatcher host.Dispatcher, options ...Option) (*AsyncValidator, error) {
	fieldName = strings.TrimSpace(fieldName)
	if fieldName == "" {
		return nil, ErrFieldNameRequired
	}
	if check == nil {
		return nil, ErrCheckRequired
	}
	if dispatcher == nil {
		return nil, ErrDispatcherRequired
	}
	cfg := newConfig(fieldName, options)
	base, stop := context.WithCancel(context.Background())
	return &AsyncValidator{
		notifier:   newNotifier(fieldName, cfg),
		check:      check,
		precheck:   cfg.precheck,
		dispatcher: dispatcher,
		cfg:        cfg,
		base:       base,
		stopBase:   stop,
	}, nil
}

// Field returns the bound field name.
func (a *AsyncValidator) Field() string { return a.field }

// Key returns the notification key.
func (a *AsyncValidator) Key() string { return a.key }

// HandlerKey is the key the change handler is registered under.
func (a *AsyncValidator) HandlerKey() string { return handlerKeyPrefix + "async:" + a.key }

// Bind registers OnChange with the named field of form.
func (a *AsyncValidator) Bind(form host.FormContext) error {
	return bind(form, a.field, a.HandlerKey(), a.OnChange)
}

// OnLoad binds the validator, logging instead of failing when the field is
// missing.
func (a *AsyncValidator) OnLoad(form host.FormContext) {
	if err := a.Bind(form); err != nil {
		a.logger.Warn("async validator not bound", zap.Error(err))
	}
}

// OnChange supersedes any in-flight check and starts a new one. When a
// precheck is configured and fails, the notification is set immediately and
// no check is started.
func (a *AsyncValidator) OnChange(field host.Field) error {
	if field == nil {
		a.logger.Warn("change event without field")
		return nil
	}
	controls := field.Controls()
	if len(controls) == 0 {
		a.logger.Warn("field has no bound controls")
		return nil
	}
	value := field.Value()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.seq++
	seq := a.seq

	if a.precheck != nil {
		verdict := rules.Evaluate(a.precheck, value)
		if verdict.Err != nil {
			a.logger.Warn("precheck evaluation failed; treating value as invalid", zap.Error(verdict.Err))
		}
		if !verdict.Valid {
			a.mu.Unlock()
			return a.apply(controls, false)
		}
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if a.cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(a.base, a.cfg.timeout)
	} else {
		ctx, cancel = context.WithCancel(a.base)
	}
	a.cancel = cancel
	a.wg.Add(1)
	a.mu.Unlock()

	go a.run(ctx, cancel, seq, value, controls)
	return nil
}

func (a *AsyncValidator) run(ctx context.Context, cancel context.CancelFunc, seq uint64, value any, controls []host.Control) {
	defer a.wg.Done()
	defer cancel()

	ok, err := a.check(ctx, value)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		a.logger.Debug("async check superseded", zap.Uint64("seq", seq))
		return
	}
	a.dispatcher.Post(func() {
		a.complete(seq, controls, ok, err)
	})
}

func (a *AsyncValidator) complete(seq uint64, controls []host.Control, ok bool, err error) {
	a.mu.Lock()
	stale := a.closed || seq != a.seq
	a.mu.Unlock()
	if stale {
		a.logger.Debug("dropping stale async verdict", zap.Uint64("seq", seq))
		return
	}

	valid := ok && err == nil
	if err != nil {
		a.logger.Warn("async check failed; treating value as invalid", zap.Error(err))
	}
	if applyErr := a.apply(controls, valid); applyErr != nil {
		a.logger.Error("apply async verdict", zap.Error(applyErr))
	}
}

// Close cancels any in-flight check and waits for check goroutines to exit.
// Verdicts that complete after Close are discarded.
func (a *AsyncValidator) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()

	a.stopBase()
	a.wg.Wait()
	return nil
}
