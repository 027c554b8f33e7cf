package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-formrules/pkg/host"
)

// Loop is a serial host.Dispatcher: posted work runs in order on a single
// goroutine, standing in for a host UI thread. Drain and Close must not be
// called from work running on the loop.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

var _ host.Dispatcher = (*Loop)(nil)

// NewLoop starts a loop goroutine. Call Close to stop it.
func NewLoop() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post enqueues fn. Work posted after Close is dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// Drain blocks until all work posted before the call has run.
func (l *Loop) Drain(ctx context.Context) error {
	marker := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, func() { close(marker) })
	l.mu.Unlock()
	l.signal()

	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close runs the remaining queued work and stops the loop goroutine.
func (l *Loop) Close() {
	l.mu.Lock()
	already := l.closed
	l.closed = true
	l.mu.Unlock()
	if !already {
		l.signal()
	}
	<-l.done
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			if l.closed {
				l.mu.Unlock()
				return
			}
			l.mu.Unlock()
			<-l.wake
			continue
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}
