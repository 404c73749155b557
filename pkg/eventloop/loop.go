// Package eventloop provides the single dispatch loop that owns all assistant
// state. Recognizer, speech, network and timer callbacks never touch state
// directly; they hop onto the loop with Post.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrLoopStopped = errors.New("event loop stopped")

type Timer interface {
	// Stop cancels the timer. It reports whether the timer was still pending.
	Stop() bool
}

type Loop interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
	// Async runs work off the loop and then posts done back onto it.
	Async(work func(), done func())
	// Call runs fn on the loop and waits for it to finish.
	Call(ctx context.Context, fn func()) error
	Now() time.Time
}

type EventLoop struct {
	log     *logrus.Logger
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	stopped atomic.Bool
}

func New(log *logrus.Logger) *EventLoop {
	return &EventLoop{
		log:   log,
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run dispatches callbacks until ctx is cancelled. Pending background work is
// awaited before Run returns.
func (l *EventLoop) Run(ctx context.Context) error {
	defer func() {
		l.stopped.Store(true)
		close(l.done)
		l.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			l.dispatch(fn)
		}
	}
}

func (l *EventLoop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithFields(logrus.Fields{
				"component": "eventloop",
				"panic":     r,
			}).Error("Recovered from panic in loop callback")
		}
	}()
	fn()
}

func (l *EventLoop) Post(fn func()) {
	if l.stopped.Load() {
		return
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

func (l *EventLoop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.cancelled.Load() {
				return
			}
			t.fired.Store(true)
			fn()
		})
	})
	return t
}

func (l *EventLoop) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{stop: make(chan struct{})}
	ticker := time.NewTicker(d)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if t.cancelled.Load() {
						return
					}
					fn()
				})
			case <-t.stop:
				return
			case <-l.done:
				return
			}
		}
	}()

	return t
}

func (l *EventLoop) Async(work func(), done func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		work()
		if done != nil {
			l.Post(done)
		}
	}()
}

func (l *EventLoop) Call(ctx context.Context, fn func()) error {
	if l.stopped.Load() {
		return ErrLoopStopped
	}

	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *EventLoop) Now() time.Time {
	return time.Now()
}

type loopTimer struct {
	timer     *time.Timer
	cancelled atomic.Bool
	fired     atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.fired.Load() {
		return false
	}
	t.timer.Stop()
	return !t.cancelled.Swap(true)
}

type tickerTimer struct {
	stop      chan struct{}
	cancelled atomic.Bool
}

func (t *tickerTimer) Stop() bool {
	if t.cancelled.Swap(true) {
		return false
	}
	close(t.stop)
	return true
}
