package eventloop

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-time Loop. Nothing runs until Flush or Advance is
// called, which makes timer interleavings reproducible in tests.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	queue   []func()
	timers  []*manualTimer
	nextSeq int
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	return m.schedule(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Timer {
	return m.schedule(d, d, fn)
}

func (m *Manual) schedule(d, period time.Duration, fn func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSeq++
	t := &manualTimer{
		owner:  m,
		due:    m.now.Add(d),
		period: period,
		fn:     fn,
		seq:    m.nextSeq,
	}
	m.timers = append(m.timers, t)
	return t
}

// Async runs work synchronously and queues done.
func (m *Manual) Async(work func(), done func()) {
	work()
	if done != nil {
		m.Post(done)
	}
}

func (m *Manual) Call(_ context.Context, fn func()) error {
	fn()
	m.Flush()
	return nil
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the virtual clock without firing timers that became due.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Flush runs every queued callback, including ones queued while flushing.
func (m *Manual) Flush() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		fn()
	}
}

// Advance moves virtual time forward by d, firing due timers in order.
func (m *Manual) Advance(d time.Duration) {
	m.Flush()

	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}

		m.mu.Lock()
		if t.due.After(m.now) {
			m.now = t.due
		}
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			t.done = true
			m.removeLocked(t)
		}
		m.mu.Unlock()

		t.fn()
		m.Flush()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*manualTimer
	for _, t := range m.timers {
		if !t.due.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Pending reports the number of armed timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

type manualTimer struct {
	owner  *Manual
	due    time.Time
	period time.Duration
	fn     func()
	seq    int
	done   bool
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.owner.removeLocked(t)
	return true
}
