// Package eventloop bridges I/O goroutines and the single-threaded GUI
// main loop.
//
// The rendering substrate owns all GUI objects on one thread and forbids
// cross-thread calls into them. Instead of touching GUI state from socket
// or D-Bus goroutines, work is dispatched onto a run queue that the GUI
// loop drains on a fixed-period tick. Ticks are best-effort and
// non-preemptive: a long synchronous GUI callback delays pending work by
// up to one tick period, which is an accepted latency/simplicity
// trade-off.
package eventloop

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the target period of the GUI-owned drain tick.
const DefaultTickInterval = 10 * time.Millisecond

// Bridge is a run queue drained to quiescence by the GUI tick.
//
// Dispatch is the "ensure scheduled" primitive: it is safe from any
// goroutine and from non-async contexts (GUI callbacks, timer callbacks)
// alike, and never assumes a running scheduler. Drain must only ever be
// called from the GUI thread.
type Bridge struct {
	mu     sync.Mutex
	tasks  []func()
	wake   func()
	logger *slog.Logger
}

// New creates an empty Bridge.
func New(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{logger: logger}
}

// SetWake installs an optional hook invoked when work arrives on an empty
// queue. The daemon points this at the GUI loop's idle-add so dispatched
// work does not have to wait out a full tick period.
func (b *Bridge) SetWake(wake func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wake = wake
}

// Dispatch enqueues fn to run on the next drain. It never blocks and
// never runs fn inline, even when called from the GUI thread, so callers
// get uniform ordering semantics regardless of calling context.
func (b *Bridge) Dispatch(fn func()) {
	b.mu.Lock()
	wasEmpty := len(b.tasks) == 0
	b.tasks = append(b.tasks, fn)
	wake := b.wake
	b.mu.Unlock()

	if wasEmpty && wake != nil {
		wake()
	}
}

// Drain runs every task that is currently ready, including tasks enqueued
// by the tasks themselves, then returns control to the GUI loop. Returns
// the number of tasks executed.
func (b *Bridge) Drain() int {
	total := 0
	for {
		b.mu.Lock()
		batch := b.tasks
		b.tasks = nil
		b.mu.Unlock()

		if len(batch) == 0 {
			return total
		}
		for _, fn := range batch {
			fn()
		}
		total += len(batch)
	}
}

// Pending returns the number of tasks waiting for the next drain.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tasks)
}
