package eventloop

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridge_DispatchThenDrain(t *testing.T) {
	b := New(nil)

	var ran []int
	b.Dispatch(func() { ran = append(ran, 1) })
	b.Dispatch(func() { ran = append(ran, 2) })

	assert.Equal(t, 2, b.Pending())
	assert.Equal(t, 2, b.Drain())
	assert.Equal(t, []int{1, 2}, ran, "tasks run in dispatch order")
	assert.Equal(t, 0, b.Pending())
}

func TestBridge_DrainEmptyIsNoOp(t *testing.T) {
	b := New(nil)
	assert.Equal(t, 0, b.Drain())
}

func TestBridge_DrainRunsTasksEnqueuedMidDrain(t *testing.T) {
	b := New(nil)

	var ran []string
	b.Dispatch(func() {
		ran = append(ran, "outer")
		b.Dispatch(func() { ran = append(ran, "inner") })
	})

	// A single drain reaches quiescence, including follow-up work
	assert.Equal(t, 2, b.Drain())
	assert.Equal(t, []string{"outer", "inner"}, ran)
}

func TestBridge_DispatchFromManyGoroutines(t *testing.T) {
	b := New(nil)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Dispatch(func() {})
		}()
	}
	wg.Wait()

	assert.Equal(t, n, b.Drain())
}

func TestBridge_WakeFiresOnceForBurst(t *testing.T) {
	b := New(nil)

	wakes := 0
	b.SetWake(func() { wakes++ })

	b.Dispatch(func() {})
	b.Dispatch(func() {})
	b.Dispatch(func() {})

	// Only the transition from empty to non-empty wakes the GUI loop
	assert.Equal(t, 1, wakes)

	b.Drain()
	b.Dispatch(func() {})
	assert.Equal(t, 2, wakes)
}
