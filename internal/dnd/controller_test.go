package dnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestController_SetBroadcastsOnlyOnChange(t *testing.T) {
	c := New(false, nil)

	var fired []bool
	c.OnChange(func(enabled bool) { fired = append(fired, enabled) })

	assert.True(t, c.Set(true))
	assert.Equal(t, []bool{true}, fired)

	// Same value again: no-op, no broadcast
	assert.False(t, c.Set(true))
	assert.Equal(t, []bool{true}, fired)

	assert.True(t, c.Set(false))
	assert.Equal(t, []bool{true, false}, fired)
}

func TestController_InitialState(t *testing.T) {
	assert.False(t, New(false, nil).Get())
	assert.True(t, New(true, nil).Get())
}

func TestController_Toggle(t *testing.T) {
	c := New(false, nil)

	assert.True(t, c.Toggle())
	assert.True(t, c.Get())
	assert.False(t, c.Toggle())
	assert.False(t, c.Get())
}
