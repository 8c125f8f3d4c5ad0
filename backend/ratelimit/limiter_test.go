package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinWindow(t *testing.T) {
	l := NewLimiter(50 * time.Millisecond)
	defer l.Close()

	assert.True(t, l.Allow(1, ActionCreatePost))
	assert.False(t, l.Allow(1, ActionCreatePost))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow(1, ActionCreatePost))
}

func TestActionsThrottledIndependently(t *testing.T) {
	l := NewLimiter(time.Minute)
	defer l.Close()

	assert.True(t, l.Allow(1, ActionCreatePost))
	assert.True(t, l.Allow(1, ActionReport))
	assert.True(t, l.Allow(2, ActionCreatePost))

	assert.False(t, l.Allow(1, ActionCreatePost))
	assert.False(t, l.Allow(1, ActionReport))
}

func TestReset(t *testing.T) {
	l := NewLimiter(time.Minute)
	defer l.Close()

	assert.True(t, l.Allow(1, ActionCreatePost))
	assert.False(t, l.Allow(1, ActionCreatePost))

	l.Reset()
	assert.True(t, l.Allow(1, ActionCreatePost))
}

func TestZeroIntervalAlwaysAllows(t *testing.T) {
	l := NewLimiter(0)
	defer l.Close()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(1, ActionCreateReview))
	}
}
