package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	krl := New(PerMinute(6), 3)
	defer krl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, krl.Allow("user-a"), "burst token %d", i)
	}
	assert.False(t, krl.Allow("user-a"), "bucket should be empty")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(PerMinute(6), 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("user-a"))
	assert.False(t, krl.Allow("user-a"))
	assert.True(t, krl.Allow("user-b"), "a drained key must not affect others")
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(PerMinute(1), 1)
	defer krl.Stop()

	require.True(t, krl.Allow("user-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "user-a")
	assert.Error(t, err, "wait must give up when the context expires")
}

func TestLen_TracksKeys(t *testing.T) {
	krl := New(PerMinute(60), 1)
	defer krl.Stop()

	krl.Allow("user-a")
	krl.Allow("user-b")
	assert.Equal(t, 2, krl.Len())
}

func TestPerMinute(t *testing.T) {
	assert.InDelta(t, 0.1, PerMinute(6), 1e-9)
}
