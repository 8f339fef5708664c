package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	krl := New(0.1, 3)
	defer krl.Stop()

	for range 3 {
		assert.True(t, krl.Allow("10.0.0.1"))
	}
	assert.False(t, krl.Allow("10.0.0.1"))
}

func TestAllow_KeysIndependent(t *testing.T) {
	krl := New(0.1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))
	assert.True(t, krl.Allow("b"))
}

func TestReset(t *testing.T) {
	krl := New(0.1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))

	krl.Reset("a")
	assert.True(t, krl.Allow("a"))
}

func TestSweep_EvictsIdleKeys(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	base := time.Now()
	krl.now = func() time.Time { return base }
	krl.Allow("old")

	krl.now = func() time.Time { return base.Add(idleTTL - time.Second) }
	krl.Allow("fresh")

	krl.now = func() time.Time { return base.Add(idleTTL + time.Second) }
	krl.sweep(idleTTL)

	assert.Equal(t, 1, krl.Len())
}

func TestWait_ContextCanceled(t *testing.T) {
	krl := New(0.001, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, krl.Wait(ctx, "a"))
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	assert.NotPanics(t, krl.Stop)
}
