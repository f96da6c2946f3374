package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpe/payvalidator/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) (T, bool) {
	t.Helper()
	select {
	case v, ok := <-sub.Receive():
		return v, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero, false
}

func TestMemory_Publish(t *testing.T) {
	t.Parallel()

	t.Run("delivers to all subscribers", func(t *testing.T) {
		b := broadcast.NewMemory[string](4)
		defer b.Close()

		ctx := context.Background()
		s1 := b.Subscribe(ctx)
		s2 := b.Subscribe(ctx)

		require.NoError(t, b.Publish(ctx, "validated"))

		v, ok := receive(t, s1)
		require.True(t, ok)
		assert.Equal(t, "validated", v)

		v, ok = receive(t, s2)
		require.True(t, ok)
		assert.Equal(t, "validated", v)
	})

	t.Run("filters select values", func(t *testing.T) {
		b := broadcast.NewMemory[string](4)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx, func(s string) bool { return s != "registered" })

		require.NoError(t, b.Publish(ctx, "registered"))
		require.NoError(t, b.Publish(ctx, "deactivated"))

		v, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, "deactivated", v)
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		b := broadcast.NewMemory[int](1)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)

		for i := range 5 {
			require.NoError(t, b.Publish(ctx, i))
		}

		v, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, 0, v)
		assert.Equal(t, uint64(4), sub.Dropped())
		assert.Equal(t, 1, b.Len())
	})

	t.Run("closed subscriber is pruned", func(t *testing.T) {
		b := broadcast.NewMemory[int](1)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		require.NoError(t, b.Publish(ctx, 1))
		assert.Equal(t, 0, b.Len())
	})
}

func TestMemory_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("context cancellation unsubscribes", func(t *testing.T) {
		b := broadcast.NewMemory[string](4)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		_, ok := receive(t, sub)
		assert.False(t, ok)
		assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("subscribe after close returns closed subscriber", func(t *testing.T) {
		b := broadcast.NewMemory[string](4)
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())

		sub := b.Subscribe(context.Background())
		_, ok := receive(t, sub)
		assert.False(t, ok)
		assert.NoError(t, b.Publish(context.Background(), "ignored"))
	})

	t.Run("close ends active subscriptions", func(t *testing.T) {
		b := broadcast.NewMemory[string](4)
		sub := b.Subscribe(context.Background())

		require.NoError(t, b.Close())
		_, ok := receive(t, sub)
		assert.False(t, ok)
	})
}
