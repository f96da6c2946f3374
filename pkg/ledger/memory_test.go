package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpe/payvalidator/pkg/ledger"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		_, err := s.Get(ctx, "session:none")
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		_, err := s.Get(ctx, "")
		assert.ErrorIs(t, err, ledger.ErrEmptyKey)

		err = s.Apply(ctx, ledger.ChangeSet{Writes: []ledger.Write{{Key: "a", Value: []byte("1")}, {Key: ""}}})
		assert.ErrorIs(t, err, ledger.ErrEmptyKey)
		assert.Equal(t, 0, s.Len(), "a rejected change set must not be partially applied")
	})

	t.Run("apply and read back copies", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		val := []byte(`{"a":1}`)
		require.NoError(t, s.Apply(ctx, ledger.ChangeSet{Writes: []ledger.Write{{Key: "k", Value: val}}}))

		val[0] = 'x'
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))

		got[0] = 'y'
		again, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(again))
	})

	t.Run("events window", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		for _, topic := range []string{"a", "b", "c", "d"} {
			require.NoError(t, s.Apply(ctx, ledger.ChangeSet{Events: []ledger.Event{{Topic: topic}}}))
		}

		all, err := s.Events(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "a", all[0].Topic)

		page, err := s.Events(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "b", page[0].Topic)
		assert.Equal(t, "c", page[1].Topic)

		tail, err := s.Events(ctx, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, tail)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := s.Apply(cctx, ledger.ChangeSet{Writes: []ledger.Write{{Key: "k", Value: []byte("v")}}})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, s.Len())
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "instance:BACKEND", ledger.InstanceKey("BACKEND"))
	assert.Equal(t, "session:pay_1", ledger.PersistentKey("pay_1"))
	assert.True(t, ledger.IsPersistentKey(ledger.PersistentKey("pay_1")))
	assert.False(t, ledger.IsPersistentKey(ledger.InstanceKey("BACKEND")))
}
