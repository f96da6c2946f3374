package payvalidator_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/requestid"
)

var epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store    ledger.Store
	mem      *ledger.MemoryStore
	host     *ledger.Host
	clock    *ledger.ManualClock
	contract *payvalidator.Contract
	backend  auth.Keypair
	merchant auth.Principal
	signed   context.Context
}

func newFixture(t *testing.T, opts ...payvalidator.Option) *fixture {
	t.Helper()
	mem := ledger.NewMemoryStore()
	return newFixtureWithStore(t, mem, mem, opts...)
}

func newFixtureWithStore(t *testing.T, store ledger.Store, mem *ledger.MemoryStore, opts ...payvalidator.Option) *fixture {
	t.Helper()

	backend, err := auth.GenerateKeypair()
	require.NoError(t, err)
	merchant, err := auth.GenerateKeypair()
	require.NoError(t, err)

	clock := ledger.NewManualClock(epoch)
	host := ledger.NewHost(store,
		ledger.WithClock(clock),
		ledger.WithAuthorizer(auth.ContextAuthorizer{}),
	)
	t.Cleanup(func() { _ = host.Close() })

	return &fixture{
		store:    store,
		mem:      mem,
		host:     host,
		clock:    clock,
		contract: payvalidator.New(host, opts...),
		backend:  backend,
		merchant: merchant.Principal(),
		signed:   auth.WithSigner(context.Background(), backend.Principal()),
	}
}

// bootstrapped returns a fixture whose backend identity is already stored.
func bootstrapped(t *testing.T, opts ...payvalidator.Option) *fixture {
	t.Helper()
	f := newFixture(t, opts...)
	require.NoError(t, f.contract.Bootstrap(context.Background(), f.backend.Principal()))
	return f
}

func (f *fixture) register(t *testing.T, memo string, amount int64) {
	t.Helper()
	require.NoError(t, f.contract.Register(f.signed, memo, f.merchant, big.NewInt(amount)))
}

func (f *fixture) topics(t *testing.T) []string {
	t.Helper()
	events, err := f.contract.Events(context.Background(), 0, 0)
	require.NoError(t, err)
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Topic)
	}
	return out
}

func TestPaymentScenario(t *testing.T) {
	t.Parallel()
	f := bootstrapped(t)

	f.register(t, "pay_test123", 100)

	ok, err := f.contract.Validate(f.signed, "pay_test123", big.NewInt(50))
	assert.False(t, ok)
	assert.ErrorIs(t, err, payvalidator.ErrInsufficientAmount)
	assert.Equal(t, 3, payvalidator.CodeOf(err))

	s, found, err := f.contract.Fetch(context.Background(), "pay_test123")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, s.IsActive, "insufficient payment must leave the session open")

	ok, err = f.contract.Validate(f.signed, "pay_test123", big.NewInt(100))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.contract.Validate(f.signed, "pay_test123", big.NewInt(100))
	assert.False(t, ok)
	assert.ErrorIs(t, err, payvalidator.ErrSessionExpired)
	assert.Equal(t, 4, payvalidator.CodeOf(err))

	s, found, err = f.contract.Fetch(context.Background(), "pay_test123")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, s.IsActive)

	assert.Equal(t, []string{"registered", "validated"}, f.topics(t))
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		initialized, err := f.contract.Initialized(ctx)
		require.NoError(t, err)
		assert.False(t, initialized)

		require.NoError(t, f.contract.Bootstrap(ctx, f.backend.Principal()))

		other, err := auth.GenerateKeypair()
		require.NoError(t, err)
		err = f.contract.Bootstrap(ctx, other.Principal())
		assert.ErrorIs(t, err, payvalidator.ErrAlreadyInitialized)

		backend, err := f.contract.Backend(ctx)
		require.NoError(t, err)
		assert.Equal(t, f.backend.Principal(), backend, "second bootstrap must not replace the identity")

		initialized, err = f.contract.Initialized(ctx)
		require.NoError(t, err)
		assert.True(t, initialized)
	})

	t.Run("same principal twice", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		err := f.contract.Bootstrap(ctx, f.backend.Principal())
		assert.ErrorIs(t, err, payvalidator.ErrAlreadyInitialized)
	})

	t.Run("rejects malformed principal", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		err := f.contract.Bootstrap(ctx, auth.Principal("not-an-address"))
		assert.ErrorIs(t, err, auth.ErrInvalidPrincipal)

		_, err = f.contract.Backend(ctx)
		assert.ErrorIs(t, err, payvalidator.ErrUnauthorized)
	})
}

func TestAuthorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	stranger, err := auth.GenerateKeypair()
	require.NoError(t, err)

	t.Run("before bootstrap", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		err := f.contract.Register(f.signed, "pay_1", f.merchant, big.NewInt(1))
		assert.ErrorIs(t, err, payvalidator.ErrUnauthorized)
		assert.Equal(t, 5, payvalidator.CodeOf(err))
	})

	callers := map[string]context.Context{
		"unsigned":       ctx,
		"wrong signer":   auth.WithSigner(ctx, stranger.Principal()),
		"merchant alone": nil, // filled per fixture
	}

	for name, caller := range callers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := bootstrapped(t)
			f.register(t, "pay_1", 10)
			if caller == nil {
				caller = auth.WithSigner(ctx, f.merchant)
			}

			err := f.contract.Register(caller, "pay_2", f.merchant, big.NewInt(1))
			assert.ErrorIs(t, err, payvalidator.ErrUnauthorized)

			_, err = f.contract.Validate(caller, "pay_1", big.NewInt(10))
			assert.ErrorIs(t, err, payvalidator.ErrUnauthorized)

			err = f.contract.Deactivate(caller, "pay_1")
			assert.ErrorIs(t, err, payvalidator.ErrUnauthorized)

			s, found, err := f.contract.Fetch(ctx, "pay_1")
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, s.IsActive)

			_, found, err = f.contract.Fetch(ctx, "pay_2")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores active session", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 1_000_000)

		s, found, err := f.contract.Fetch(ctx, "pay_1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "pay_1", s.Memo)
		assert.Equal(t, f.merchant, s.Merchant)
		assert.Equal(t, "1000000", s.Amount.String())
		assert.True(t, s.IsActive)
		assert.Equal(t, epoch, s.CreatedAt)

		events, err := f.contract.Events(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		n, err := payvalidator.DecodeNotification(events[0])
		require.NoError(t, err)
		assert.Equal(t, payvalidator.TopicRegistered, n.Topic)
		assert.Equal(t, "pay_1", n.Memo)
		assert.Equal(t, f.merchant, n.Merchant)
		assert.Equal(t, "1000000", n.Amount.String())
	})

	t.Run("zero amount", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "free", 0)
		ok, err := f.contract.Validate(f.signed, "free", big.NewInt(0))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("amount is copied", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		amount := big.NewInt(100)
		require.NoError(t, f.contract.Register(f.signed, "pay_1", f.merchant, amount))
		amount.SetInt64(1)

		_, err := f.contract.Validate(f.signed, "pay_1", big.NewInt(50))
		assert.ErrorIs(t, err, payvalidator.ErrInsufficientAmount)
	})

	t.Run("active session is not replaced", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 100)

		err := f.contract.Register(f.signed, "pay_1", f.merchant, big.NewInt(1))
		assert.ErrorIs(t, err, payvalidator.ErrSessionActive)
		assert.Equal(t, 7, payvalidator.CodeOf(err))

		s, _, err := f.contract.Fetch(ctx, "pay_1")
		require.NoError(t, err)
		assert.Equal(t, "100", s.Amount.String())
		assert.Equal(t, []string{"registered"}, f.topics(t))
	})

	t.Run("replace active when enabled", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t, payvalidator.WithReplaceActive())
		f.register(t, "pay_1", 100)
		f.clock.Advance(time.Minute)
		f.register(t, "pay_1", 1)

		s, _, err := f.contract.Fetch(ctx, "pay_1")
		require.NoError(t, err)
		assert.Equal(t, "1", s.Amount.String())
		assert.Equal(t, epoch.Add(time.Minute), s.CreatedAt)
	})

	t.Run("consumed session is replaced", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 100)
		_, err := f.contract.Validate(f.signed, "pay_1", big.NewInt(100))
		require.NoError(t, err)

		f.register(t, "pay_1", 200)
		s, _, err := f.contract.Fetch(ctx, "pay_1")
		require.NoError(t, err)
		assert.True(t, s.IsActive)
		assert.Equal(t, "200", s.Amount.String())

		_, err = f.contract.Validate(f.signed, "pay_1", big.NewInt(100))
		assert.ErrorIs(t, err, payvalidator.ErrInsufficientAmount, "fresh terms apply")
	})

	t.Run("input validation", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		over := new(big.Int).Lsh(big.NewInt(1), 127)

		tests := []struct {
			name     string
			memo     string
			merchant auth.Principal
			amount   *big.Int
			want     error
		}{
			{"empty memo", "", f.merchant, big.NewInt(1), payvalidator.ErrInvalidMemo},
			{"long memo", strings.Repeat("m", 29), f.merchant, big.NewInt(1), payvalidator.ErrInvalidMemo},
			{"memo with space", "pay 1", f.merchant, big.NewInt(1), payvalidator.ErrInvalidMemo},
			{"bad merchant", "pay_1", auth.Principal("GBAD"), big.NewInt(1), payvalidator.ErrInvalidMerchant},
			{"nil amount", "pay_1", f.merchant, nil, payvalidator.ErrInvalidAmount},
			{"negative amount", "pay_1", f.merchant, big.NewInt(-1), payvalidator.ErrInvalidAmount},
			{"amount over int128", "pay_1", f.merchant, over, payvalidator.ErrInvalidAmount},
		}
		for _, tt := range tests {
			err := f.contract.Register(f.signed, tt.memo, tt.merchant, tt.amount)
			assert.ErrorIs(t, err, tt.want, tt.name)
		}
		assert.Empty(t, f.topics(t))
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown memo", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		ok, err := f.contract.Validate(f.signed, "missing", big.NewInt(1))
		assert.False(t, ok)
		assert.ErrorIs(t, err, payvalidator.ErrSessionNotFound)
		assert.Equal(t, 2, payvalidator.CodeOf(err))
	})

	t.Run("malformed input", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		_, err := f.contract.Validate(f.signed, "bad memo", big.NewInt(1))
		assert.ErrorIs(t, err, payvalidator.ErrInvalidMemo)
		_, err = f.contract.Validate(f.signed, "pay_1", nil)
		assert.ErrorIs(t, err, payvalidator.ErrInvalidAmount)
	})

	t.Run("overpayment accepted", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 100)
		ok, err := f.contract.Validate(f.signed, "pay_1", big.NewInt(1_000))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("negative observed amount is insufficient", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 0)
		_, err := f.contract.Validate(f.signed, "pay_1", big.NewInt(-5))
		assert.ErrorIs(t, err, payvalidator.ErrInsufficientAmount)
		assert.True(t, payvalidator.IsRetryable(err))
	})

	t.Run("failure events are diagnostic", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 100)

		sub := f.contract.Subscribe(ctx, payvalidator.TopicInsufficient, payvalidator.TopicExpired)
		defer sub.Close()

		reqCtx := requestid.WithContext(f.signed, "req-42")
		_, err := f.contract.Validate(reqCtx, "pay_1", big.NewInt(40))
		require.ErrorIs(t, err, payvalidator.ErrInsufficientAmount)

		ev := receive(t, sub.Receive())
		assert.True(t, ev.Diagnostic)
		n, err := payvalidator.DecodeNotification(ev)
		require.NoError(t, err)
		assert.Equal(t, payvalidator.TopicInsufficient, n.Topic)
		assert.Equal(t, "40", n.Amount.String())
		assert.Equal(t, "100", n.Expected.String())
		assert.Equal(t, "req-42", n.RequestID)
		assert.True(t, n.Diagnostic)

		require.NoError(t, f.contract.Deactivate(f.signed, "pay_1"))
		_, err = f.contract.Validate(f.signed, "pay_1", big.NewInt(100))
		require.ErrorIs(t, err, payvalidator.ErrSessionExpired)

		ev = receive(t, sub.Receive())
		assert.Equal(t, string(payvalidator.TopicExpired), ev.Topic)

		assert.Equal(t, []string{"registered", "deactivated"}, f.topics(t),
			"diagnostic events are never persisted")
	})

	t.Run("at most once under concurrency", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_race", 100)

		const callers = 32
		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			expired   atomic.Int32
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := f.contract.Validate(f.signed, "pay_race", big.NewInt(100))
				switch {
				case ok:
					successes.Add(1)
				case errors.Is(err, payvalidator.ErrSessionExpired):
					expired.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(callers-1), expired.Load())
		assert.Equal(t, []string{"registered", "validated"}, f.topics(t))
	})
}

func TestDeactivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown memo", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		err := f.contract.Deactivate(f.signed, "missing")
		assert.ErrorIs(t, err, payvalidator.ErrSessionNotFound)
		assert.Empty(t, f.topics(t))
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 100)

		require.NoError(t, f.contract.Deactivate(f.signed, "pay_1"))
		require.NoError(t, f.contract.Deactivate(f.signed, "pay_1"))

		s, _, err := f.contract.Fetch(ctx, "pay_1")
		require.NoError(t, err)
		assert.False(t, s.IsActive)
		assert.Equal(t, []string{"registered", "deactivated", "deactivated"}, f.topics(t))

		_, err = f.contract.Validate(f.signed, "pay_1", big.NewInt(100))
		assert.ErrorIs(t, err, payvalidator.ErrSessionExpired)
	})

	t.Run("after validation", func(t *testing.T) {
		t.Parallel()
		f := bootstrapped(t)
		f.register(t, "pay_1", 1)
		_, err := f.contract.Validate(f.signed, "pay_1", big.NewInt(1))
		require.NoError(t, err)
		require.NoError(t, f.contract.Deactivate(f.signed, "pay_1"))
	})
}

func TestFetch(t *testing.T) {
	t.Parallel()
	f := bootstrapped(t)

	_, found, err := f.contract.Fetch(context.Background(), "never")
	require.NoError(t, err)
	assert.False(t, found)

	for _, memo := range []string{"", "not a memo", "caf\u00e9", strings.Repeat("m", 29)} {
		_, found, err = f.contract.Fetch(context.Background(), memo)
		require.NoError(t, err, memo)
		assert.False(t, found, memo)
	}

	require.NoError(t, f.contract.Register(f.signed, strings.Repeat("m", 28), f.merchant, big.NewInt(1)))
	_, found, err = f.contract.Fetch(context.Background(), strings.Repeat("m", 28))
	require.NoError(t, err)
	assert.True(t, found, "28 bytes is the longest memo")
}

// failingStore applies nothing once armed.
type failingStore struct {
	*ledger.MemoryStore
	armed atomic.Bool
}

func (s *failingStore) Apply(ctx context.Context, cs ledger.ChangeSet) error {
	if s.armed.Load() {
		return errors.New("disk full")
	}
	return s.MemoryStore.Apply(ctx, cs)
}

func TestCommitFailureLeavesNoTrace(t *testing.T) {
	t.Parallel()
	mem := ledger.NewMemoryStore()
	store := &failingStore{MemoryStore: mem}
	f := newFixtureWithStore(t, store, mem)
	require.NoError(t, f.contract.Bootstrap(context.Background(), f.backend.Principal()))
	f.register(t, "pay_1", 100)

	store.armed.Store(true)
	ok, err := f.contract.Validate(f.signed, "pay_1", big.NewInt(100))
	assert.False(t, ok)
	require.ErrorIs(t, err, ledger.ErrCommitFailed)
	assert.Equal(t, 0, payvalidator.CodeOf(err), "storage failures are not contract errors")

	store.armed.Store(false)
	s, _, err := f.contract.Fetch(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, []string{"registered"}, f.topics(t))

	ok, err = f.contract.Validate(f.signed, "pay_1", big.NewInt(100))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisteredEventCarriesRequestID(t *testing.T) {
	t.Parallel()
	f := bootstrapped(t)
	ctx := requestid.WithContext(f.signed, "req-7")
	require.NoError(t, f.contract.Register(ctx, "pay_1", f.merchant, big.NewInt(5)))

	events, err := f.contract.Events(context.Background(), 0, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	n, err := payvalidator.DecodeNotification(events[0])
	require.NoError(t, err)
	assert.Equal(t, "req-7", n.RequestID)
	assert.Equal(t, epoch, events[0].EmittedAt)
}

func receive(t *testing.T, ch <-chan ledger.Event) ledger.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ledger.Event{}
	}
}
