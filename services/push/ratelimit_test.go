package push

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRateStore struct {
	counts      map[string]int64
	ttls        map[string]time.Duration
	incrErr     error
	expireErr   error
	expireCalls int
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (s *fakeRateStore) Incr(ctx context.Context, key string) (int64, error) {
	if s.incrErr != nil {
		return 0, s.incrErr
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *fakeRateStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if s.expireErr != nil {
		return s.expireErr
	}
	s.expireCalls++
	s.ttls[key] = ttl
	return nil
}

func newTestLimiter(store RateLimitStore, max int, failOpen bool) *RateLimiter {
	l := NewRateLimiter(store, max, time.Minute, time.Second, failOpen, zap.NewNop())
	l.sleep = func(time.Duration) {}
	return l
}

func TestRateLimiterIncrementsUnderThreshold(t *testing.T) {
	store := newFakeRateStore()
	l := newTestLimiter(store, 3, true)

	require.NoError(t, l.Apply(context.Background(), "user:1"))
	assert.Equal(t, int64(1), store.counts["push:rl:user:1"])

	require.NoError(t, l.Apply(context.Background(), "user:1"))
	assert.Equal(t, int64(2), store.counts["push:rl:user:1"])

	// The window TTL is stamped by the increment that creates the key.
	assert.Equal(t, 1, store.expireCalls)
	assert.Equal(t, time.Minute, store.ttls["push:rl:user:1"])
}

func TestRateLimiterRestampsWindowAfterExpiry(t *testing.T) {
	store := newFakeRateStore()
	l := newTestLimiter(store, 3, true)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Apply(context.Background(), "user:1"))
	}

	// The window lapses and the key vanishes; the next send must create a
	// fresh counter that expires, not one that lives forever at the cap.
	delete(store.counts, "push:rl:user:1")

	require.NoError(t, l.Apply(context.Background(), "user:1"))
	assert.Equal(t, int64(1), store.counts["push:rl:user:1"])
	assert.Equal(t, 2, store.expireCalls, "a recreated counter gets a fresh window TTL")
}

func TestRateLimiterWaitsThenRechecks(t *testing.T) {
	store := newFakeRateStore()
	store.counts["push:rl:user:1"] = 3
	l := newTestLimiter(store, 3, true)

	slept := 0
	l.sleep = func(time.Duration) {
		slept++
		// Simulate the window rolling over while we waited.
		delete(store.counts, "push:rl:user:1")
	}

	require.NoError(t, l.Apply(context.Background(), "user:1"))
	assert.Equal(t, 1, slept)
	assert.Equal(t, int64(1), store.counts["push:rl:user:1"])
}

func TestRateLimiterWaitBudgetExhaustedProceeds(t *testing.T) {
	store := newFakeRateStore()
	store.counts["push:rl:user:1"] = 5
	l := newTestLimiter(store, 3, true)
	l.maxWait = 250 * time.Millisecond

	// The counter never drops; the limiter must still return rather than
	// spin forever.
	require.NoError(t, l.Apply(context.Background(), "user:1"))
}

func TestRateLimiterFailOpen(t *testing.T) {
	store := newFakeRateStore()
	store.incrErr = errors.New("connection refused")

	l := newTestLimiter(store, 3, true)
	assert.NoError(t, l.Apply(context.Background(), "user:1"))
}

func TestRateLimiterFailClosed(t *testing.T) {
	store := newFakeRateStore()
	store.incrErr = errors.New("connection refused")

	l := newTestLimiter(store, 3, false)
	err := l.Apply(context.Background(), "user:1")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRateLimiterExpireFailureFollowsPolicy(t *testing.T) {
	open := newTestLimiter(newFakeRateStore(), 3, true)
	open.store.(*fakeRateStore).expireErr = errors.New("connection reset")
	assert.NoError(t, open.Apply(context.Background(), "user:1"))

	closed := newTestLimiter(newFakeRateStore(), 3, false)
	closed.store.(*fakeRateStore).expireErr = errors.New("connection reset")
	assert.ErrorIs(t, closed.Apply(context.Background(), "user:1"), ErrRateLimited)
}
