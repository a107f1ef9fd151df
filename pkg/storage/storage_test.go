package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Get(ctx, "b", "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	opts := PutOptions{StorageClass: "GLACIER_IR", ContentType: ContentTypeJSON}
	require.NoError(t, m.Put(ctx, "b", "k", []byte(`{}`), opts))
	got, err := m.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	obj, ok := m.Object("b", "k")
	require.True(t, ok)
	assert.Equal(t, opts, obj.Opts)
	assert.Equal(t, 1, m.Puts())

	m.Deny("b", "k")
	_, err = m.Get(ctx, "b", "k")
	assert.True(t, errors.Is(err, apperrors.ErrAccessDenied))
}

type flakyStore struct {
	*MemoryStore
	failures int
	calls    int
	err      error
}

func (f *flakyStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.MemoryStore.Get(ctx, bucket, key)
}

func (f *flakyStore) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.MemoryStore.Put(ctx, bucket, key, body, opts)
}

type recordingObserver struct {
	ops []string
}

func (r *recordingObserver) ObserveStorage(op, status string, _ resilience.State) {
	r.ops = append(r.ops, op+":"+status)
}

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		Breaker:        config.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour},
	}
}

func TestResilientRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{MemoryStore: NewMemoryStore(), failures: 1, err: errors.New("connection reset")}
	require.NoError(t, inner.MemoryStore.Put(ctx, "b", "k", []byte("x"), PutOptions{}))

	obs := &recordingObserver{}
	r := NewResilient(inner, testStorageConfig(), obs)
	data, err := r.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, []string{"get:retry", "get:ok"}, obs.ops)
	assert.Equal(t, resilience.StateClosed, r.BreakerState())
}

func TestResilientDoesNotRetryNotFound(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore()}
	obs := &recordingObserver{}
	r := NewResilient(inner, testStorageConfig(), obs)

	for i := 0; i < 5; i++ {
		_, err := r.Get(context.Background(), "b", "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	}
	assert.Equal(t, 5, inner.calls)
	assert.Equal(t, resilience.StateClosed, r.BreakerState())
	assert.Equal(t, "get:not_found", obs.ops[0])
}

func TestResilientOpensBreaker(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemoryStore(), failures: 100, err: errors.New("503 slow down")}
	r := NewResilient(inner, testStorageConfig(), nil)

	err := r.Put(context.Background(), "b", "k", []byte("x"), PutOptions{})
	require.Error(t, err)
	assert.Equal(t, resilience.StateOpen, r.BreakerState())

	calls := inner.calls
	err = r.Put(context.Background(), "b", "k", []byte("x"), PutOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Equal(t, calls, inner.calls)
}
