package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

// Observer receives one call per store operation with its final status and
// the breaker state afterwards.
type Observer interface {
	ObserveStorage(op, status string, breaker resilience.State)
}

// Resilient retries transient store failures with backoff and trips a
// circuit breaker after repeated ones. Missing or forbidden objects are
// permanent and neither retried nor counted against the breaker.
type Resilient struct {
	next     ObjectStore
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	observer Observer
}

// NewResilient wraps next. observer may be nil.
func NewResilient(next ObjectStore, cfg config.StorageConfig, observer Observer) *Resilient {
	return &Resilient{
		next: next,
		retry: resilience.RetryConfig{
			MaxAttempts:  cfg.RetryAttempts,
			InitialDelay: cfg.RetryBaseDelay,
			MaxDelay:     5 * time.Second,
			Retryable:    transient,
		},
		breaker: resilience.NewCircuitBreaker("object-store", resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			ResetTimeout:     cfg.Breaker.ResetTimeout,
		}),
		observer: observer,
	}
}

func (r *Resilient) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, "get", func() error {
		var err error
		data, err = r.next.Get(ctx, bucket, key)
		return err
	})
	return data, err
}

func (r *Resilient) Put(ctx context.Context, bucket, key string, body []byte, opts PutOptions) error {
	return r.do(ctx, "put", func() error {
		return r.next.Put(ctx, bucket, key, body, opts)
	})
}

func (r *Resilient) CheckBucket(ctx context.Context, bucket string) error {
	if bc, ok := r.next.(BucketChecker); ok {
		return bc.CheckBucket(ctx, bucket)
	}
	return nil
}

// BreakerState exposes the breaker for health reporting.
func (r *Resilient) BreakerState() resilience.State {
	return r.breaker.GetState()
}

func (r *Resilient) do(ctx context.Context, op string, fn func() error) error {
	cfg := r.retry
	if r.observer != nil {
		cfg.OnRetry = func(int, error) {
			r.observer.ObserveStorage(op, "retry", r.breaker.GetState())
		}
	}
	err := resilience.Retry(ctx, "object-store-"+op, cfg, func() error {
		var permanent error
		err := r.breaker.Execute(func() error {
			err := fn()
			if err != nil && !transient(err) {
				permanent = err
				return nil
			}
			return err
		})
		if permanent != nil {
			return permanent
		}
		return err
	})
	if r.observer != nil {
		r.observer.ObserveStorage(op, apperrors.Kind(err), r.breaker.GetState())
	}
	return err
}

func transient(err error) bool {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrAccessDenied),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
