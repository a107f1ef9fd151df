package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a deadline derived from ctx. fn must honour the
// context it receives; WithTimeout waits for it to return so no goroutine
// outlives the call. A deadline hit is reported as context.DeadlineExceeded
// naming the operation.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(timeoutCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: parent context cancelled: %w", name, err)
	}
	if timeoutCtx.Err() != nil {
		return fmt.Errorf("%s: %w (limit: %v)", name, context.DeadlineExceeded, timeout)
	}
	return err
}
