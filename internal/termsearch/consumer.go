package termsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/response"
	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

// DeadLetter is published when an invocation fails. Payload is the raw
// event as received, kept as a string because a malformed event may not be
// valid JSON.
type DeadLetter struct {
	InvocationID string    `json:"invocation_id"`
	Kind         string    `json:"kind"`
	Status       int       `json:"status"`
	Error        string    `json:"error"`
	Payload      string    `json:"payload"`
	FailedAt     time.Time `json:"failed_at"`
}

// HandleMessage returns a Kafka MessageHandler that runs each message value
// through h. Envelopes go to results keyed by OCR key; failures go to
// deadLetter. A dead-lettered message is committed and not redelivered. A
// failed result or dead-letter publish is returned to the consumer, which
// retries the message and stops without committing if it keeps failing.
func HandleMessage(h *Handler, results, deadLetter kafka.Publisher, timeout time.Duration) kafka.MessageHandler {
	log := h.logger.With("component", "term-search-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		id := string(key)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = logger.WithInvocationID(ctx, id)

		var env response.Envelope
		runErr := resilience.WithTimeout(ctx, timeout, "term-search", func(ctx context.Context) error {
			var err error
			env, err = h.Handle(ctx, value)
			return err
		})
		if runErr == nil {
			// Reprocessing is idempotent, so an unpublished result is left
			// for redelivery.
			if err := results.Publish(ctx, kafka.Event{Key: env.Body.OCRKey, Value: env}); err != nil {
				return fmt.Errorf("publishing result for invocation %s: %w", id, err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("invocation %s interrupted: %w", id, runErr)
		}

		err := deadLetter.Publish(ctx, kafka.Event{
			Key: id,
			Value: DeadLetter{
				InvocationID: id,
				Kind:         apperrors.Kind(runErr),
				Status:       apperrors.HTTPStatusCode(runErr),
				Error:        runErr.Error(),
				Payload:      string(value),
				FailedAt:     time.Now().UTC(),
			},
		})
		if err != nil {
			return fmt.Errorf("dead-lettering invocation %s: %w", id, err)
		}
		log.Warn("invocation dead-lettered", "invocation_id", id, "kind", apperrors.Kind(runErr))
		return nil
	}
}
