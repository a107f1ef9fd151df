package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

var fastRetry = resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func TestConsumerStopsBeforeCommittingPastFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &fakeReader{
		msgs: []kafka.Message{
			{Topic: "invocations", Offset: 1, Value: []byte("ok")},
			{Topic: "invocations", Offset: 2, Value: []byte("fail")},
			{Topic: "invocations", Offset: 3, Value: []byte("ok")},
		},
		cancel: cancel,
	}
	var seen []string
	c := newConsumer(r, "invocations", fastRetry, func(_ context.Context, _ []byte, value []byte) error {
		seen = append(seen, string(value))
		if string(value) == "fail" {
			return errors.New("broker down")
		}
		return nil
	})

	err := c.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invocations[0]@2")
	assert.Equal(t, []string{"ok", "fail", "fail", "fail"}, seen)
	// Offset 3 was never fetched, so the committed offset cannot pass 2.
	assert.Equal(t, []int64{1}, r.committed)
	assert.True(t, r.closed)
}

func TestConsumerRetriesTransientFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReader{
		msgs: []kafka.Message{
			{Offset: 1, Value: []byte("a")},
			{Offset: 2, Value: []byte("b")},
		},
		cancel: cancel,
	}
	failures := 1
	c := newConsumer(r, "invocations", fastRetry, func(_ context.Context, _ []byte, value []byte) error {
		if string(value) == "a" && failures > 0 {
			failures--
			return errors.New("timeout")
		}
		return nil
	})

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []int64{1, 2}, r.committed)
}

func TestConsumerShutdownMidMessageDoesNotCommit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReader{
		msgs:   []kafka.Message{{Offset: 7, Value: []byte("slow")}},
		cancel: cancel,
	}
	c := newConsumer(r, "invocations", fastRetry, func(ctx context.Context, _ []byte, _ []byte) error {
		cancel()
		return ctx.Err()
	})

	require.NoError(t, c.Start(ctx))
	assert.Empty(t, r.committed)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducerPublishJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "results")

	err := p.Publish(context.Background(), Event{Key: "k", Value: map[string]int{"a": 1}})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "k", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))
}

func TestProducerPublishError(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("broker down")}, "results")
	err := p.Publish(context.Background(), Event{Key: "k", Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing to kafka")
}
