// Package termsearch runs one term search invocation end to end: it
// normalizes the triggering event, loads the OCR document, scans and matches
// its lines against the current catalog, persists the hits, and builds the
// response envelope. Every stage failure aborts the invocation; logging,
// metrics, spans, and the hit ledger observe the run without affecting it.
package termsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/invocation"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/keyparts"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/ledger"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/matcher"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/ocrdoc"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/persist"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/response"
	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/storage"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/tracing"
)

// Options carries the optional side channels of a Handler.
type Options struct {
	Ledger  ledger.Recorder
	Metrics *metrics.Metrics
	Tracing bool
}

// Handler is safe for concurrent use. The only state shared between
// invocations is the catalog provider.
type Handler struct {
	catalogs  catalog.Provider
	store     storage.ObjectStore
	persister *persist.Persister
	ledger    ledger.Recorder
	metrics   *metrics.Metrics
	tracing   bool
	logger    *slog.Logger
}

func New(catalogs catalog.Provider, store storage.ObjectStore, storageClass string, opts Options) *Handler {
	return &Handler{
		catalogs:  catalogs,
		store:     store,
		persister: persist.New(store, storageClass),
		ledger:    opts.Ledger,
		metrics:   opts.Metrics,
		tracing:   opts.Tracing,
		logger:    slog.Default().With("component", "term-search"),
	}
}

// Handle processes one raw invocation event. On success the envelope's
// bool_hit is true exactly when an artifact was written.
func (h *Handler) Handle(ctx context.Context, raw []byte) (response.Envelope, error) {
	start := time.Now()
	id := logger.InvocationID(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = logger.WithInvocationID(ctx, id)
	}
	log := logger.FromContext(ctx).With("component", "term-search")

	var root *tracing.Span
	if h.tracing {
		ctx, root = tracing.StartSpan(ctx, "term-search", id)
	}

	shape := invocation.ShapeUnknown
	env, r, err := h.run(ctx, raw, &shape)
	root.End(err)
	root.Log(log)

	h.observe(shape, r, err, time.Since(start))
	if err != nil {
		log.Error("term search failed",
			"shape", shape.String(),
			"kind", apperrors.Kind(err),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return response.Envelope{}, err
	}
	log.Info("term search complete",
		"shape", shape.String(),
		"ocr_key", env.Body.OCRKey,
		"bool_hit", env.Body.BoolHit,
		"terms", len(r.hits),
		"lines", r.lines,
		"exception_only", r.summary.ExceptionOnly(),
		"catalog_version", r.catalog.Version(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return env, nil
}

// runResult is what Handle needs from run for logging and metrics.
type runResult struct {
	catalog *catalog.Catalog
	lines   int
	hits    matcher.HitMap
	summary matcher.Summary
}

func (h *Handler) run(ctx context.Context, raw []byte, shape *invocation.Shape) (response.Envelope, runResult, error) {
	var r runResult

	var ictx invocation.Context
	err := stage(ctx, "normalize", func(context.Context) error {
		var err error
		ictx, err = invocation.Normalize(raw)
		return err
	})
	if err != nil {
		return response.Envelope{}, r, err
	}
	*shape = ictx.Shape

	r.catalog, err = h.catalogs.Current(ctx)
	if err != nil {
		return response.Envelope{}, r, fmt.Errorf("%w: loading term catalog: %w", apperrors.ErrInternal, err)
	}

	var doc *ocrdoc.Document
	err = stage(ctx, "load", func(ctx context.Context) error {
		data, err := h.store.Get(ctx, ictx.Bucket, ictx.OCRKey)
		if err != nil {
			return fmt.Errorf("loading s3://%s/%s: %w", ictx.Bucket, ictx.OCRKey, err)
		}
		doc, err = ocrdoc.DecodeBytes(data)
		return err
	})
	if err != nil {
		return response.Envelope{}, r, err
	}

	parts, err := keyparts.Parse(ictx.OCRKey)
	if err != nil {
		return response.Envelope{}, r, err
	}

	_, span := tracing.StartChildSpan(ctx, "scan")
	lines := ocrdoc.Scan(doc)
	span.SetAttr("lines", len(lines))
	span.End(nil)
	r.lines = len(lines)

	_, span = tracing.StartChildSpan(ctx, "match")
	r.hits = matcher.Match(lines, r.catalog)
	span.SetAttr("terms", len(r.hits))
	span.End(nil)
	r.summary = matcher.Summarize(r.hits, r.catalog)

	var artifact *string
	err = stage(ctx, "persist", func(ctx context.Context) error {
		var err error
		artifact, err = h.persister.Persist(ctx, r.hits, ictx.Bucket, parts, ictx, r.catalog.Version())
		return err
	})
	if err != nil {
		return response.Envelope{}, r, err
	}

	if artifact != nil && h.ledger != nil {
		h.ledger.Record(ctx, ledger.Entry{
			Bucket:         ictx.Bucket,
			OCRKey:         ictx.OCRKey,
			ArtifactKey:    *artifact,
			Workflow:       parts.Workflow,
			Lookup:         parts.Remainder,
			DocumentID:     ictx.DocumentID,
			CatalogVersion: r.catalog.Version(),
			Terms:          r.hits.Terms(),
			ExceptionOnly:  r.summary.ExceptionOnly(),
		})
	}

	return response.Build(ictx, artifact), r, nil
}

func stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracing.StartChildSpan(ctx, name)
	err := fn(ctx)
	span.End(err)
	return err
}

func (h *Handler) observe(shape invocation.Shape, r runResult, err error, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "miss"
	switch {
	case err != nil:
		outcome = apperrors.Kind(err)
	case !r.hits.Empty():
		outcome = "hit"
	}
	h.metrics.InvocationsTotal.WithLabelValues(shape.String(), outcome).Inc()
	h.metrics.InvocationDuration.WithLabelValues(shape.String()).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	h.metrics.LinesScanned.Observe(float64(r.lines))
	h.metrics.CatalogTerms.WithLabelValues(r.catalog.Version()).Set(float64(r.catalog.Len()))
	for _, term := range r.hits.Terms() {
		category, _ := r.catalog.CategoryOf(term)
		h.metrics.TermHitsTotal.WithLabelValues(term, string(category)).Inc()
	}
	if !r.hits.Empty() {
		h.metrics.ArtifactsWritten.Inc()
	}
}
