// Package ledger keeps a queryable Postgres record of every match artifact
// written, so reviewers can find flagged deeds without listing the bucket.
// Recording is best effort: a ledger failure is logged and never fails the
// invocation that produced the artifact.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/postgres"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS term_hits (
	bucket          TEXT        NOT NULL,
	ocr_key         TEXT        NOT NULL,
	artifact_key    TEXT        NOT NULL,
	workflow        TEXT        NOT NULL,
	lookup          TEXT        NOT NULL,
	document_id     TEXT,
	catalog_version TEXT        NOT NULL,
	terms           TEXT[]      NOT NULL,
	exception_only  BOOLEAN     NOT NULL DEFAULT FALSE,
	recorded_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (bucket, ocr_key)
)`,
	`CREATE INDEX IF NOT EXISTS term_hits_workflow_idx ON term_hits (workflow)`,
	`CREATE INDEX IF NOT EXISTS term_hits_terms_idx ON term_hits USING GIN (terms)`,
}

const upsert = `
INSERT INTO term_hits
	(bucket, ocr_key, artifact_key, workflow, lookup, document_id, catalog_version, terms, exception_only, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
ON CONFLICT (bucket, ocr_key) DO UPDATE SET
	artifact_key    = EXCLUDED.artifact_key,
	workflow        = EXCLUDED.workflow,
	lookup          = EXCLUDED.lookup,
	document_id     = EXCLUDED.document_id,
	catalog_version = EXCLUDED.catalog_version,
	terms           = EXCLUDED.terms,
	exception_only  = EXCLUDED.exception_only,
	recorded_at     = NOW()`

// Entry is one artifact written for one OCR document.
type Entry struct {
	Bucket         string
	OCRKey         string
	ArtifactKey    string
	Workflow       string
	Lookup         string
	DocumentID     *string
	CatalogVersion string
	Terms          []string
	ExceptionOnly  bool
}

// Recorder is the side channel the term search handler writes to.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// DB is the part of the Postgres client the ledger uses.
type DB interface {
	postgres.Execer
	InTx(ctx context.Context, fn func(tx postgres.Execer) error) error
}

// Ledger writes entries to Postgres. A Ledger with a nil db skips every
// write.
type Ledger struct {
	db     DB
	logger *slog.Logger
}

// New returns a Ledger over db. Pass nil to disable recording.
func New(db DB) *Ledger {
	return &Ledger{db: db, logger: slog.Default().With("component", "hit-ledger")}
}

// EnsureSchema creates the ledger table and its indexes in one transaction.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if l.db == nil {
		return nil
	}
	err := l.db.InTx(ctx, func(tx postgres.Execer) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating term_hits schema: %w", err)
	}
	return nil
}

// Record upserts e keyed by bucket and OCR key, so re-running a document
// replaces its row.
func (l *Ledger) Record(ctx context.Context, e Entry) {
	if l.db == nil {
		return
	}
	var docID sql.NullString
	if e.DocumentID != nil {
		docID = sql.NullString{String: *e.DocumentID, Valid: true}
	}
	_, err := l.db.ExecContext(ctx, upsert,
		e.Bucket, e.OCRKey, e.ArtifactKey, e.Workflow, e.Lookup,
		docID, e.CatalogVersion, pq.Array(e.Terms), e.ExceptionOnly,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to record term hits",
			"component", "hit-ledger",
			"ocr_key", e.OCRKey,
			"artifact_key", e.ArtifactKey,
			"error", err,
		)
		return
	}
	l.logger.Debug("term hits recorded", "ocr_key", e.OCRKey, "terms", len(e.Terms))
}
