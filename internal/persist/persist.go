// Package persist builds the match artifact for a document with hits and
// writes it to object storage at a key derived from the OCR key.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/invocation"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/keyparts"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/matcher"
	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/storage"
)

// Identifying artifact fields. Catalogs refuse terms with these names, so a
// hit term never shadows one.
const (
	FieldWorkflow       = catalog.FieldWorkflow
	FieldLookup         = catalog.FieldLookup
	FieldDocumentID     = catalog.FieldDocumentID
	FieldCatalogVersion = catalog.FieldCatalogVersion
)

// ResultDocument is the artifact body: one key per hit term plus identifying
// fields, in a single flat JSON object.
type ResultDocument struct {
	Hits           matcher.HitMap
	Workflow       string
	Lookup         string
	DocumentID     *string
	CatalogVersion string
}

// MarshalJSON emits a flat object with sorted keys, so equal documents
// always encode to equal bytes.
func (d ResultDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Hits)+4)
	for term, lines := range d.Hits {
		if catalog.Reserved(term) {
			return nil, fmt.Errorf("hit term %q collides with a reserved artifact field", term)
		}
		out[term] = lines
	}
	out[FieldWorkflow] = d.Workflow
	out[FieldLookup] = d.Lookup
	out[FieldDocumentID] = d.DocumentID
	out[FieldCatalogVersion] = d.CatalogVersion
	return json.Marshal(out)
}

func (d *ResultDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	doc := ResultDocument{Hits: make(matcher.HitMap)}
	for field, value := range raw {
		var err error
		switch field {
		case FieldWorkflow:
			err = json.Unmarshal(value, &doc.Workflow)
		case FieldLookup:
			err = json.Unmarshal(value, &doc.Lookup)
		case FieldDocumentID:
			err = json.Unmarshal(value, &doc.DocumentID)
		case FieldCatalogVersion:
			err = json.Unmarshal(value, &doc.CatalogVersion)
		default:
			var lines []int
			err = json.Unmarshal(value, &lines)
			doc.Hits[field] = lines
		}
		if err != nil {
			return fmt.Errorf("decoding artifact field %q: %w", field, err)
		}
	}
	*d = doc
	return nil
}

// Persister writes artifacts with a fixed storage class.
type Persister struct {
	store        storage.ObjectStore
	storageClass string
	logger       *slog.Logger
}

func New(store storage.ObjectStore, storageClass string) *Persister {
	return &Persister{
		store:        store,
		storageClass: storageClass,
		logger:       slog.Default().With("component", "persister"),
	}
}

// Persist writes the artifact for hits and returns its key. Nothing is
// written and nil is returned when hits is empty. Any failure wraps
// errors.ErrPersist.
func (p *Persister) Persist(
	ctx context.Context,
	hits matcher.HitMap,
	bucket string,
	parts keyparts.Parts,
	ictx invocation.Context,
	catalogVersion string,
) (*string, error) {
	if hits.Empty() {
		return nil, nil
	}
	doc := ResultDocument{
		Hits:           hits,
		Workflow:       parts.Workflow,
		Lookup:         parts.Remainder,
		DocumentID:     ictx.DocumentID,
		CatalogVersion: catalogVersion,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding artifact: %v", apperrors.ErrPersist, err)
	}
	key := parts.HitKey()
	err = p.store.Put(ctx, bucket, key, body, storage.PutOptions{
		StorageClass: p.storageClass,
		ContentType:  storage.ContentTypeJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %w", apperrors.ErrPersist, bucket, key, err)
	}
	p.logger.Debug("artifact written", "bucket", bucket, "key", key, "terms", len(hits))
	return &key, nil
}
