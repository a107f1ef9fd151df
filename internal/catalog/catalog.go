// Package catalog holds the flagged-term configuration used by the matcher.
// A Catalog is an immutable, ordered list of terms; each term carries a
// category that downstream consumers use to tell covenant evidence apart
// from markers of unrelated document types. Matching treats both alike.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// Category classifies a term for downstream interpretation.
type Category string

const (
	Substantive Category = "substantive"
	Exception   Category = "exception"
)

func (c Category) valid() bool {
	return c == Substantive || c == Exception
}

// Artifact field names. An artifact stores each hit term as a top-level key
// beside these fields, so no term may take one of them.
const (
	FieldWorkflow       = "workflow"
	FieldLookup         = "lookup"
	FieldDocumentID     = "document_id"
	FieldCatalogVersion = "catalog_version"
)

var reserved = map[string]struct{}{
	FieldWorkflow:       {},
	FieldLookup:         {},
	FieldDocumentID:     {},
	FieldCatalogVersion: {},
}

// Reserved reports whether text is an artifact field name.
func Reserved(text string) bool {
	_, ok := reserved[text]
	return ok
}

// Term is a lowercase pattern. Leading or trailing spaces are part of the
// pattern and approximate word boundaries.
type Term struct {
	Text     string   `json:"text" yaml:"text"`
	Category Category `json:"category" yaml:"category"`
}

// Catalog is an ordered set of terms tagged with a version string that is
// recorded in every artifact produced with it.
type Catalog struct {
	version string
	terms   []Term
}

// New validates terms and builds a Catalog. Term text is lower-cased but not
// trimmed. An empty version is replaced by a content fingerprint.
func New(version string, terms []Term) (*Catalog, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms", apperrors.ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(terms))
	out := make([]Term, 0, len(terms))
	for i, t := range terms {
		text := strings.ToLower(t.Text)
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: term %d is empty", apperrors.ErrInvalidCatalog, i)
		}
		if Reserved(text) {
			return nil, fmt.Errorf("%w: term %q is a reserved artifact field", apperrors.ErrInvalidCatalog, text)
		}
		if _, dup := seen[text]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", apperrors.ErrInvalidCatalog, text)
		}
		seen[text] = struct{}{}
		cat := t.Category
		if cat == "" {
			cat = Substantive
		}
		if !cat.valid() {
			return nil, fmt.Errorf("%w: term %q has unknown category %q", apperrors.ErrInvalidCatalog, text, cat)
		}
		out = append(out, Term{Text: text, Category: cat})
	}
	c := &Catalog{version: version, terms: out}
	if c.version == "" {
		c.version = c.Fingerprint()
	}
	return c, nil
}

// MustNew is New for package-level catalogs known to be valid.
func MustNew(version string, terms []Term) *Catalog {
	c, err := New(version, terms)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) Len() int {
	return len(c.terms)
}

// Terms returns a copy of the ordered term list.
func (c *Catalog) Terms() []Term {
	out := make([]Term, len(c.terms))
	copy(out, c.terms)
	return out
}

// Texts returns the ordered term patterns.
func (c *Catalog) Texts() []string {
	out := make([]string, len(c.terms))
	for i, t := range c.terms {
		out[i] = t.Text
	}
	return out
}

// CategoryOf reports the category of a term pattern.
func (c *Catalog) CategoryOf(text string) (Category, bool) {
	for _, t := range c.terms {
		if t.Text == text {
			return t.Category, true
		}
	}
	return "", false
}

// Exceptions returns the patterns tagged as exception terms.
func (c *Catalog) Exceptions() []string {
	var out []string
	for _, t := range c.terms {
		if t.Category == Exception {
			out = append(out, t.Text)
		}
	}
	return out
}

// Fingerprint is a short, order-sensitive content hash of the catalog.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	for _, t := range c.terms {
		h.Write([]byte(t.Text))
		h.Write([]byte{0})
		h.Write([]byte(t.Category))
		h.Write([]byte{'\n'})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))[:16]
}

type wireCatalog struct {
	Version string `json:"version" yaml:"version"`
	Terms   []Term `json:"terms" yaml:"terms"`
}

// MarshalJSON encodes the catalog in the form read back by UnmarshalJSON and
// stored under the Redis catalog key.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCatalog{Version: c.version, Terms: c.terms})
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var w wireCatalog
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidCatalog, err)
	}
	built, err := New(w.Version, w.Terms)
	if err != nil {
		return err
	}
	*c = *built
	return nil
}
