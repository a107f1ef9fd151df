package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// UnmarshalYAML accepts either a bare string (a substantive term) or a
// {text, category} mapping.
func (t *Term) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Text = value.Value
		t.Category = Substantive
		return nil
	}
	type plain Term
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = Term(p)
	return nil
}

// Parse decodes a YAML catalog document.
//
//	version: "2023.2"
//	terms:
//	  - caucasian
//	  - text: death certificate
//	    category: exception
func Parse(data []byte) (*Catalog, error) {
	var w wireCatalog
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidCatalog, err)
	}
	return New(w.Version, w.Terms)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return c, nil
}

// MarshalYAML writes the catalog in the format read by Parse.
func (c *Catalog) MarshalYAML() (any, error) {
	return wireCatalog{Version: c.version, Terms: c.terms}, nil
}
