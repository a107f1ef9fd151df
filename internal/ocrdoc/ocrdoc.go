// Package ocrdoc decodes block-structured OCR output and reduces it to the
// ordered list of recognized text lines that the matcher scans.
package ocrdoc

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// BlockTypeLine marks a block holding one recognized line of text.
const BlockTypeLine = "LINE"

// Block is one recognized entity: a page, line, word, table cell and so on.
type Block struct {
	BlockType  string  `json:"BlockType"`
	ID         string  `json:"Id,omitempty"`
	Text       string  `json:"Text,omitempty"`
	Confidence float64 `json:"Confidence,omitempty"`
	Page       int     `json:"Page,omitempty"`
}

// Document is the OCR result for one scanned page or document.
type Document struct {
	Blocks []Block `json:"Blocks"`
}

// Line is a LINE block with its position among LINE blocks only. Index is
// what artifacts refer to; positions in the unfiltered block list are never
// exposed.
type Line struct {
	Index int
	Text  string
}

// Decode reads an OCR JSON document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedDocument, err)
	}
	if doc.Blocks == nil {
		return nil, fmt.Errorf("%w: no Blocks field", apperrors.ErrMalformedDocument)
	}
	return &doc, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedDocument, err)
	}
	if doc.Blocks == nil {
		return nil, fmt.Errorf("%w: no Blocks field", apperrors.ErrMalformedDocument)
	}
	return &doc, nil
}

// Scan keeps the LINE blocks of doc in order, numbers them from zero, and
// lower-cases their text.
func Scan(doc *Document) []Line {
	lines := make([]Line, 0, len(doc.Blocks)/4)
	for _, b := range doc.Blocks {
		if b.BlockType != BlockTypeLine {
			continue
		}
		lines = append(lines, Line{
			Index: len(lines),
			Text:  strings.ToLower(b.Text),
		})
	}
	return lines
}
