// Package keyparts derives workflow and lookup identifiers from an OCR
// storage key and maps them to the key of the match artifact.
package keyparts

import (
	"fmt"
	"regexp"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

var ocrKeyPattern = regexp.MustCompile(`^ocr/json/(?P<workflow>[A-Za-z-]+)/(?P<remainder>.+)\.(?P<extension>[a-z]+)$`)

// Parts are the components of ocr/json/<workflow>/<remainder>.<extension>.
type Parts struct {
	Workflow  string
	Remainder string
	Extension string
}

// Parse splits an OCR key. Keys outside the ocr/json tree fail with
// errors.ErrKeyFormat.
func Parse(ocrKey string) (Parts, error) {
	m := ocrKeyPattern.FindStringSubmatch(ocrKey)
	if m == nil {
		return Parts{}, fmt.Errorf("%w: %q", apperrors.ErrKeyFormat, ocrKey)
	}
	return Parts{
		Workflow:  m[ocrKeyPattern.SubexpIndex("workflow")],
		Remainder: m[ocrKeyPattern.SubexpIndex("remainder")],
		Extension: m[ocrKeyPattern.SubexpIndex("extension")],
	}, nil
}

// HitKey is the artifact location for these parts. It depends only on
// Workflow and Remainder, so reruns overwrite the same object.
func (p Parts) HitKey() string {
	return fmt.Sprintf("ocr/hits/%s/%s.json", p.Workflow, p.Remainder)
}
