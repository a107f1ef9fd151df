// Package response assembles the envelope returned to the caller after a
// successful term search. Failures are never encoded here; they surface as
// errors from earlier stages.
package response

import (
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/invocation"
)

// Envelope is the fixed-shape result of one invocation.
type Envelope struct {
	StatusCode int  `json:"statusCode"`
	Body       Body `json:"body"`
}

// Body echoes every identifying field of the invocation so the next step of
// an orchestrated run can continue without re-deriving them.
type Body struct {
	BoolHit          bool    `json:"bool_hit"`
	MatchArtifact    *string `json:"match_artifact"`
	Bucket           string  `json:"bucket"`
	DocumentID       *string `json:"document_id"`
	OriginalImageKey *string `json:"original_image_key"`
	WebImageKey      *string `json:"web_image_key"`
	OCRKey           string  `json:"ocr_key"`
}

// Build returns the success envelope. bool_hit is true exactly when an
// artifact key is present.
func Build(ictx invocation.Context, artifact *string) Envelope {
	return Envelope{
		StatusCode: http.StatusOK,
		Body: Body{
			BoolHit:          artifact != nil,
			MatchArtifact:    artifact,
			Bucket:           ictx.Bucket,
			DocumentID:       ictx.DocumentID,
			OriginalImageKey: ictx.OriginalImageKey,
			WebImageKey:      ictx.WebImageKey,
			OCRKey:           ictx.OCRKey,
		},
	}
}
