// Package invocation normalizes the three event shapes that can start a term
// search into one Context. The shape is chosen by which top-level field is
// present: "Records" for a storage notification, "detail" for the first step
// of an orchestrated run, and "body" for a continuation that carries the
// previous step's output.
package invocation

import (
	"encoding/json"
	"fmt"
	"net/url"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// Shape identifies which caller produced an event.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeStorageNotification
	ShapeOrchestrationStart
	ShapeOrchestrationContinuation
)

func (s Shape) String() string {
	switch s {
	case ShapeStorageNotification:
		return "storage_notification"
	case ShapeOrchestrationStart:
		return "orchestration_start"
	case ShapeOrchestrationContinuation:
		return "orchestration_continuation"
	default:
		return "unknown"
	}
}

// Context is the canonical description of one invocation. Optional fields
// are nil when the caller shape cannot supply them; storage notifications and
// first-step events never carry a document id or original image key.
type Context struct {
	Shape            Shape
	Bucket           string
	OCRKey           string
	WebImageKey      *string
	OriginalImageKey *string
	DocumentID       *string
}

type parser struct {
	field string
	shape Shape
	parse func(json.RawMessage) (Context, error)
}

var parsers = []parser{
	{field: "Records", shape: ShapeStorageNotification, parse: parseStorageNotification},
	{field: "detail", shape: ShapeOrchestrationStart, parse: parseOrchestrationStart},
	{field: "body", shape: ShapeOrchestrationContinuation, parse: parseContinuation},
}

// Normalize decodes raw and returns its Context. Any unrecognized or
// incomplete event fails with errors.ErrMalformedEvent.
func Normalize(raw []byte) (Context, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Context{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	for _, p := range parsers {
		field, ok := top[p.field]
		if !ok {
			continue
		}
		ctx, err := p.parse(field)
		if err != nil {
			return Context{}, fmt.Errorf("%w: %s event: %v", apperrors.ErrMalformedEvent, p.shape, err)
		}
		ctx.Shape = p.shape
		return ctx, nil
	}
	return Context{}, fmt.Errorf("%w: none of Records, detail, body present", apperrors.ErrMalformedEvent)
}

type storageNotification []struct {
	S3 struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key    string  `json:"key"`
			WebImg *string `json:"web_img"`
		} `json:"object"`
	} `json:"s3"`
}

// Storage notifications form-encode keys, so '+' is a space.
func parseStorageNotification(raw json.RawMessage) (Context, error) {
	var records storageNotification
	if err := json.Unmarshal(raw, &records); err != nil {
		return Context{}, err
	}
	if len(records) == 0 {
		return Context{}, fmt.Errorf("empty Records list")
	}
	rec := records[0].S3
	if rec.Bucket.Name == "" {
		return Context{}, fmt.Errorf("missing Records[0].s3.bucket.name")
	}
	if rec.Object.Key == "" {
		return Context{}, fmt.Errorf("missing Records[0].s3.object.key")
	}
	key, err := url.QueryUnescape(rec.Object.Key)
	if err != nil {
		return Context{}, fmt.Errorf("decoding key: %v", err)
	}
	web, err := decodeOptional(rec.Object.WebImg, url.QueryUnescape)
	if err != nil {
		return Context{}, fmt.Errorf("decoding web_img: %v", err)
	}
	return Context{Bucket: rec.Bucket.Name, OCRKey: key, WebImageKey: web}, nil
}

type orchestrationStart struct {
	Bucket struct {
		Name string `json:"name"`
	} `json:"bucket"`
	Object struct {
		Key    string  `json:"key"`
		WebImg *string `json:"web_img"`
	} `json:"object"`
}

// First-step events percent-encode path segments but leave '+' literal.
func parseOrchestrationStart(raw json.RawMessage) (Context, error) {
	var d orchestrationStart
	if err := json.Unmarshal(raw, &d); err != nil {
		return Context{}, err
	}
	if d.Bucket.Name == "" {
		return Context{}, fmt.Errorf("detail.bucket.name missing")
	}
	if d.Object.Key == "" {
		return Context{}, fmt.Errorf("detail.object.key missing")
	}
	key, err := url.PathUnescape(d.Object.Key)
	if err != nil {
		return Context{}, fmt.Errorf("decoding key: %v", err)
	}
	web, err := decodeOptional(d.Object.WebImg, url.PathUnescape)
	if err != nil {
		return Context{}, fmt.Errorf("decoding web_img: %v", err)
	}
	return Context{Bucket: d.Bucket.Name, OCRKey: key, WebImageKey: web}, nil
}

type continuation struct {
	Bucket  string  `json:"bucket"`
	OCRJSON string  `json:"ocr_json"`
	WebImg  *string `json:"web_img"`
	OrigImg *string `json:"orig_img"`
	UUID    *string `json:"uuid"`
}

// Continuation values were written by a previous step and are used verbatim.
func parseContinuation(raw json.RawMessage) (Context, error) {
	var b continuation
	if err := json.Unmarshal(raw, &b); err != nil {
		return Context{}, err
	}
	if b.Bucket == "" {
		return Context{}, fmt.Errorf("body.bucket missing")
	}
	if b.OCRJSON == "" {
		return Context{}, fmt.Errorf("body.ocr_json missing")
	}
	return Context{
		Bucket:           b.Bucket,
		OCRKey:           b.OCRJSON,
		WebImageKey:      b.WebImg,
		OriginalImageKey: b.OrigImg,
		DocumentID:       b.UUID,
	}, nil
}

func decodeOptional(v *string, unescape func(string) (string, error)) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := unescape(*v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
