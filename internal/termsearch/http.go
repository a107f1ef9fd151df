package termsearch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/errors"
)

// Invoke serves POST /invoke: the request body is one raw event, the
// response is the envelope or {"error", "kind"} with the mapped status.
func (h *Handler) Invoke(maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.writeError(w, http.StatusRequestEntityTooLarge, "event body too large", "malformed_event")
				return
			}
			h.writeError(w, http.StatusBadRequest, "reading event body: "+err.Error(), "malformed_event")
			return
		}

		env, err := h.Handle(r.Context(), body)
		if err != nil {
			status := apperrors.HTTPStatusCode(err)
			if r.Context().Err() != nil {
				status = http.StatusGatewayTimeout
			}
			h.writeError(w, status, err.Error(), apperrors.Kind(err))
			return
		}
		h.writeJSON(w, http.StatusOK, env)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, kind string) {
	h.writeJSON(w, status, map[string]string{"error": message, "kind": kind})
}
