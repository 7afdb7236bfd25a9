package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ParseJSON decodes JSON from the request body into dest.
// The body is capped at 10MB; oversized bodies produce a decode error
// (and MaxBytesReader arranges the proper 413 on the connection).
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	// Unknown fields are deliberately allowed: several request shapes carry
	// provider-specific pass-through fields (inputs, additional_kwargs, ...)
	// that are validated downstream, not at the decode boundary.
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
