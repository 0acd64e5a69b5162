package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ponto/internal/transport/http/api"
)

// DecodeJSON decodes the request body into dst and runs its validate tags.
// On failure the response has been written and false is returned.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", describeDecodeError(err), requestID)
		return false
	}

	v := NewValidator()
	v.Struct(dst)
	return !v.Reject(w, requestID)
}

func describeDecodeError(err error) string {
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at byte offset %d", syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}
	return "invalid request payload"
}
