// Package jsonbody reads size-limited JSON request bodies.
package jsonbody

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
)

// MaxBytes is the largest request body accepted.
const MaxBytes = 1 << 20 // 1 MiB

// MsgInvalidBody is returned for malformed or oversized bodies.
const MsgInvalidBody = "Invalid request body"

// Read returns the raw body, failing with InvalidInput past MaxBytes.
func Read(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, apperr.Wrap(apperr.InvalidInput, "Request body too large", err)
		}
		return nil, apperr.Wrap(apperr.InvalidInput, MsgInvalidBody, err)
	}
	return body, nil
}

// Decode reads the body into v. Unknown fields are ignored.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := Read(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Wrap(apperr.InvalidInput, MsgInvalidBody, err)
	}
	return nil
}

// IsArray reports whether body's top-level JSON value is an array.
func IsArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
