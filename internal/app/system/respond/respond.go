// Package respond writes the JSON bodies used by the API features.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Failure is the body of an unsuccessful auth or metric call.
type Failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Message is the bare {"message": ...} body the metric endpoints use for
// 400/401 responses.
type Message struct {
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes {"success":false,"message":...} for err, with the status taken
// from its kind. Unclassified and store errors are logged with their cause.
func Fail(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnknown || kind == apperr.StoreUnavailable {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}
	JSON(w, apperr.Status(kind), Failure{Success: false, Message: apperr.Message(err)})
}

// Unauthorized writes 401 {"message":"Unauthorized"}.
func Unauthorized(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, Message{Message: "Unauthorized"})
}
