// Package httputil centralizes JSON rendering so every handler emits the same
// envelopes.
//
// Success lists:  {"status":"success","results":N,"totalCount":M,"data":{...}}
// Failures (4xx): {"status":"fail","message":"..."}
// Errors (5xx):   {"status":"error","message":"...","stack":"..."} — stack
// only outside production, and internal messages are always redacted.
package httputil

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	dErrors "vecinal/pkg/domain-errors"
)

// ExposeStacks controls whether 5xx responses carry a stack trace. main sets
// this from config; it stays false in production.
var ExposeStacks = false

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// WriteJSON renders data under the uniform success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   data,
	})
}

// WriteList renders a page of results with its companion total count.
func WriteList(w http.ResponseWriter, key string, items any, results, totalCount int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "success",
		"results":    results,
		"totalCount": totalCount,
		"data":       map[string]any{key: items},
	})
}

// WriteMessage renders a success envelope carrying a human-readable message
// alongside data (registration confirmations, status updates).
func WriteMessage(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// WriteError translates a domain error into the uniform error envelope. All
// handler error paths funnel through here; there is no per-handler formatting.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := errorBody{Message: dErrors.MessageOf(err)}
	if status >= http.StatusInternalServerError {
		body.Status = "error"
		body.Message = "internal server error"
		if ExposeStacks {
			body.Message = err.Error()
			body.Stack = string(debug.Stack())
		}
	} else {
		body.Status = "fail"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
