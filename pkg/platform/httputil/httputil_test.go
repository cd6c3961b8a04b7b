package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "vecinal/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error redacts message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("surreal: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["status"] != "error" {
			t.Fatalf("expected status error, got %q", body["status"])
		}
		if body["message"] != "internal server error" {
			t.Fatalf("expected redacted message, got %q", body["message"])
		}
		if _, ok := body["stack"]; ok {
			t.Fatalf("expected stack to be omitted when ExposeStacks is false")
		}
	})

	t.Run("bad request includes message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "departmentCode is required"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["status"] != "fail" {
			t.Fatalf("expected status fail, got %q", body["status"])
		}
		if body["message"] != "departmentCode is required" {
			t.Fatalf("expected validation message, got %q", body["message"])
		}
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeConflict, "member already linked"))
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})

	t.Run("stack exposed outside production", func(t *testing.T) {
		ExposeStacks = true
		defer func() { ExposeStacks = false }()

		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["stack"] == "" {
			t.Fatalf("expected stack trace in non-production mode")
		}
	})
}

func TestWriteList(t *testing.T) {
	w := httptest.NewRecorder()
	WriteList(w, "members", []string{"a", "b"}, 2, 25)

	var body struct {
		Status     string              `json:"status"`
		Results    int                 `json:"results"`
		TotalCount int                 `json:"totalCount"`
		Data       map[string][]string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" || body.Results != 2 || body.TotalCount != 25 {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if len(body.Data["members"]) != 2 {
		t.Fatalf("expected entity key in data, got %+v", body.Data)
	}
}
