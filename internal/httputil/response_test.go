package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteSuccess_MergesPayload(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteSuccess(rec, http.StatusCreated, "created", Payload{"id": 7, "status": "ignored"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != StatusSuccess {
		t.Errorf("status field = %v, want %q", body["status"], StatusSuccess)
	}
	if body["message"] != "created" {
		t.Errorf("message = %v", body["message"])
	}
	if body["id"] != float64(7) {
		t.Errorf("id = %v, want 7", body["id"])
	}
}

func TestWriteError_Envelope(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		wantCode int
		wantErr  string
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "m") }, 400, ErrCodeBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { WriteUnauthorizedWithCode(w, "EXPIRED_TOKEN", "m") }, 401, "EXPIRED_TOKEN"},
		{"forbidden", func(w http.ResponseWriter) { WriteForbiddenWithCode(w, "MISSING_AUTH", "m") }, 403, "MISSING_AUTH"},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "m") }, 404, ErrCodeNotFound},
		{"conflict", func(w http.ResponseWriter) { WriteConflict(w, "m") }, 409, ErrCodeConflict},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, "m") }, 500, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != StatusError || body.Code != tt.wantErr || body.Message != "m" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
