package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSignalsURL(t *testing.T) {
	testCases := []struct {
		name     string
		env      string
		override string
		expected string
		wantErr  bool
	}{
		{"default is production", "", "", ProductionHost + SingleEventPath, false},
		{"production", "production", "", ProductionHost + SingleEventPath, false},
		{"staging mixed case", "Staging", "", StagingHost + SingleEventPath, false},
		{"override host", "staging", "http://localhost:8787/", "http://localhost:8787" + SingleEventPath, false},
		{"override full url", "", "http://localhost:8787" + SingleEventPath, "http://localhost:8787" + SingleEventPath, false},
		{"unknown env", "qa", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SignalsURL(tc.env, tc.override)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for env %q", tc.env)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestPostSignal_Success(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	if err := PostSignal(srv.URL+SingleEventPath, map[string]string{"device_id": "d1"}); err != nil {
		t.Fatalf("PostSignal failed: %v", err)
	}
	if strings.TrimSpace(body) != `{"device_id":"d1"}` {
		t.Errorf("Unexpected body %s", body)
	}
}

func TestPostSignal_ParsesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_payload","message":"device_id is required"}`))
	}))
	defer srv.Close()

	err := PostSignal(srv.URL, map[string]string{})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != "invalid_payload" || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Unexpected API error: %+v", apiErr)
	}
	if !IsClientError(err) || IsServerError(err) || IsRateLimited(err) {
		t.Error("Expected a client error classification")
	}
}

func TestPostSignal_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	err := PostSignal(srv.URL, map[string]string{})
	if !IsServerError(err) {
		t.Fatalf("Expected server error, got %v", err)
	}
	if apiErr := err.(*APIError); apiErr.Code != "unknown_error" || apiErr.Message != "upstream down" {
		t.Errorf("Unexpected fallback error: %+v", apiErr)
	}
}
