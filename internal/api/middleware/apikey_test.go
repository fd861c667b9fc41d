package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/twinvest/portfolio-ledger-backend/internal/api/middleware"
)

func TestAPIKeyMiddleware(t *testing.T) {
	testAPIKey := "test-api-key-12345"
	t.Setenv("INTERNAL_API_KEY", testAPIKey)

	protect := func() (http.Handler, *bool) {
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})
		return middleware.APIKeyMiddleware(testHandler), &handlerCalled
	}

	decodeDetails := func(t *testing.T, w *httptest.ResponseRecorder) string {
		t.Helper()
		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)
		return response["details"]
	}

	t.Run("rejects request without API key", func(t *testing.T) {
		mw, handlerCalled := protect()

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if *handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := decodeDetails(t, w); got != "Missing API key" {
			t.Errorf("Expected 'Missing API key' error, got '%s'", got)
		}
	})

	t.Run("rejects request with invalid API key", func(t *testing.T) {
		mw, handlerCalled := protect()

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", "invalid")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if *handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := decodeDetails(t, w); got != "Invalid API key" {
			t.Errorf("Expected 'Invalid API key' error, got '%s'", got)
		}
	})

	t.Run("rejects request without time token", func(t *testing.T) {
		mw, handlerCalled := protect()

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", testAPIKey)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if *handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := decodeDetails(t, w); got != "Missing Time token" {
			t.Errorf("Expected 'Missing Time token' error, got '%s'", got)
		}
	})

	t.Run("rejects request with invalid time token", func(t *testing.T) {
		mw, handlerCalled := protect()

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", testAPIKey)
		req.Header.Set("X-Time-Token", "invalid")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if *handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := decodeDetails(t, w); got != "Invalid Time token" {
			t.Errorf("Expected 'Invalid Time token' error, got '%s'", got)
		}
	})

	t.Run("allows request with valid API key and time token", func(t *testing.T) {
		mw, handlerCalled := protect()

		token, err := fernet.EncryptAndSign([]byte("refresh"), middleware.DeriveTokenKey(testAPIKey))
		if err != nil {
			t.Fatalf("Expected token minting to succeed, got %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("X-API-Key", testAPIKey)
		req.Header.Set("X-Time-Token", string(token))
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if !*handlerCalled {
			t.Error("Expected handler to complete.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("fails when no API key is configured", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "")
		mw, handlerCalled := protect()

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		if *handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := decodeDetails(t, w); got != "API key not configured" {
			t.Errorf("Expected 'API key not configured' error, got '%s'", got)
		}
	})
}
