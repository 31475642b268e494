package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireTokenAccepts(t *testing.T) {
	h := RequireToken("secret")(okHandler())

	req := httptest.NewRequest("POST", "/admin/reset", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireTokenRejectsWrongToken(t *testing.T) {
	h := RequireToken("secret")(okHandler())

	req := httptest.NewRequest("POST", "/admin/reset", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireTokenRejectsMissingHeader(t *testing.T) {
	h := RequireToken("secret")(okHandler())

	req := httptest.NewRequest("POST", "/admin/reset", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireTokenDisabledWhenUnconfigured(t *testing.T) {
	h := RequireToken("")(okHandler())

	req := httptest.NewRequest("POST", "/admin/reset", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
