package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAuthRejectsAnonymousAPIRequests(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a token")
	}))

	req := httptest.NewRequest("GET", "/api/v1/dealers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthAcceptsBearerAndCookie(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer tok-abc")
		}},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok-abc"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken = Token(r.Context())
			}))

			req := httptest.NewRequest("GET", "/api/v1/orders", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != 200 {
				t.Fatalf("status = %d", w.Code)
			}
			if gotToken != "tok-abc" {
				t.Errorf("token in context = %q", gotToken)
			}
		})
	}
}

func TestRequireAuthExemptsLogin(t *testing.T) {
	reached := false
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest("POST", "/auth/login", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !reached {
		t.Error("login path should not require a token")
	}
}
