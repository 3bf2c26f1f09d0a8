package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

// SessionCookie carries the upstream bearer token between requests.
const SessionCookie = "pitstop_session"

// UserCookie carries the display name used for audit attribution.
const UserCookie = "pitstop_user"

// Logging adds CORS headers, answers preflights, and logs each request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(200)
			return
		}
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// RequireAuth extracts the upstream bearer token from the Authorization
// header or the session cookie and stores it in the request context. The
// dashboard never validates credentials itself; an invalid token simply
// fails at the upstream on the first gateway call.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" || path == "/healthz" ||
			strings.HasPrefix(path, "/static/") ||
			path == "/auth/login" {
			next.ServeHTTP(w, r)
			return
		}

		token := ""
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := r.Cookie(SessionCookie); err == nil {
			token = cookie.Value
		}

		if token == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(401)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized", "code": "UNAUTHORIZED"})
			return
		}

		ctx := context.WithValue(r.Context(), CtxToken, token)
		if cookie, err := r.Cookie(UserCookie); err == nil {
			ctx = context.WithValue(ctx, CtxUsername, cookie.Value)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
