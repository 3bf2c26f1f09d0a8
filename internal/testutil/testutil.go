// Package testutil provides shared fixtures: a fake upstream marketplace
// API and an in-memory local store.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pitstop/internal/store"
)

// Upstream is a scripted stand-in for the marketplace API. Routes map
// "METHOD /path" to the value returned inside a success envelope.
type Upstream struct {
	*httptest.Server
	Routes map[string]interface{}
	// Fail maps "METHOD /path" to an upstream error message returned with
	// a 400 and success=false.
	Fail map[string]string
	// Capture, when set, receives every request body before routing.
	Capture func(method, path string, body []byte)
}

func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{
		Routes: map[string]interface{}{},
		Fail:   map[string]string{},
	}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		w.Header().Set("Content-Type", "application/json")

		if u.Capture != nil {
			body, _ := io.ReadAll(r.Body)
			u.Capture(r.Method, r.URL.Path, body)
		}

		if msg, ok := u.Fail[key]; ok {
			w.WriteHeader(400)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": msg})
			return
		}
		if data, ok := u.Routes[key]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
			return
		}
		w.WriteHeader(404)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "not found"})
	}))
	t.Cleanup(u.Server.Close)
	return u
}

// OpenStore returns an in-memory local store that closes with the test.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
