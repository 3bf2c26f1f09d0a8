// Package server holds the shared application wiring: dependencies, request
// context, and the HTTP middleware chain.
package server

import (
	"context"

	"pitstop/internal/gateway"
	"pitstop/internal/store"
	"pitstop/internal/ws"
)

// ContextKey is the type used for request context keys.
type ContextKey string

const (
	CtxToken    ContextKey = "token"
	CtxUsername ContextKey = "username"
)

// App holds shared dependencies for the application.
type App struct {
	Gateway *gateway.Client
	Store   *store.Store
	Hub     *ws.Hub

	// ImageOrigin resolves relative asset paths returned by the upstream
	// into absolute URLs.
	ImageOrigin string
}

// Token returns the upstream bearer token carried by the request, or "".
func Token(ctx context.Context) string {
	t, _ := ctx.Value(CtxToken).(string)
	return t
}

// Username returns the display name of the authenticated user, defaulting
// to "system" for bearer-only callers.
func Username(ctx context.Context) string {
	if u, ok := ctx.Value(CtxUsername).(string); ok && u != "" {
		return u
	}
	return "system"
}
