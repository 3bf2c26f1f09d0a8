package admin

import (
	"net/http"
	"time"

	"pitstop/internal/handlers/common"
	"pitstop/internal/models"
	"pitstop/internal/response"
	"pitstop/internal/server"
	"pitstop/internal/validation"
)

// loginResult is the upstream login payload: the bearer token plus the
// authenticated user.
type loginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login forwards credentials upstream and, on success, sets the session
// cookies so browser clients do not have to manage the bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := response.DecodeBody(r, &creds); err != nil {
		response.Err(w, "Invalid request body", 400)
		return
	}

	var ve validation.ValidationErrors
	validation.RequireField(&ve, "email", creds.Email)
	validation.ValidateEmail(&ve, "email", creds.Email)
	validation.RequireField(&ve, "password", creds.Password)
	if ve.HasErrors() {
		response.FieldErrors(w, ve.Errors)
		return
	}

	var result loginResult
	if err := h.App.Gateway.Post(r.Context(), "", "auth/api/login", creds, &result); err != nil {
		common.RelayError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     server.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	http.SetCookie(w, &http.Cookie{
		Name:    server.UserCookie,
		Value:   result.User.Name,
		Path:    "/",
		Expires: time.Now().Add(24 * time.Hour),
	})
	response.JSON(w, result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{server.SessionCookie, server.UserCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	response.JSON(w, map[string]bool{"logged_out": true})
}

// Me returns the authenticated user as reported by the upstream.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := h.App.Gateway.Get(r.Context(), server.Token(r.Context()), "auth/api/me", &user); err != nil {
		common.RelayError(w, err)
		return
	}
	response.JSON(w, user)
}
