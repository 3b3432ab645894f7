package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler exposes sign-in and sign-out over HTTP for the web UI.
type Handler struct {
	mgr *Manager
	log *slog.Logger
}

func NewHandler(mgr *Manager, log *slog.Logger) *Handler {
	return &Handler{mgr: mgr, log: log}
}

// SignIn handles POST /auth/session. The body carries a provider-issued
// bearer token; a valid one opens a cookie session.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s, err := h.mgr.SignInWithToken(body.Token)
	if err != nil {
		h.log.Warn("sign-in rejected", "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"userId": s.UserID,
		"email":  s.Email,
	})
}

// SignOut handles DELETE /auth/session.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		h.mgr.SignOut(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
