package http

import (
	"errors"
	"net/http"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "register", err, "")
		return
	}
	u, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		h.fail(w, "register", err, "Failed to create account")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "login", err, "")
		return
	}
	token, claims, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.fail(w, "login", err, "Failed to sign in")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": claims})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": ClaimsFrom(r.Context())})
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Auth.Account(r.Context(), userID(r))
	if err != nil {
		h.fail(w, "account", err, "Failed to fetch account")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, total, err := h.Auth.ListCustomers(r.Context(), r.URL.Query().Get("q"), page(r, 50, 200))
	if err != nil {
		h.fail(w, "list customers", err, "Failed to fetch customers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers, "total": total})
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Auth.Customer(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get customer", err, "Failed to fetch customer")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
