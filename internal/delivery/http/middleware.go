package http

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

// TokenCookie carries the session token for browser clients.
const TokenCookie = "token"

type claimsKey struct{}

// ClaimsFrom returns the session attached by Authenticate, or nil.
func ClaimsFrom(ctx context.Context) *service.Claims {
	c, _ := ctx.Value(claimsKey{}).(*service.Claims)
	return c
}

func userID(r *http.Request) string {
	if c := ClaimsFrom(r.Context()); c != nil {
		return c.UserID
	}
	return ""
}

// EnableCORS allows the storefront origins to call the API.
func EnableCORS(origins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate attaches the session from a Bearer header or the token cookie.
// Requests without a valid token pass through anonymously.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		} else if c, err := r.Cookie(TokenCookie); err == nil {
			token = c.Value
		}
		if token != "" {
			if claims, err := h.Auth.ParseToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole rejects requests whose session role is not one of roles.
func requireRole(next http.HandlerFunc, roles ...entity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ClaimsFrom(r.Context()).HasRole(roles...) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

func admin(next http.HandlerFunc) http.HandlerFunc {
	return requireRole(next, entity.RoleAdmin)
}

func staff(next http.HandlerFunc) http.HandlerFunc {
	return requireRole(next, entity.RoleAdmin, entity.RoleStaff)
}

func signedIn(next http.HandlerFunc) http.HandlerFunc {
	return requireRole(next, entity.RoleAdmin, entity.RoleStaff, entity.RoleCustomer)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests logs one line per request.
func (h *Handler) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Recover turns a handler panic into a 500.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				h.log.Error("Handler panicked",
					zap.String("path", r.URL.Path),
					zap.Any("panic", v),
					zap.Stack("stack"),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
