package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/infrastructure/oauth"
	"propdesk-service/pkg/logger"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const profileKey ctxKey = iota

// profileFrom returns the admin attached by the auth middleware.
func profileFrom(ctx context.Context) *entity.AdminProfile {
	p, _ := ctx.Value(profileKey).(*entity.AdminProfile)
	return p
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter that browser WebSocket clients must use.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("access_token")
}

// authenticate verifies the bearer token and attaches the admin profile.
func authenticate(verifier oauth.Verifier, admins AdminDirectory, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := verifier.Verify(r.Context(), bearerToken(r))
			if err != nil {
				handleError(w, log, err)
				return
			}
			profile, err := admins.Profile(r.Context(), id.UID, id.Email)
			if err != nil {
				handleError(w, log, err)
				return
			}
			if profile.Name == "" {
				profile.Name = id.Name
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey, profile)))
		})
	}
}

// requireContentRole limits writes to admins.
func requireContentRole(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := profileFrom(r.Context())
			if p == nil || !p.CanManageContent() {
				handleError(w, log, entity.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("Request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}
