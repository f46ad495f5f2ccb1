package middleware

import (
	"context"
	"net/http"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ActorResolver maps an authenticated user ID to an actor with a role.
type ActorResolver interface {
	Resolve(ctx context.Context, userID string) (model.Actor, error)
}

// Identity attaches the caller named by X-User-ID to the request context.
// Requests without the header continue anonymously; handlers that need a
// caller reject them.
func Identity(resolver ActorResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := resolver.Resolve(r.Context(), userID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve caller")
				writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(model.WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := model.ActorFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrUnauthenticated.Code, model.ErrUnauthenticated.Message)
				return
			}
			if !actor.IsAdmin() {
				logger.Warn().Str("user_id", actor.UserID).Str("path", r.URL.Path).Msg("admin route refused")
				writeError(w, http.StatusForbidden, model.ErrForbidden.Code, model.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
