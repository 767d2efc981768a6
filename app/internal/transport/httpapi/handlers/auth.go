package handlers

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"recruit/tracker/app/internal/domain"
)

// UserHeader carries the Telegram id of the caller. It is set by the bot
// gateway in front of the API and trusted as is.
const UserHeader = "X-Telegram-User-ID"

type ctxKey struct{}

// WithUser stores the resolved caller in ctx.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// CurrentUser returns the caller resolved by Identify.
func CurrentUser(r *http.Request) domain.User {
	u, _ := r.Context().Value(ctxKey{}).(domain.User)
	return u
}

// Identify resolves UserHeader to a registered, active user or answers 401.
func (api *API) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tgID, err := strconv.ParseInt(r.Header.Get(UserHeader), 10, 64)
		if err != nil || tgID <= 0 {
			Unauthorized(w, "missing or invalid "+UserHeader)
			return
		}
		u, err := api.Users.ByTelegramID(r.Context(), tgID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			Unauthorized(w, "user is not registered")
			return
		case err != nil:
			api.fail(w, r, err)
			return
		case !u.IsActive:
			Unauthorized(w, "user is deactivated")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, CurrentUser(r).Role) {
				Forbidden(w, "role "+string(CurrentUser(r).Role)+" cannot use this endpoint")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
