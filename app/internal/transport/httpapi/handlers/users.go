package handlers

import (
	"net/http"

	"recruit/tracker/app/internal/service"

	"github.com/go-chi/chi/v5"
)

// RegisterUsers mounts registration, which runs before the caller is known.
func RegisterUsers(r chi.Router, api *API) {
	r.Post("/users/register", func(w http.ResponseWriter, r *http.Request) {
		var p service.Profile
		if err := decode(r, &p); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		u, err := api.Users.Register(r.Context(), p)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	})
}

// Me answers with the resolved caller.
func Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CurrentUser(r))
}
