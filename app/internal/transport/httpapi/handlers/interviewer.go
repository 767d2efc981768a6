package handlers

import (
	"net/http"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/service"

	"github.com/go-chi/chi/v5"
)

// RegisterInterviewer mounts the technical interviewer's routes.
func RegisterInterviewer(r chi.Router, api *API) {
	r.Get("/pool", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.Pool(r.Context())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/applications", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.InterviewerApplications(r.Context(), CurrentUser(r))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/applications/{id}", api.detail)
	r.Post("/applications/{id}/claim", api.transition(api.Pipeline.ClaimFromPool))
	r.Post("/applications/{id}/interview/propose", api.propose(domain.InterviewTechnical))
	r.Post("/applications/{id}/interview/finalize", api.finalize(domain.InterviewTechnical))

	r.Post("/applications/{id}/feedback", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			BadRequest(w, "invalid application id")
			return
		}
		var in service.FeedbackInput
		if err := decode(r, &in); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		fb, err := api.Pipeline.SubmitFeedback(r.Context(), CurrentUser(r), id, in)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.forget(r.Context(), id)
		writeJSON(w, http.StatusCreated, fb)
	})
}
