package handlers

import (
	"net/http"

	"recruit/tracker/app/internal/domain"

	"github.com/go-chi/chi/v5"
)

// RegisterCandidate mounts the candidate's routes. submit wraps the
// application submission so duplicates can be collapsed.
func RegisterCandidate(r chi.Router, api *API, submit func(http.Handler) http.Handler) {
	r.With(submit).Post("/applications", func(w http.ResponseWriter, r *http.Request) {
		var form domain.ApplicationForm
		if err := decode(r, &form); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		a, err := api.Pipeline.Submit(r.Context(), CurrentUser(r), form)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	})

	r.Get("/applications", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.CandidateApplications(r.Context(), CurrentUser(r))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/applications/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			BadRequest(w, "invalid application id")
			return
		}
		d, err := api.Queries.Detail(r.Context(), CurrentUser(r), id)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	})

	r.Get("/interviews", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.CandidateInterviews(r.Context(), CurrentUser(r))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Post("/applications/{id}/interviews/{iid}/book", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		iid, ok2 := pathID(r, "iid")
		if !ok || !ok2 {
			BadRequest(w, "invalid application or interview id")
			return
		}
		var req struct {
			SlotID int64 `json:"slot_id"`
		}
		if err := decode(r, &req); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		if req.SlotID <= 0 {
			api.fail(w, r, domain.ValidationError("slot_id is required", map[string]string{"slot_id": "required"}))
			return
		}
		iv, err := api.Scheduler.BookSlot(r.Context(), CurrentUser(r), id, iid, req.SlotID)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.forget(r.Context(), id)
		writeJSON(w, http.StatusOK, iv)
	})

	r.Post("/applications/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			BadRequest(w, "invalid application id")
			return
		}
		a, err := api.Pipeline.Cancel(r.Context(), CurrentUser(r), id)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.forget(r.Context(), id)
		writeJSON(w, http.StatusOK, a)
	})
}
