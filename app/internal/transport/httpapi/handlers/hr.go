package handlers

import (
	"context"
	"net/http"

	"recruit/tracker/app/internal/domain"

	"github.com/go-chi/chi/v5"
)

type transition func(ctx context.Context, hr domain.User, id int64) (domain.Application, error)

// RegisterHR mounts the HR routes.
func RegisterHR(r chi.Router, api *API) {
	r.Get("/inbox", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.Inbox(r.Context())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/applications", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.HRApplications(r.Context(), CurrentUser(r), r.URL.Query().Get("status"))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/counts", func(w http.ResponseWriter, r *http.Request) {
		c, err := api.Counts.ForHR(r.Context(), CurrentUser(r))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	})

	r.Get("/interviewers", func(w http.ResponseWriter, r *http.Request) {
		list, err := api.Queries.Interviewers(r.Context())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Get("/applications/{id}", api.detail)

	for path, fn := range map[string]transition{
		"claim":              api.Pipeline.ClaimForReview,
		"accept":             api.Pipeline.Accept,
		"hire":               api.Pipeline.Hire,
		"decline":            api.Pipeline.Decline,
		"screening/start":    api.Pipeline.StartScreening,
		"screening/complete": api.Pipeline.CompleteScreening,
		"tech/pool":          api.Pipeline.MoveToTechPool,
	} {
		r.Post("/applications/{id}/"+path, api.transition(fn))
	}

	r.Post("/applications/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := decode(r, &req); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		api.transition(func(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
			return api.Pipeline.Reject(ctx, hr, id, req.Reason)
		})(w, r)
	})

	r.Post("/applications/{id}/tech/assign", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InterviewerID int64 `json:"interviewer_id"`
		}
		if err := decode(r, &req); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		api.transition(func(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
			return api.Pipeline.AssignTechInterviewer(ctx, hr, id, req.InterviewerID)
		})(w, r)
	})

	r.Post("/applications/{id}/screening/propose", api.propose(domain.InterviewHRScreening))
	r.Post("/applications/{id}/screening/finalize", api.finalize(domain.InterviewHRScreening))
}

func (api *API) transition(fn transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			BadRequest(w, "invalid application id")
			return
		}
		a, err := fn(r.Context(), CurrentUser(r), id)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.forget(r.Context(), id)
		writeJSON(w, http.StatusOK, a)
	}
}

func (api *API) detail(w http.ResponseWriter, r *http.Request) {
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
}

func (api *API) propose(t domain.InterviewType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			BadRequest(w, "invalid application id")
			return
		}
		var req proposeRequest
		if err := decode(r, &req); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		in, err := req.input(t)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		iv, err := api.Scheduler.ProposeSlots(r.Context(), CurrentUser(r), id, in)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.forget(r.Context(), id)
		writeJSON(w, http.StatusCreated, iv)
	}
}

func (api *API) finalize(t domain.InterviewType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			BadRequest(w, "invalid application id")
			return
		}
		var req finalizeRequest
		if err := decode(r, &req); err != nil {
			BadRequest(w, "invalid json")
			return
		}
		iv, err := api.Scheduler.Finalize(r.Context(), CurrentUser(r), id, req.input(t))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		api.forget(r.Context(), id)
		writeJSON(w, http.StatusOK, iv)
	}
}
