package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"recruit/tracker/app/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

// API holds the services every handler group talks to.
type API struct {
	Pipeline  *service.PipelineService
	Scheduler *service.SchedulerService
	Queries   *service.QueryService
	Counts    *service.CountsService
	Users     *service.UsersService
	Log       *zap.Logger
}

func (api *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := mapError(err)
	if ae.HTTP >= http.StatusInternalServerError {
		api.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, ae)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// forget drops cached tab counts touched by a change to application id.
func (api *API) forget(ctx context.Context, id int64) {
	if api.Counts != nil {
		api.Counts.InvalidateFor(ctx, id)
	}
}
