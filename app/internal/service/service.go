package service

import (
	"context"
	"errors"
	"time"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/metrics"
	"recruit/tracker/app/internal/repository"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Env is the shared set of collaborators every service is built from.
type Env struct {
	DB         *sqlx.DB
	Users      *repository.UsersRepo
	Apps       *repository.ApplicationsRepo
	Interviews *repository.InterviewsRepo
	Feedback   *repository.FeedbackRepo
	Notifier   Notifier
	Log        *zap.Logger
	Now        func() time.Time
}

// NewEnv wires the repositories over db. A nil notifier or logger is replaced
// by a no-op.
func NewEnv(db *sqlx.DB, log *zap.Logger, n Notifier) Env {
	if log == nil {
		log = zap.NewNop()
	}
	if n == nil {
		n = NopNotifier{}
	}
	return Env{
		DB:         db,
		Users:      repository.NewUsersRepo(db),
		Apps:       repository.NewApplicationsRepo(db),
		Interviews: repository.NewInterviewsRepo(db),
		Feedback:   repository.NewFeedbackRepo(db),
		Notifier:   n,
		Log:        log,
		Now:        time.Now,
	}
}

func (e Env) now() time.Time { return e.Now().UTC() }

// observe records the outcome of op on an application.
func (e Env) observe(op domain.Op, appID int64, from, to domain.Status, err error) {
	switch {
	case err == nil:
		metrics.TransitionsTotal.WithLabelValues(op.String()).Inc()
		e.Log.Info("transition",
			zap.Int64("application_id", appID),
			zap.String("op", op.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
	case errors.Is(err, domain.ErrConflict):
		metrics.ConflictsTotal.WithLabelValues(op.String()).Inc()
		e.Log.Warn("lost race",
			zap.Int64("application_id", appID),
			zap.String("op", op.String()),
			zap.Error(err))
	}
}

// telegramIDs resolves user ids to chat recipients, skipping unknown ones.
func (e Env) telegramIDs(ctx context.Context, userIDs ...int64) []int64 {
	out := make([]int64, 0, len(userIDs))
	for _, id := range userIDs {
		u, err := e.Users.Get(ctx, nil, id)
		if err != nil {
			e.Log.Warn("notification recipient lookup failed", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		out = append(out, u.TelegramID)
	}
	return out
}

// emit delivers ev after commit; failures never reach the caller.
func (e Env) emit(ctx context.Context, ev Event, userIDs ...int64) {
	ev.To = e.telegramIDs(ctx, userIDs...)
	if len(ev.To) == 0 {
		return
	}
	e.Notifier.Notify(context.WithoutCancel(ctx), ev)
}
