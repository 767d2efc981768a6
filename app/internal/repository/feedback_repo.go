package repository

import (
	"context"

	"recruit/tracker/app/internal/domain"

	"github.com/jmoiron/sqlx"
)

const feedbackCols = `id,application_id,interviewer_id,score,pros,cons,summary,created_at`

// FeedbackRepo is append-only.
type FeedbackRepo struct{ db *sqlx.DB }

func NewFeedbackRepo(db *sqlx.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

func (r *FeedbackRepo) on(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

func (r *FeedbackRepo) Create(ctx context.Context, q sqlx.ExtContext, f *domain.Feedback) error {
	q = r.on(q)
	err := sqlx.GetContext(ctx, q, &f.ID, q.Rebind(`
insert into feedbacks(application_id,interviewer_id,score,pros,cons,summary,created_at)
values(?,?,?,?,?,?,?) returning id`),
		f.ApplicationID, f.InterviewerID, f.Score, f.Pros, f.Cons, f.Summary, f.CreatedAt)
	return translate(err, "feedback")
}

func (r *FeedbackRepo) ListByApplication(ctx context.Context, q sqlx.ExtContext, applicationID int64) ([]domain.Feedback, error) {
	q = r.on(q)
	out := []domain.Feedback{}
	err := sqlx.SelectContext(ctx, q, &out, q.Rebind(`select `+feedbackCols+` from feedbacks where application_id=? order by created_at, id`), applicationID)
	if err != nil {
		return nil, translate(err, "feedbacks")
	}
	return out, nil
}
