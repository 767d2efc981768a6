package repository

import (
	"context"
	"strings"
	"time"

	"recruit/tracker/app/internal/domain"

	"github.com/jmoiron/sqlx"
)

const appCols = `id,candidate_id,hr_id,tech_interviewer_id,full_name,email,phone,position,experience_years,skills,
english_level,education,previous_work,portfolio_url,additional_info,status,rejection_reason,created_at,reviewed_at,updated_at`

type ApplicationsRepo struct{ db *sqlx.DB }

func NewApplicationsRepo(db *sqlx.DB) *ApplicationsRepo { return &ApplicationsRepo{db: db} }

func (r *ApplicationsRepo) on(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

func (r *ApplicationsRepo) Create(ctx context.Context, q sqlx.ExtContext, a *domain.Application) error {
	q = r.on(q)
	err := sqlx.GetContext(ctx, q, &a.ID, q.Rebind(`
insert into applications(candidate_id,full_name,email,phone,position,experience_years,skills,english_level,
  education,previous_work,portfolio_url,additional_info,status,created_at,updated_at)
values(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?) returning id`),
		a.CandidateID, a.FullName, a.Email, a.Phone, a.Position, a.ExperienceYears, a.Skills, a.EnglishLevel,
		a.Education, a.PreviousWork, a.PortfolioURL, a.AdditionalInfo, a.Status, a.CreatedAt, a.UpdatedAt)
	return translate(err, "application")
}

func (r *ApplicationsRepo) Get(ctx context.Context, q sqlx.ExtContext, id int64) (domain.Application, error) {
	q = r.on(q)
	var a domain.Application
	err := sqlx.GetContext(ctx, q, &a, q.Rebind(`select `+appCols+` from applications where id=?`), id)
	if err != nil {
		return domain.Application{}, translate(err, "application")
	}
	return a, nil
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	Statuses          []domain.Status
	CandidateID       *int64
	HRID              *int64
	TechInterviewerID *int64
	UnclaimedHR       bool
	UnclaimedTech     bool
	NewestFirst       bool
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if len(f.Statuses) > 0 {
		conds = append(conds, `status in (?)`)
		args = append(args, f.Statuses)
	}
	if f.CandidateID != nil {
		conds = append(conds, `candidate_id=?`)
		args = append(args, *f.CandidateID)
	}
	if f.HRID != nil {
		conds = append(conds, `hr_id=?`)
		args = append(args, *f.HRID)
	}
	if f.TechInterviewerID != nil {
		conds = append(conds, `tech_interviewer_id=?`)
		args = append(args, *f.TechInterviewerID)
	}
	if f.UnclaimedHR {
		conds = append(conds, `hr_id is null`)
	}
	if f.UnclaimedTech {
		conds = append(conds, `tech_interviewer_id is null`)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` where ` + strings.Join(conds, ` and `), args
}

func (r *ApplicationsRepo) List(ctx context.Context, q sqlx.ExtContext, f Filter) ([]domain.Application, error) {
	q = r.on(q)
	where, args := f.where()
	query := `select ` + appCols + ` from applications` + where
	if f.NewestFirst {
		query += ` order by created_at desc, id desc`
	} else {
		query += ` order by created_at, id`
	}
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	out := []domain.Application{}
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, translate(err, "applications")
	}
	return out, nil
}

// CountByStatus groups the filtered applications by status.
func (r *ApplicationsRepo) CountByStatus(ctx context.Context, q sqlx.ExtContext, f Filter) (map[domain.Status]int, error) {
	q = r.on(q)
	where, args := f.where()
	query, args, err := sqlx.In(`select status, count(1) as n from applications`+where+` group by status`, args...)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status domain.Status `db:"status"`
		N      int           `db:"n"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, translate(err, "application counts")
	}
	out := make(map[domain.Status]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// StatusChange is a compare-and-set on status. Optional parts are applied in
// the same statement.
type StatusChange struct {
	ID   int64
	From domain.Status
	To   domain.Status
	Now  time.Time

	HRID            *int64
	TechID          *int64
	ClearTech       bool
	MarkReviewed    bool
	RejectionReason *string
}

// UpdateStatus applies c only if the application is still in c.From. With
// HRID set it also requires the application to be unowned or owned by HRID.
func (r *ApplicationsRepo) UpdateStatus(ctx context.Context, q sqlx.ExtContext, c StatusChange) error {
	q = r.on(q)
	sets := []string{`status=?`, `updated_at=?`}
	args := []any{c.To, c.Now}
	if c.HRID != nil {
		sets = append(sets, `hr_id=?`)
		args = append(args, *c.HRID)
	}
	switch {
	case c.ClearTech:
		sets = append(sets, `tech_interviewer_id=null`)
	case c.TechID != nil:
		sets = append(sets, `tech_interviewer_id=?`)
		args = append(args, *c.TechID)
	}
	if c.MarkReviewed {
		sets = append(sets, `reviewed_at=coalesce(reviewed_at, ?)`)
		args = append(args, c.Now)
	}
	if c.RejectionReason != nil {
		sets = append(sets, `rejection_reason=?`)
		args = append(args, *c.RejectionReason)
	}
	where := ` where id=? and status=?`
	args = append(args, c.ID, c.From)
	if c.HRID != nil {
		where += ` and (hr_id is null or hr_id=?)`
		args = append(args, *c.HRID)
	}
	query := `update applications set ` + strings.Join(sets, `, `) + where
	ok, err := affected(q.ExecContext(ctx, q.Rebind(query), args...))
	if err != nil {
		return translate(err, "application")
	}
	if !ok {
		if c.HRID != nil {
			return domain.Errorf(domain.ErrConflict, "application %d is no longer %s or belongs to another hr", c.ID, c.From)
		}
		return domain.Errorf(domain.ErrConflict, "application %d is no longer %s", c.ID, c.From)
	}
	return nil
}

// ClaimHR takes an inbox item: it must still be unowned and awaiting screening.
func (r *ApplicationsRepo) ClaimHR(ctx context.Context, q sqlx.ExtContext, id, hrID int64, now time.Time) error {
	q = r.on(q)
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`
update applications set hr_id=?, updated_at=?
where id=? and hr_id is null and status=?`), hrID, now, id, domain.StatusScreeningPending))
	if err != nil {
		return translate(err, "application")
	}
	if !ok {
		return domain.Errorf(domain.ErrConflict, "application %d already claimed", id)
	}
	return nil
}

// ClaimTech takes a pool item: it must still be unowned and awaiting a tech interview.
func (r *ApplicationsRepo) ClaimTech(ctx context.Context, q sqlx.ExtContext, id, interviewerID int64, now time.Time) error {
	q = r.on(q)
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`
update applications set tech_interviewer_id=?, updated_at=?
where id=? and tech_interviewer_id is null and status=?`), interviewerID, now, id, domain.StatusTechPending))
	if err != nil {
		return translate(err, "application")
	}
	if !ok {
		return domain.Errorf(domain.ErrConflict, "application %d already taken from the pool", id)
	}
	return nil
}

// AssignTech sets or replaces the interviewer of an application still in
// status. The status itself is left alone.
func (r *ApplicationsRepo) AssignTech(ctx context.Context, q sqlx.ExtContext, id, interviewerID int64, status domain.Status, now time.Time) error {
	q = r.on(q)
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`
update applications set tech_interviewer_id=?, updated_at=?
where id=? and status=?`), interviewerID, now, id, status))
	if err != nil {
		return translate(err, "application")
	}
	if !ok {
		return domain.Errorf(domain.ErrConflict, "application %d is no longer %s", id, status)
	}
	return nil
}

// Touch bumps updated_at; used when a child row changes.
func (r *ApplicationsRepo) Touch(ctx context.Context, q sqlx.ExtContext, id int64, now time.Time) error {
	q = r.on(q)
	_, err := q.ExecContext(ctx, q.Rebind(`update applications set updated_at=? where id=?`), now, id)
	return translate(err, "application")
}
