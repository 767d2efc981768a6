package repository

import (
	"context"
	"time"

	"recruit/tracker/app/internal/domain"

	"github.com/jmoiron/sqlx"
)

const interviewCols = `id,application_id,candidate_id,interviewer_id,interview_type,location_type,meet_link,address,
selected_time,is_confirmed,notes,created_at,updated_at`

const slotCols = `id,interview_id,start_time,end_time,is_booked,created_at`

type InterviewsRepo struct{ db *sqlx.DB }

func NewInterviewsRepo(db *sqlx.DB) *InterviewsRepo { return &InterviewsRepo{db: db} }

func (r *InterviewsRepo) on(q sqlx.ExtContext) sqlx.ExtContext {
	if q == nil {
		return r.db
	}
	return q
}

func (r *InterviewsRepo) Create(ctx context.Context, q sqlx.ExtContext, iv *domain.Interview) error {
	q = r.on(q)
	err := sqlx.GetContext(ctx, q, &iv.ID, q.Rebind(`
insert into interviews(application_id,candidate_id,interviewer_id,interview_type,location_type,meet_link,address,
  is_confirmed,notes,created_at,updated_at)
values(?,?,?,?,?,?,?,?,?,?,?) returning id`),
		iv.ApplicationID, iv.CandidateID, iv.InterviewerID, iv.Type, iv.LocationType, iv.MeetLink, iv.Address,
		iv.IsConfirmed, iv.Notes, iv.CreatedAt, iv.UpdatedAt)
	return translate(err, "interview")
}

// CreateSlots inserts one unbooked slot per window, in the given order.
func (r *InterviewsRepo) CreateSlots(ctx context.Context, q sqlx.ExtContext, interviewID int64, windows []domain.SlotWindow, now time.Time) ([]domain.Slot, error) {
	q = r.on(q)
	out := make([]domain.Slot, 0, len(windows))
	stmt := q.Rebind(`insert into interview_slots(interview_id,start_time,end_time,is_booked,created_at) values(?,?,?,?,?) returning id`)
	for _, w := range windows {
		s := domain.Slot{InterviewID: interviewID, StartTime: w.Start.UTC(), EndTime: w.End.UTC(), CreatedAt: now}
		if err := sqlx.GetContext(ctx, q, &s.ID, stmt, s.InterviewID, s.StartTime, s.EndTime, false, s.CreatedAt); err != nil {
			return nil, translate(err, "slot")
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *InterviewsRepo) Get(ctx context.Context, q sqlx.ExtContext, id int64) (domain.Interview, error) {
	q = r.on(q)
	var iv domain.Interview
	err := sqlx.GetContext(ctx, q, &iv, q.Rebind(`select `+interviewCols+` from interviews where id=?`), id)
	if err != nil {
		return domain.Interview{}, translate(err, "interview")
	}
	return iv, nil
}

func (r *InterviewsRepo) GetSlot(ctx context.Context, q sqlx.ExtContext, id int64) (domain.Slot, error) {
	q = r.on(q)
	var s domain.Slot
	err := sqlx.GetContext(ctx, q, &s, q.Rebind(`select `+slotCols+` from interview_slots where id=?`), id)
	if err != nil {
		return domain.Slot{}, translate(err, "slot")
	}
	return s, nil
}

// Slots loads the slots of several interviews at once, keyed by interview id.
func (r *InterviewsRepo) Slots(ctx context.Context, q sqlx.ExtContext, interviewIDs ...int64) (map[int64][]domain.Slot, error) {
	out := make(map[int64][]domain.Slot, len(interviewIDs))
	if len(interviewIDs) == 0 {
		return out, nil
	}
	q = r.on(q)
	query, args, err := sqlx.In(`select `+slotCols+` from interview_slots where interview_id in (?) order by start_time, id`, interviewIDs)
	if err != nil {
		return nil, err
	}
	var rows []domain.Slot
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, translate(err, "slots")
	}
	for _, s := range rows {
		out[s.InterviewID] = append(out[s.InterviewID], s)
	}
	return out, nil
}

// BookSlot flips is_booked on a slot of the given interview, once.
// Losing the race, or a second slot of the same interview hitting the
// one-booked index, both come back as a conflict.
func (r *InterviewsRepo) BookSlot(ctx context.Context, q sqlx.ExtContext, slotID, interviewID int64) error {
	q = r.on(q)
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`
update interview_slots set is_booked=?
where id=? and interview_id=? and is_booked=?`), true, slotID, interviewID, false))
	if err != nil {
		return translate(err, "slot")
	}
	if !ok {
		return domain.Errorf(domain.ErrConflict, "slot %d is already booked", slotID)
	}
	return nil
}

// SelectTime records the booked time; it can only happen once per interview.
func (r *InterviewsRepo) SelectTime(ctx context.Context, q sqlx.ExtContext, id int64, at time.Time, confirm bool, now time.Time) error {
	q = r.on(q)
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`
update interviews set selected_time=?, is_confirmed=?, updated_at=?
where id=? and selected_time is null`), at.UTC(), confirm, now, id))
	if err != nil {
		return translate(err, "interview")
	}
	if !ok {
		return domain.Errorf(domain.ErrConflict, "interview %d already has a selected time", id)
	}
	return nil
}

// Finalize attaches meeting details and confirms the interview.
func (r *InterviewsRepo) Finalize(ctx context.Context, q sqlx.ExtContext, id int64, loc domain.LocationType, d domain.MeetingDetails, now time.Time) error {
	q = r.on(q)
	var link, addr *string
	if d.MeetLink != "" {
		link = &d.MeetLink
	}
	if d.Address != "" {
		addr = &d.Address
	}
	ok, err := affected(q.ExecContext(ctx, q.Rebind(`
update interviews set location_type=?, meet_link=?, address=?, is_confirmed=?, updated_at=?
where id=?`), loc, link, addr, true, now, id))
	if err != nil {
		return translate(err, "interview")
	}
	if !ok {
		return domain.NotFound("interview", id)
	}
	return nil
}

func (r *InterviewsRepo) ListByApplication(ctx context.Context, q sqlx.ExtContext, applicationID int64) ([]domain.Interview, error) {
	return r.list(ctx, q, `application_id=?`, applicationID)
}

func (r *InterviewsRepo) ListByCandidate(ctx context.Context, q sqlx.ExtContext, candidateID int64) ([]domain.Interview, error) {
	return r.list(ctx, q, `candidate_id=?`, candidateID)
}

func (r *InterviewsRepo) list(ctx context.Context, q sqlx.ExtContext, cond string, arg any) ([]domain.Interview, error) {
	q = r.on(q)
	out := []domain.Interview{}
	err := sqlx.SelectContext(ctx, q, &out, q.Rebind(`select `+interviewCols+` from interviews where `+cond+` order by created_at, id`), arg)
	if err != nil {
		return nil, translate(err, "interviews")
	}
	return out, nil
}

// LatestOpen returns the newest unconfirmed interview of type t for an application.
func (r *InterviewsRepo) LatestOpen(ctx context.Context, q sqlx.ExtContext, applicationID int64, t domain.InterviewType) (domain.Interview, error) {
	q = r.on(q)
	var iv domain.Interview
	err := sqlx.GetContext(ctx, q, &iv, q.Rebind(`
select `+interviewCols+` from interviews
where application_id=? and interview_type=? and is_confirmed=?
order by created_at desc, id desc limit 1`), applicationID, t, false)
	if err != nil {
		return domain.Interview{}, translate(err, "open "+string(t)+" interview")
	}
	return iv, nil
}

// WithSlots fills Slots on every interview in place.
func (r *InterviewsRepo) WithSlots(ctx context.Context, q sqlx.ExtContext, ivs []domain.Interview) error {
	ids := make([]int64, len(ivs))
	for i, iv := range ivs {
		ids[i] = iv.ID
	}
	slots, err := r.Slots(ctx, q, ids...)
	if err != nil {
		return err
	}
	for i := range ivs {
		ivs[i].Slots = slots[ivs[i].ID]
		if ivs[i].Slots == nil {
			ivs[i].Slots = []domain.Slot{}
		}
	}
	return nil
}
