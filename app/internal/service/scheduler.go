package service

import (
	"context"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/metrics"
	"recruit/tracker/app/internal/repository"

	"github.com/jmoiron/sqlx"
)

// SchedulerService manages interview proposals, bookings and confirmation.
type SchedulerService struct{ Env }

func NewSchedulerService(env Env) *SchedulerService { return &SchedulerService{Env: env} }

// ProposeInput describes a set of time windows offered to the candidate.
// Location is optional; when given, the booking confirms the interview at once.
type ProposeInput struct {
	Type     domain.InterviewType
	Slots    []domain.SlotWindow
	Location *domain.LocationType
	Details  domain.MeetingDetails
	Notes    string
}

func (in ProposeInput) validate() error {
	if _, err := domain.ParseInterviewType(string(in.Type)); err != nil {
		return err
	}
	if err := domain.ValidateSlots(in.Slots); err != nil {
		return err
	}
	if in.Location != nil {
		return domain.ValidateLocation(*in.Location, in.Details)
	}
	return nil
}

// ProposeSlots creates an interview with its slots and moves the application
// to the pending status of the interview's stage.
// A screening proposal by an HR makes them the owner; a technical one needs the
// caller to be the assigned interviewer.
func (s *SchedulerService) ProposeSlots(ctx context.Context, staff domain.User, appID int64, in ProposeInput) (domain.Interview, error) {
	if err := in.validate(); err != nil {
		return domain.Interview{}, err
	}
	var (
		iv   domain.Interview
		app  domain.Application
		from domain.Status
	)
	err := repository.Tx(ctx, s.DB, func(tx *sqlx.Tx) error {
		a, err := s.Apps.Get(ctx, tx, appID)
		if err != nil {
			return err
		}
		app, from = a, a.Status
		change := repository.StatusChange{ID: a.ID, From: a.Status, To: in.Type.PendingStatus(), Now: s.now()}
		if in.Type == domain.InterviewTechnical && (a.TechInterviewerID == nil || *a.TechInterviewerID != staff.ID) {
			return domain.Errorf(domain.ErrForbidden, "application %d is not assigned to you", a.ID)
		}
		if err := domain.CanApply(domain.OpProposeSlots, a.Status); err != nil {
			return err
		}
		if in.Type == domain.InterviewHRScreening {
			if err := domain.CanClaim("hr", a.HRID, staff.ID); err != nil {
				return err
			}
			change.HRID = &staff.ID
		}
		if err := s.Apps.UpdateStatus(ctx, tx, change); err != nil {
			return err
		}
		app.Status = change.To

		iv = domain.Interview{
			ApplicationID: a.ID,
			CandidateID:   a.CandidateID,
			InterviewerID: staff.ID,
			Type:          in.Type,
			Notes:         domain.CleanText(in.Notes),
			CreatedAt:     change.Now,
			UpdatedAt:     change.Now,
		}
		if in.Location != nil {
			iv.LocationType = in.Location
			iv.MeetLink, iv.Address = details(in.Details)
		}
		if err := s.Interviews.Create(ctx, tx, &iv); err != nil {
			return err
		}
		iv.Slots, err = s.Interviews.CreateSlots(ctx, tx, iv.ID, in.Slots, change.Now)
		return err
	})
	s.observe(domain.OpProposeSlots, appID, from, app.Status, err)
	if err != nil {
		return domain.Interview{}, err
	}
	s.emit(ctx, Event{Kind: EventSlotsProposed, ApplicationID: app.ID, Position: app.Position, Status: app.Status, Interview: &iv}, app.CandidateID)
	return iv, nil
}

// BookSlot lets the candidate take one slot of an interview.
// Checks run in order: the slot must belong to the interview and the
// interview to the application, the caller must be the candidate, the
// application must be in the interview's stage, and the slot must be free.
func (s *SchedulerService) BookSlot(ctx context.Context, candidate domain.User, appID, interviewID, slotID int64) (domain.Interview, error) {
	var (
		iv   domain.Interview
		app  domain.Application
		from domain.Status
	)
	err := repository.Tx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		if iv, err = s.Interviews.Get(ctx, tx, interviewID); err != nil {
			return err
		}
		if iv.ApplicationID != appID {
			return domain.NotFound("interview", interviewID)
		}
		slot, err := s.Interviews.GetSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if slot.InterviewID != iv.ID {
			return domain.Errorf(domain.ErrNotFound, "slot %d does not belong to interview %d", slotID, iv.ID)
		}
		if iv.CandidateID != candidate.ID {
			return domain.Errorf(domain.ErrForbidden, "interview %d belongs to another candidate", iv.ID)
		}
		if app, err = s.Apps.Get(ctx, tx, appID); err != nil {
			return err
		}
		from = app.Status
		if err := domain.CanAdvanceInterview(domain.OpBookSlot, iv.Type, app.Status); err != nil {
			return err
		}
		if slot.IsBooked || iv.SelectedTime != nil {
			return domain.Errorf(domain.ErrConflict, "interview %d already has a booked slot", iv.ID)
		}

		now := s.now()
		if err := s.Interviews.BookSlot(ctx, tx, slot.ID, iv.ID); err != nil {
			return err
		}
		confirm := iv.LocationType != nil
		if err := s.Interviews.SelectTime(ctx, tx, iv.ID, slot.StartTime, confirm, now); err != nil {
			return err
		}
		if confirm {
			to := iv.Type.ScheduledStatus()
			if err := s.Apps.UpdateStatus(ctx, tx, repository.StatusChange{ID: app.ID, From: app.Status, To: to, Now: now}); err != nil {
				return err
			}
			app.Status = to
		} else if err := s.Apps.Touch(ctx, tx, app.ID, now); err != nil {
			return err
		}
		iv, err = s.reload(ctx, tx, iv.ID)
		return err
	})
	s.observe(domain.OpBookSlot, appID, from, app.Status, err)
	if err != nil {
		return domain.Interview{}, err
	}
	metrics.SlotBookingsTotal.Inc()

	ev := Event{Kind: EventSlotBooked, ApplicationID: app.ID, Position: app.Position, Status: app.Status, Interview: &iv, At: iv.SelectedTime}
	s.emit(ctx, ev, iv.InterviewerID)
	if iv.IsConfirmed {
		ev.Kind = EventInterviewConfirmed
		s.emit(ctx, ev, iv.CandidateID)
	}
	return iv, nil
}

// FinalizeInput attaches meeting details. A zero InterviewID picks the
// newest unconfirmed interview of Type.
type FinalizeInput struct {
	InterviewID int64
	Type        domain.InterviewType
	Location    domain.LocationType
	Details     domain.MeetingDetails
}

// Finalize confirms a booked interview and advances the application to the
// scheduled status of the interview's stage.
func (s *SchedulerService) Finalize(ctx context.Context, staff domain.User, appID int64, in FinalizeInput) (domain.Interview, error) {
	in.Details.MeetLink = domain.CleanText(in.Details.MeetLink)
	in.Details.Address = domain.CleanText(in.Details.Address)
	if err := domain.ValidateLocation(in.Location, in.Details); err != nil {
		return domain.Interview{}, err
	}
	if in.InterviewID == 0 {
		if _, err := domain.ParseInterviewType(string(in.Type)); err != nil {
			return domain.Interview{}, err
		}
	}
	var (
		iv   domain.Interview
		app  domain.Application
		from domain.Status
	)
	err := repository.Tx(ctx, s.DB, func(tx *sqlx.Tx) error {
		var err error
		if in.InterviewID == 0 {
			iv, err = s.Interviews.LatestOpen(ctx, tx, appID, in.Type)
		} else {
			iv, err = s.Interviews.Get(ctx, tx, in.InterviewID)
		}
		if err != nil {
			return err
		}
		if iv.ApplicationID != appID {
			return domain.NotFound("interview", iv.ID)
		}
		if app, err = s.Apps.Get(ctx, tx, appID); err != nil {
			return err
		}
		from = app.Status
		if err := domain.CanAdvanceInterview(domain.OpFinalize, iv.Type, app.Status); err != nil {
			return err
		}
		if iv.Type == domain.InterviewTechnical && (app.TechInterviewerID == nil || *app.TechInterviewerID != staff.ID) {
			return domain.Errorf(domain.ErrForbidden, "application %d is not assigned to you", app.ID)
		}
		if iv.SelectedTime == nil {
			return domain.Errorf(domain.ErrInvalidTransition, "interview %d has no booked slot yet", iv.ID)
		}

		now := s.now()
		if err := s.Interviews.Finalize(ctx, tx, iv.ID, in.Location, in.Details, now); err != nil {
			return err
		}
		to := iv.Type.ScheduledStatus()
		if err := s.Apps.UpdateStatus(ctx, tx, repository.StatusChange{ID: app.ID, From: app.Status, To: to, Now: now}); err != nil {
			return err
		}
		app.Status = to
		iv, err = s.reload(ctx, tx, iv.ID)
		return err
	})
	s.observe(domain.OpFinalize, appID, from, app.Status, err)
	if err != nil {
		return domain.Interview{}, err
	}
	s.emit(ctx, Event{Kind: EventInterviewConfirmed, ApplicationID: app.ID, Position: app.Position, Status: app.Status, Interview: &iv, At: iv.SelectedTime}, iv.CandidateID)
	return iv, nil
}

// reload reads an interview back with its slots.
func (s *SchedulerService) reload(ctx context.Context, q sqlx.ExtContext, id int64) (domain.Interview, error) {
	iv, err := s.Interviews.Get(ctx, q, id)
	if err != nil {
		return domain.Interview{}, err
	}
	ivs := []domain.Interview{iv}
	if err := s.Interviews.WithSlots(ctx, q, ivs); err != nil {
		return domain.Interview{}, err
	}
	return ivs[0], nil
}

func details(d domain.MeetingDetails) (link, addr *string) {
	if v := domain.CleanText(d.MeetLink); v != "" {
		link = &v
	}
	if v := domain.CleanText(d.Address); v != "" {
		addr = &v
	}
	return link, addr
}
