package service

import (
	"context"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/repository"

	"github.com/jmoiron/sqlx"
)

// PipelineService runs the application state machine.
type PipelineService struct{ Env }

func NewPipelineService(env Env) *PipelineService { return &PipelineService{Env: env} }

// step prepares the status change for a loaded application. Returning a nil
// change with a nil error means there is nothing to write.
type step func(tx *sqlx.Tx, a domain.Application) (*repository.StatusChange, error)

// guard authorizes the caller against a loaded application before any status
// check, so a stranger learns nothing about the state.
type guard func(a domain.Application) error

// apply loads the application, runs auth, checks op against its status, runs
// fn and writes the change, all in one transaction. It returns the stored result.
func (s *PipelineService) apply(ctx context.Context, op domain.Op, id int64, auth guard, fn step) (domain.Application, error) {
	var before, after domain.Application
	err := repository.Tx(ctx, s.DB, func(tx *sqlx.Tx) error {
		a, err := s.Apps.Get(ctx, tx, id)
		if err != nil {
			return err
		}
		before = a
		if auth != nil {
			if err := auth(a); err != nil {
				return err
			}
		}
		if err := domain.CanApply(op, a.Status); err != nil {
			return err
		}
		change, err := fn(tx, a)
		if err != nil {
			return err
		}
		if change != nil {
			change.ID, change.From = a.ID, a.Status
			if change.Now.IsZero() {
				change.Now = s.now()
			}
			if err := s.Apps.UpdateStatus(ctx, tx, *change); err != nil {
				return err
			}
		}
		after, err = s.Apps.Get(ctx, tx, id)
		return err
	})
	s.observe(op, id, before.Status, after.Status, err)
	if err != nil {
		return domain.Application{}, err
	}
	return after, nil
}

// Submit creates an application in the inbox.
func (s *PipelineService) Submit(ctx context.Context, candidate domain.User, form domain.ApplicationForm) (domain.Application, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return domain.Application{}, err
	}
	now := s.now()
	a := domain.Application{
		CandidateID:     candidate.ID,
		FullName:        form.FullName,
		Email:           form.Email,
		Phone:           form.Phone,
		Position:        form.Position,
		ExperienceYears: form.ExperienceYears,
		Skills:          domain.Skills(form.Skills),
		EnglishLevel:    form.EnglishLevel,
		Education:       form.Education,
		PreviousWork:    form.PreviousWork,
		PortfolioURL:    form.PortfolioURL,
		AdditionalInfo:  form.AdditionalInfo,
		Status:          domain.Targets[domain.OpSubmit],
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if a.Skills == nil {
		a.Skills = domain.Skills{}
	}
	err := s.Apps.Create(ctx, nil, &a)
	s.observe(domain.OpSubmit, a.ID, "", a.Status, err)
	if err != nil {
		return domain.Application{}, err
	}
	return a, nil
}

// ClaimForReview takes an inbox item for hr. Claiming one's own item again is a no-op.
func (s *PipelineService) ClaimForReview(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	var claimed bool
	a, err := s.apply(ctx, domain.OpClaimForReview, id, nil, func(tx *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		if err := domain.CanClaim("hr", a.HRID, hr.ID); err != nil {
			return nil, err
		}
		if a.HRID != nil {
			return nil, nil
		}
		claimed = true
		return nil, s.Apps.ClaimHR(ctx, tx, a.ID, hr.ID, s.now())
	})
	if err != nil {
		return domain.Application{}, err
	}
	if claimed {
		s.emit(ctx, Event{Kind: EventInboxClaimed, ApplicationID: a.ID, Position: a.Position, Status: a.Status}, a.CandidateID)
	}
	return a, nil
}

func (s *PipelineService) Accept(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	return s.decide(ctx, domain.OpAccept, hr, id, nil)
}

// Reject needs a non-empty reason.
func (s *PipelineService) Reject(ctx context.Context, hr domain.User, id int64, reason string) (domain.Application, error) {
	reason = domain.CleanText(reason)
	if reason == "" {
		return domain.Application{}, domain.ValidationError("rejection reason is required", map[string]string{"reason": "required"})
	}
	return s.decide(ctx, domain.OpReject, hr, id, &reason)
}

func (s *PipelineService) Hire(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	return s.decide(ctx, domain.OpHire, hr, id, nil)
}

// Decline records that the candidate turned the offer or process down.
func (s *PipelineService) Decline(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	return s.decide(ctx, domain.OpDecline, hr, id, nil)
}

// decide applies an HR decision. The deciding HR becomes the owner, so a
// decision on another HR's item is a conflict.
func (s *PipelineService) decide(ctx context.Context, op domain.Op, hr domain.User, id int64, reason *string) (domain.Application, error) {
	a, err := s.apply(ctx, op, id, nil, func(_ *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		if err := domain.CanClaim("hr", a.HRID, hr.ID); err != nil {
			return nil, err
		}
		return &repository.StatusChange{
			To:              domain.Targets[op],
			HRID:            &hr.ID,
			MarkReviewed:    op != domain.OpDecline,
			RejectionReason: reason,
		}, nil
	})
	if err != nil {
		return domain.Application{}, err
	}
	ev := Event{Kind: EventDecision, ApplicationID: a.ID, Position: a.Position, Status: a.Status}
	if reason != nil {
		ev.Reason = *reason
	}
	s.emit(ctx, ev, a.CandidateID)
	return a, nil
}

// Cancel withdraws an application; only its candidate may do so.
func (s *PipelineService) Cancel(ctx context.Context, candidate domain.User, id int64) (domain.Application, error) {
	a, err := s.apply(ctx, domain.OpCancel, id, ownedBy(candidate), func(_ *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		return &repository.StatusChange{To: domain.Targets[domain.OpCancel]}, nil
	})
	return a, err
}

// StartScreening puts the application back into screening scheduling.
func (s *PipelineService) StartScreening(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	a, err := s.apply(ctx, domain.OpStartScreening, id, nil, func(_ *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		return &repository.StatusChange{To: domain.Targets[domain.OpStartScreening]}, nil
	})
	return a, err
}

func (s *PipelineService) CompleteScreening(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	a, err := s.apply(ctx, domain.OpCompleteScreening, id, nil, func(_ *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		return &repository.StatusChange{To: domain.Targets[domain.OpCompleteScreening]}, nil
	})
	return a, err
}

// MoveToTechPool opens the technical stage; any previous interviewer is dropped.
func (s *PipelineService) MoveToTechPool(ctx context.Context, hr domain.User, id int64) (domain.Application, error) {
	a, err := s.apply(ctx, domain.OpMoveToTechPool, id, nil, func(_ *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		return &repository.StatusChange{To: domain.Targets[domain.OpMoveToTechPool], ClearTech: true}, nil
	})
	return a, err
}

// AssignTechInterviewer sets or replaces the application's interviewer.
// The status is left alone; only pool claims race on an empty slot.
func (s *PipelineService) AssignTechInterviewer(ctx context.Context, hr domain.User, id, interviewerID int64) (domain.Application, error) {
	iv, err := s.Users.Get(ctx, nil, interviewerID)
	if err != nil {
		return domain.Application{}, err
	}
	if iv.Role != domain.RoleInterviewer || !iv.IsActive {
		return domain.Application{}, domain.ValidationError("user is not an active interviewer",
			map[string]string{"interviewer_id": "not an active interviewer"})
	}
	var changed bool
	a, err := s.apply(ctx, domain.OpAssignTechInterviewer, id, nil, func(tx *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		changed = a.TechInterviewerID == nil || *a.TechInterviewerID != iv.ID
		return nil, s.Apps.AssignTech(ctx, tx, a.ID, iv.ID, a.Status, s.now())
	})
	if err != nil {
		return domain.Application{}, err
	}
	if changed {
		s.emit(ctx, Event{Kind: EventInterviewerAssigned, ApplicationID: a.ID, Position: a.Position, Status: a.Status}, iv.ID)
	}
	return a, nil
}

// ClaimFromPool lets an interviewer take an unowned TECH_PENDING application.
func (s *PipelineService) ClaimFromPool(ctx context.Context, interviewer domain.User, id int64) (domain.Application, error) {
	var claimed bool
	a, err := s.apply(ctx, domain.OpClaimFromPool, id, nil, func(tx *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		if err := domain.CanClaim("interviewer", a.TechInterviewerID, interviewer.ID); err != nil {
			return nil, err
		}
		if a.TechInterviewerID != nil {
			return nil, nil
		}
		claimed = true
		return nil, s.Apps.ClaimTech(ctx, tx, a.ID, interviewer.ID, s.now())
	})
	if err != nil {
		return domain.Application{}, err
	}
	if claimed && a.HRID != nil {
		s.emit(ctx, Event{Kind: EventPoolClaimed, ApplicationID: a.ID, Position: a.Position, Status: a.Status}, *a.HRID)
	}
	return a, nil
}

// FeedbackInput is an interviewer's evaluation.
type FeedbackInput struct {
	Score   int    `json:"score"`
	Pros    string `json:"pros"`
	Cons    string `json:"cons"`
	Summary string `json:"summary"`
}

func (in FeedbackInput) validate() error {
	fields := map[string]string{}
	if in.Score < 1 || in.Score > 10 {
		fields["score"] = "must be between 1 and 10"
	}
	for name, v := range map[string]string{"pros": in.Pros, "cons": in.Cons, "summary": in.Summary} {
		if len([]rune(v)) > 2000 {
			fields[name] = "at most 2000 characters"
		}
	}
	if len(fields) > 0 {
		return domain.ValidationError("invalid feedback", fields)
	}
	return nil
}

// SubmitFeedback appends an evaluation and completes the technical stage.
func (s *PipelineService) SubmitFeedback(ctx context.Context, interviewer domain.User, id int64, in FeedbackInput) (domain.Feedback, error) {
	if err := in.validate(); err != nil {
		return domain.Feedback{}, err
	}
	fb := domain.Feedback{
		ApplicationID: id,
		InterviewerID: interviewer.ID,
		Score:         in.Score,
		Pros:          domain.CleanText(in.Pros),
		Cons:          domain.CleanText(in.Cons),
		Summary:       domain.CleanText(in.Summary),
	}
	a, err := s.apply(ctx, domain.OpSubmitFeedback, id, assignedTo(interviewer), func(tx *sqlx.Tx, a domain.Application) (*repository.StatusChange, error) {
		fb.CreatedAt = s.now()
		if err := s.Feedback.Create(ctx, tx, &fb); err != nil {
			return nil, err
		}
		return &repository.StatusChange{To: domain.Targets[domain.OpSubmitFeedback], Now: fb.CreatedAt}, nil
	})
	if err != nil {
		return domain.Feedback{}, err
	}
	if a.HRID != nil {
		s.emit(ctx, Event{Kind: EventFeedbackSubmitted, ApplicationID: a.ID, Position: a.Position, Status: a.Status}, *a.HRID)
	}
	return fb, nil
}

func ownedBy(candidate domain.User) guard {
	return func(a domain.Application) error {
		if a.CandidateID != candidate.ID {
			return domain.Errorf(domain.ErrForbidden, "application %d belongs to another candidate", a.ID)
		}
		return nil
	}
}

func assignedTo(interviewer domain.User) guard {
	return func(a domain.Application) error {
		if a.TechInterviewerID == nil || *a.TechInterviewerID != interviewer.ID {
			return domain.Errorf(domain.ErrForbidden, "application %d is not assigned to you", a.ID)
		}
		return nil
	}
}
