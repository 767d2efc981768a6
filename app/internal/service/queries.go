package service

import (
	"context"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/repository"
)

// QueryService serves the read-only projections behind each role's screens.
type QueryService struct{ Env }

func NewQueryService(env Env) *QueryService { return &QueryService{Env: env} }

// Inbox lists unclaimed applications awaiting screening, oldest first.
func (s *QueryService) Inbox(ctx context.Context) ([]domain.Application, error) {
	return s.Apps.List(ctx, nil, repository.Filter{
		Statuses:    []domain.Status{domain.StatusScreeningPending},
		UnclaimedHR: true,
	})
}

// HRApplications lists what hr owns, narrowed by a status group or status name.
func (s *QueryService) HRApplications(ctx context.Context, hr domain.User, filter string) ([]domain.Application, error) {
	statuses, err := domain.StatusesOf(filter)
	if err != nil {
		return nil, err
	}
	return s.Apps.List(ctx, nil, repository.Filter{HRID: &hr.ID, Statuses: statuses, NewestFirst: true})
}

// Pool lists unclaimed applications awaiting a technical interview, oldest first.
func (s *QueryService) Pool(ctx context.Context) ([]domain.Application, error) {
	return s.Apps.List(ctx, nil, repository.Filter{
		Statuses:      []domain.Status{domain.StatusTechPending},
		UnclaimedTech: true,
	})
}

// Assigned splits an interviewer's applications into work still to do and
// finished ones.
type Assigned struct {
	Active  []domain.Application `json:"active"`
	Archive []domain.Application `json:"archive"`
}

func (s *QueryService) InterviewerApplications(ctx context.Context, interviewer domain.User) (Assigned, error) {
	list, err := s.Apps.List(ctx, nil, repository.Filter{TechInterviewerID: &interviewer.ID, NewestFirst: true})
	if err != nil {
		return Assigned{}, err
	}
	out := Assigned{Active: []domain.Application{}, Archive: []domain.Application{}}
	for _, a := range list {
		if a.Status.Terminal() || a.Status == domain.StatusTechCompleted {
			out.Archive = append(out.Archive, a)
		} else {
			out.Active = append(out.Active, a)
		}
	}
	return out, nil
}

func (s *QueryService) CandidateApplications(ctx context.Context, candidate domain.User) ([]domain.Application, error) {
	return s.Apps.List(ctx, nil, repository.Filter{CandidateID: &candidate.ID, NewestFirst: true})
}

// CandidateInterviews lists the candidate's interviews with their slots.
func (s *QueryService) CandidateInterviews(ctx context.Context, candidate domain.User) ([]domain.Interview, error) {
	ivs, err := s.Interviews.ListByCandidate(ctx, nil, candidate.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Interviews.WithSlots(ctx, nil, ivs); err != nil {
		return nil, err
	}
	return ivs, nil
}

// Detail returns an application with interviews, slots and feedback.
// Interviewers see only what is assigned to them; candidates see their own
// applications without feedback.
func (s *QueryService) Detail(ctx context.Context, viewer domain.User, id int64) (domain.ApplicationDetail, error) {
	a, err := s.Apps.Get(ctx, nil, id)
	if err != nil {
		return domain.ApplicationDetail{}, err
	}
	switch viewer.Role {
	case domain.RoleHR, domain.RoleDirector, domain.RoleAnalyst:
	case domain.RoleInterviewer:
		if a.TechInterviewerID == nil || *a.TechInterviewerID != viewer.ID {
			return domain.ApplicationDetail{}, domain.Errorf(domain.ErrForbidden, "application %d is not assigned to you", id)
		}
	default:
		if a.CandidateID != viewer.ID {
			return domain.ApplicationDetail{}, domain.Errorf(domain.ErrForbidden, "application %d belongs to another candidate", id)
		}
	}

	d := domain.ApplicationDetail{Application: a, Feedbacks: []domain.Feedback{}}
	if d.Interviews, err = s.Interviews.ListByApplication(ctx, nil, id); err != nil {
		return domain.ApplicationDetail{}, err
	}
	if err := s.Interviews.WithSlots(ctx, nil, d.Interviews); err != nil {
		return domain.ApplicationDetail{}, err
	}
	if viewer.Role != domain.RoleCandidate {
		if d.Feedbacks, err = s.Feedback.ListByApplication(ctx, nil, id); err != nil {
			return domain.ApplicationDetail{}, err
		}
	}
	return d, nil
}

// Interviewers lists active interviewers an HR can assign directly.
func (s *QueryService) Interviewers(ctx context.Context) ([]domain.User, error) {
	role := domain.RoleInterviewer
	all, err := s.Users.List(ctx, nil, &role)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}
