package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

type fixture struct {
	env       Env
	pipeline  *PipelineService
	scheduler *SchedulerService
	queries   *QueryService
	notes     *recorder

	candidate, other domain.User
	hr1, hr2         domain.User
	iv1, iv2         domain.User
}

var day = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	notes := &recorder{}
	env := NewEnv(db, nil, notes)

	var mu sync.Mutex
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	env.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	return &fixture{
		env:       env,
		pipeline:  NewPipelineService(env),
		scheduler: NewSchedulerService(env),
		queries:   NewQueryService(env),
		notes:     notes,
		candidate: testdb.User(t, db, 1, domain.RoleCandidate),
		other:     testdb.User(t, db, 2, domain.RoleCandidate),
		hr1:       testdb.User(t, db, 10, domain.RoleHR),
		hr2:       testdb.User(t, db, 11, domain.RoleHR),
		iv1:       testdb.User(t, db, 20, domain.RoleInterviewer),
		iv2:       testdb.User(t, db, 21, domain.RoleInterviewer),
	}
}

func (f *fixture) submit(t *testing.T) domain.Application {
	t.Helper()
	a, err := f.pipeline.Submit(context.Background(), f.candidate, domain.ApplicationForm{
		FullName: "Olena Kovalenko",
		Email:    "olena@example.com",
		Position: "Go developer",
		Skills:   []string{"go"},
	})
	require.NoError(t, err)
	return a
}

func slotAt(h int) domain.SlotWindow {
	start := day.Add(time.Duration(h) * time.Hour)
	return domain.SlotWindow{Start: start, End: start.Add(30 * time.Minute)}
}

// toTechPending walks an application through screening into the pool.
func (f *fixture) toTechPending(t *testing.T) domain.Application {
	t.Helper()
	ctx := context.Background()
	a := f.submit(t)
	_, err := f.pipeline.Accept(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	a, err = f.pipeline.MoveToTechPool(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusTechPending, a.Status)
	return a
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	a := f.submit(t)
	assert.Equal(t, domain.StatusScreeningPending, a.Status)
	assert.Nil(t, a.HRID)
	assert.Nil(t, a.TechInterviewerID)

	_, err := f.pipeline.Submit(context.Background(), f.candidate, domain.ApplicationForm{FullName: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)

	_, err := f.pipeline.Reject(ctx, f.hr1, a.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.pipeline.Reject(ctx, f.hr1, a.ID, "not enough experience")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	require.NotNil(t, got.ReviewedAt)
	require.NotNil(t, got.RejectionReason)
	assert.Equal(t, "not enough experience", *got.RejectionReason)
	assert.Equal(t, f.hr1.ID, *got.HRID)
}

func TestTerminalApplicationsAreFrozen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	_, err := f.pipeline.Hire(ctx, f.hr1, a.ID)
	require.NoError(t, err)

	ops := map[string]func() error{
		"accept":   func() error { _, err := f.pipeline.Accept(ctx, f.hr1, a.ID); return err },
		"reject":   func() error { _, err := f.pipeline.Reject(ctx, f.hr1, a.ID, "late"); return err },
		"decline":  func() error { _, err := f.pipeline.Decline(ctx, f.hr1, a.ID); return err },
		"cancel":   func() error { _, err := f.pipeline.Cancel(ctx, f.candidate, a.ID); return err },
		"screen":   func() error { _, err := f.pipeline.StartScreening(ctx, f.hr1, a.ID); return err },
		"tech":     func() error { _, err := f.pipeline.MoveToTechPool(ctx, f.hr1, a.ID); return err },
		"assign":   func() error { _, err := f.pipeline.AssignTechInterviewer(ctx, f.hr1, a.ID, f.iv1.ID); return err },
		"claim hr": func() error { _, err := f.pipeline.ClaimForReview(ctx, f.hr1, a.ID); return err },
		"propose": func() error {
			_, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{Type: domain.InterviewHRScreening, Slots: []domain.SlotWindow{slotAt(10)}})
			return err
		},
	}
	for name, op := range ops {
		assert.ErrorIs(t, op(), domain.ErrInvalidTransition, name)
	}
}

func TestClaimForReviewIsExclusive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)

	got, err := f.pipeline.ClaimForReview(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.hr1.ID, *got.HRID)
	assert.Equal(t, domain.StatusScreeningPending, got.Status)

	_, err = f.pipeline.ClaimForReview(ctx, f.hr2, a.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.pipeline.ClaimForReview(ctx, f.hr1, a.ID)
	assert.NoError(t, err, "re-claiming one's own item")

	_, err = f.pipeline.Accept(ctx, f.hr2, a.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "decision on another HR's item")

	inbox, err := f.queries.Inbox(ctx)
	require.NoError(t, err)
	assert.Empty(t, inbox)
	assert.Equal(t, []EventKind{EventInboxClaimed}, f.notes.kinds())
}

func TestConcurrentInboxClaimsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)

	hrs := []domain.User{f.hr1, f.hr2}
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.pipeline.ClaimForReview(ctx, hrs[i%2], a.ID)
		}(i)
	}
	wg.Wait()

	got, err := f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.HRID)
	for i, err := range errs {
		if hrs[i%2].ID == *got.HRID {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, domain.ErrConflict)
		}
	}
}

func TestReviewedAtSetOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)

	accepted, err := f.pipeline.Accept(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	hired, err := f.pipeline.Hire(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	assert.True(t, accepted.ReviewedAt.Equal(*hired.ReviewedAt))
	assert.True(t, hired.UpdatedAt.After(accepted.UpdatedAt))
}

func TestScreeningScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)

	iv, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{
		Type:  domain.InterviewHRScreening,
		Slots: []domain.SlotWindow{slotAt(10), slotAt(11), slotAt(14)},
	})
	require.NoError(t, err)
	require.Len(t, iv.Slots, 3)

	booked, err := f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[1].ID)
	require.NoError(t, err)
	require.NotNil(t, booked.SelectedTime)
	assert.True(t, day.Add(11*time.Hour).Equal(*booked.SelectedTime))
	assert.False(t, booked.IsConfirmed)

	app, err := f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScreeningPending, app.Status)

	final, err := f.scheduler.Finalize(ctx, f.hr1, a.ID, FinalizeInput{
		Type:     domain.InterviewHRScreening,
		Location: domain.LocationOnline,
		Details:  domain.MeetingDetails{MeetLink: "https://meet.example/abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, iv.ID, final.ID)
	assert.True(t, final.IsConfirmed)
	assert.Equal(t, "https://meet.example/abc", *final.MeetLink)

	app, err = f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScreeningScheduled, app.Status)

	assert.Equal(t, []EventKind{EventSlotsProposed, EventSlotBooked, EventInterviewConfirmed}, f.notes.kinds())

	done, err := f.pipeline.CompleteScreening(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScreeningCompleted, done.Status)
}

func TestBookingWithLocationConfirmsAtOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	office := domain.LocationOffice

	iv, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{
		Type:     domain.InterviewHRScreening,
		Slots:    []domain.SlotWindow{slotAt(10)},
		Location: &office,
		Details:  domain.MeetingDetails{Address: "Kyiv, Khreshchatyk 1"},
	})
	require.NoError(t, err)

	booked, err := f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[0].ID)
	require.NoError(t, err)
	assert.True(t, booked.IsConfirmed)
	assert.True(t, booked.Slots[0].IsBooked)

	app, err := f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScreeningScheduled, app.Status)
}

func TestBookingChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	iv, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{
		Type:  domain.InterviewHRScreening,
		Slots: []domain.SlotWindow{slotAt(10), slotAt(11)},
	})
	require.NoError(t, err)
	other, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{
		Type:  domain.InterviewHRScreening,
		Slots: []domain.SlotWindow{slotAt(15)},
	})
	require.NoError(t, err)

	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, other.Slots[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "slot of another interview")
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID+1, iv.ID, iv.Slots[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "interview of another application")
	_, err = f.scheduler.BookSlot(ctx, f.other, a.ID, iv.ID, iv.Slots[0].ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[0].ID)
	require.NoError(t, err)
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[0].ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "same slot twice")
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[1].ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "second slot of a booked interview")

	slots, err := f.env.Interviews.Slots(ctx, nil, iv.ID)
	require.NoError(t, err)
	var booked int
	for _, s := range slots[iv.ID] {
		if s.IsBooked {
			booked++
		}
	}
	assert.Equal(t, 1, booked)
}

func TestConcurrentBookingHasOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	iv, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{
		Type:  domain.InterviewHRScreening,
		Slots: []domain.SlotWindow{slotAt(10), slotAt(11), slotAt(14)},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 9)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[i%3].ID)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestFinalizeNeedsBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	iv, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{Type: domain.InterviewHRScreening, Slots: []domain.SlotWindow{slotAt(10)}})
	require.NoError(t, err)

	_, err = f.scheduler.Finalize(ctx, f.hr1, a.ID, FinalizeInput{InterviewID: iv.ID, Location: domain.LocationOnline, Details: domain.MeetingDetails{MeetLink: "https://m"}})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.scheduler.Finalize(ctx, f.hr1, a.ID, FinalizeInput{InterviewID: iv.ID, Location: domain.LocationOnline})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.scheduler.Finalize(ctx, f.hr1, a.ID, FinalizeInput{InterviewID: 9999, Location: domain.LocationOffice, Details: domain.MeetingDetails{Address: "HQ"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProposeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)

	_, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{Type: domain.InterviewHRScreening})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := slotAt(10)
	bad.End = bad.Start.Add(-time.Minute)
	_, err = f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{Type: domain.InterviewHRScreening, Slots: []domain.SlotWindow{bad}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.scheduler.ProposeSlots(ctx, f.iv1, a.ID, ProposeInput{Type: domain.InterviewTechnical, Slots: []domain.SlotWindow{slotAt(10)}})
	assert.ErrorIs(t, err, domain.ErrForbidden, "technical proposal by an unassigned interviewer")
}

func TestPoolClaimScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.toTechPending(t)

	pool, err := f.queries.Pool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 1)

	got, err := f.pipeline.ClaimFromPool(ctx, f.iv1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, f.iv1.ID, *got.TechInterviewerID)
	assert.Equal(t, domain.StatusTechPending, got.Status)

	_, err = f.pipeline.ClaimFromPool(ctx, f.iv2, a.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	pool, err = f.queries.Pool(ctx)
	require.NoError(t, err)
	assert.Empty(t, pool)
	assert.Contains(t, f.notes.kinds(), EventPoolClaimed)
}

func TestTechnicalStageToHire(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.toTechPending(t)
	_, err := f.pipeline.ClaimFromPool(ctx, f.iv1, a.ID)
	require.NoError(t, err)

	iv, err := f.scheduler.ProposeSlots(ctx, f.iv1, a.ID, ProposeInput{Type: domain.InterviewTechnical, Slots: []domain.SlotWindow{slotAt(16)}})
	require.NoError(t, err)
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[0].ID)
	require.NoError(t, err)

	_, err = f.scheduler.Finalize(ctx, f.iv2, a.ID, FinalizeInput{InterviewID: iv.ID, Location: domain.LocationOffice, Details: domain.MeetingDetails{Address: "HQ"}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.scheduler.Finalize(ctx, f.iv1, a.ID, FinalizeInput{Type: domain.InterviewTechnical, Location: domain.LocationOffice, Details: domain.MeetingDetails{Address: "HQ"}})
	require.NoError(t, err)

	app, err := f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTechScheduled, app.Status)

	_, err = f.pipeline.SubmitFeedback(ctx, f.iv2, a.ID, FeedbackInput{Score: 8})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.pipeline.SubmitFeedback(ctx, f.iv1, a.ID, FeedbackInput{Score: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
	fb, err := f.pipeline.SubmitFeedback(ctx, f.iv1, a.ID, FeedbackInput{Score: 8, Pros: "solid Go", Summary: "hire"})
	require.NoError(t, err)
	assert.NotZero(t, fb.ID)

	app, err = f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTechCompleted, app.Status)

	assigned, err := f.queries.InterviewerApplications(ctx, f.iv1)
	require.NoError(t, err)
	assert.Empty(t, assigned.Active)
	require.Len(t, assigned.Archive, 1)

	hired, err := f.pipeline.Hire(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHired, hired.Status)

	detail, err := f.queries.Detail(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Interviews, 1)
	assert.Len(t, detail.Feedbacks, 1)
}

func TestCancelThenFinalizeFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.toTechPending(t)
	_, err := f.pipeline.ClaimFromPool(ctx, f.iv1, a.ID)
	require.NoError(t, err)
	online := domain.LocationOnline
	iv, err := f.scheduler.ProposeSlots(ctx, f.iv1, a.ID, ProposeInput{
		Type: domain.InterviewTechnical, Slots: []domain.SlotWindow{slotAt(16)},
		Location: &online, Details: domain.MeetingDetails{MeetLink: "https://meet.example/t"},
	})
	require.NoError(t, err)
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[0].ID)
	require.NoError(t, err)

	app, err := f.env.Apps.Get(ctx, nil, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusTechScheduled, app.Status)

	_, err = f.pipeline.Cancel(ctx, f.other, a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	cancelled, err := f.pipeline.Cancel(ctx, f.candidate, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = f.scheduler.Finalize(ctx, f.iv1, a.ID, FinalizeInput{InterviewID: iv.ID, Location: domain.LocationOnline, Details: domain.MeetingDetails{MeetLink: "https://meet.example/t"}})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAssignTechInterviewer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	_, err := f.pipeline.Accept(ctx, f.hr1, a.ID)
	require.NoError(t, err)

	_, err = f.pipeline.AssignTechInterviewer(ctx, f.hr1, a.ID, f.hr2.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.pipeline.AssignTechInterviewer(ctx, f.hr1, a.ID, f.iv1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status, "status unchanged")
	assert.Equal(t, f.iv1.ID, *got.TechInterviewerID)

	got, err = f.pipeline.AssignTechInterviewer(ctx, f.hr1, a.ID, f.iv2.ID)
	require.NoError(t, err, "hr may replace the interviewer")
	assert.Equal(t, f.iv2.ID, *got.TechInterviewerID)
	assert.Equal(t, domain.StatusAccepted, got.Status)

	reopened, err := f.pipeline.MoveToTechPool(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	assert.Nil(t, reopened.TechInterviewerID)
}

func TestStageChecks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	iv, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{Type: domain.InterviewHRScreening, Slots: []domain.SlotWindow{slotAt(10)}})
	require.NoError(t, err)

	_, err = f.pipeline.MoveToTechPool(ctx, f.hr1, a.ID)
	require.NoError(t, err)
	_, err = f.scheduler.BookSlot(ctx, f.candidate, a.ID, iv.ID, iv.Slots[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "screening slot booked during the technical stage")

	_, err = f.pipeline.CompleteScreening(ctx, f.hr1, a.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.pipeline.ClaimForReview(ctx, f.hr2, a.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDetailAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.toTechPending(t)
	_, err := f.pipeline.ClaimFromPool(ctx, f.iv1, a.ID)
	require.NoError(t, err)

	_, err = f.queries.Detail(ctx, f.iv1, a.ID)
	assert.NoError(t, err)
	_, err = f.queries.Detail(ctx, f.iv2, a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.queries.Detail(ctx, f.other, a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	own, err := f.queries.Detail(ctx, f.candidate, a.ID)
	require.NoError(t, err)
	assert.Empty(t, own.Feedbacks)
	_, err = f.queries.Detail(ctx, f.hr2, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHRApplicationsByGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.submit(t)
	second := f.submit(t)
	_, err := f.pipeline.ClaimForReview(ctx, f.hr1, first.ID)
	require.NoError(t, err)
	_, err = f.pipeline.Reject(ctx, f.hr1, second.ID, "no")
	require.NoError(t, err)

	pending, err := f.queries.HRApplications(ctx, f.hr1, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	rejected, err := f.queries.HRApplications(ctx, f.hr1, "rejected")
	require.NoError(t, err)
	require.Len(t, rejected, 1)

	all, err := f.queries.HRApplications(ctx, f.hr1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.queries.HRApplications(ctx, f.hr1, "bogus")
	assert.ErrorIs(t, err, domain.ErrValidation)

	mine, err := f.queries.CandidateApplications(ctx, f.candidate)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
}

func TestCandidateInterviewsCarrySlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.submit(t)
	_, err := f.scheduler.ProposeSlots(ctx, f.hr1, a.ID, ProposeInput{Type: domain.InterviewHRScreening, Slots: []domain.SlotWindow{slotAt(10), slotAt(11)}})
	require.NoError(t, err)

	ivs, err := f.queries.CandidateInterviews(ctx, f.candidate)
	require.NoError(t, err)
	require.Len(t, ivs, 1)
	assert.Len(t, ivs[0].Slots, 2)

	none, err := f.queries.CandidateInterviews(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, none)
}
