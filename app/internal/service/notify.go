package service

import (
	"context"
	"time"

	"recruit/tracker/app/internal/domain"
)

type EventKind string

const (
	EventSlotsProposed       EventKind = "slots_proposed"
	EventSlotBooked          EventKind = "slot_booked"
	EventInterviewConfirmed  EventKind = "interview_confirmed"
	EventDecision            EventKind = "decision"
	EventInboxClaimed        EventKind = "inbox_claimed"
	EventPoolClaimed         EventKind = "pool_claimed"
	EventInterviewerAssigned EventKind = "interviewer_assigned"
	EventFeedbackSubmitted   EventKind = "feedback_submitted"
)

// Event is one notification; To holds telegram chat ids.
type Event struct {
	Kind          EventKind
	To            []int64
	ApplicationID int64
	Position      string
	Status        domain.Status
	Reason        string
	Interview     *domain.Interview
	At            *time.Time
}

// Notifier delivers events best-effort. Implementations must not block the
// caller on network I/O.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}
