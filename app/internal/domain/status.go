package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusScreeningPending   Status = "screening_pending"
	StatusScreeningScheduled Status = "screening_scheduled"
	StatusScreeningCompleted Status = "screening_completed"
	StatusAccepted           Status = "accepted"
	StatusTechPending        Status = "tech_pending"
	StatusTechScheduled      Status = "tech_scheduled"
	StatusTechCompleted      Status = "tech_completed"
	StatusHired              Status = "hired"
	StatusRejected           Status = "rejected"
	StatusDeclined           Status = "declined"
	StatusCancelled          Status = "cancelled"
)

// AllStatuses lists the canonical set in pipeline order, side exits last.
var AllStatuses = []Status{
	StatusScreeningPending,
	StatusScreeningScheduled,
	StatusScreeningCompleted,
	StatusAccepted,
	StatusTechPending,
	StatusTechScheduled,
	StatusTechCompleted,
	StatusHired,
	StatusRejected,
	StatusDeclined,
	StatusCancelled,
}

// legacyStatuses maps spellings found in historical rows onto canonical members.
// PENDING was the entry status before the screening stage existed.
var legacyStatuses = map[string]Status{
	"pending": StatusScreeningPending,
}

// ParseStatus accepts canonical names in any case plus legacy aliases.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, st := range AllStatuses {
		if string(st) == norm {
			return st, nil
		}
	}
	if st, ok := legacyStatuses[norm]; ok {
		return st, nil
	}
	return "", ValidationError(fmt.Sprintf("unknown status %q", s), map[string]string{"status": "unknown status"})
}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no operation may move the application any further.
func (s Status) Terminal() bool {
	switch s {
	case StatusHired, StatusRejected, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// Technical reports whether the status belongs to the technical stage, the only
// stage in which tech_interviewer_id is meaningful.
func (s Status) Technical() bool {
	switch s {
	case StatusTechPending, StatusTechScheduled, StatusTechCompleted:
		return true
	}
	return false
}

// StatusGroup names a filter tab shown to staff.
type StatusGroup string

const (
	GroupPending    StatusGroup = "pending"
	GroupProcessing StatusGroup = "processing"
	GroupInterviews StatusGroup = "interviews"
	GroupApproved   StatusGroup = "approved"
	GroupRejected   StatusGroup = "rejected"
	GroupArchive    StatusGroup = "archive"
)

var statusGroups = map[StatusGroup][]Status{
	GroupPending:    {StatusScreeningPending},
	GroupProcessing: {StatusAccepted},
	GroupInterviews: {
		StatusScreeningPending, StatusScreeningScheduled, StatusScreeningCompleted,
		StatusTechPending, StatusTechScheduled, StatusTechCompleted,
	},
	GroupApproved: {StatusHired},
	GroupRejected: {StatusRejected, StatusDeclined, StatusCancelled},
	GroupArchive:  {StatusHired, StatusRejected, StatusDeclined, StatusCancelled},
}

// Groups lists group names in tab order.
var Groups = []StatusGroup{GroupPending, GroupProcessing, GroupInterviews, GroupApproved, GroupRejected, GroupArchive}

// StatusesOf resolves a filter value: a group name, or a single status.
// "all" and "" select everything and return nil.
func StatusesOf(filter string) ([]Status, error) {
	f := strings.ToLower(strings.TrimSpace(filter))
	if f == "" || f == "all" {
		return nil, nil
	}
	if sts, ok := statusGroups[StatusGroup(f)]; ok {
		out := make([]Status, len(sts))
		copy(out, sts)
		return out, nil
	}
	st, err := ParseStatus(f)
	if err != nil {
		return nil, err
	}
	return []Status{st}, nil
}
