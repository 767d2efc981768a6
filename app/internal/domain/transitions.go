package domain

// Op names a state-machine operation on an application.
type Op string

const (
	OpSubmit                Op = "submit"
	OpClaimForReview        Op = "claim_for_review"
	OpAccept                Op = "accept"
	OpReject                Op = "reject"
	OpHire                  Op = "hire"
	OpDecline               Op = "decline"
	OpCancel                Op = "cancel"
	OpStartScreening        Op = "start_screening"
	OpCompleteScreening     Op = "complete_screening"
	OpProposeSlots          Op = "propose_slots"
	OpBookSlot              Op = "book_slot"
	OpFinalize              Op = "finalize"
	OpMoveToTechPool        Op = "move_to_tech_pool"
	OpAssignTechInterviewer Op = "assign_tech_interviewer"
	OpClaimFromPool         Op = "claim_from_pool"
	OpSubmitFeedback        Op = "submit_feedback"
)

// Targets maps status-changing operations to the status they produce.
// Operations missing here leave the status alone (claims, assignment) or
// depend on the interview type (propose, book, finalize).
var Targets = map[Op]Status{
	OpSubmit:            StatusScreeningPending,
	OpAccept:            StatusAccepted,
	OpReject:            StatusRejected,
	OpHire:              StatusHired,
	OpDecline:           StatusDeclined,
	OpCancel:            StatusCancelled,
	OpStartScreening:    StatusScreeningPending,
	OpCompleteScreening: StatusScreeningCompleted,
	OpMoveToTechPool:    StatusTechPending,
	OpSubmitFeedback:    StatusTechCompleted,
}

// restrictedFrom lists operations that need a specific source status on top
// of the application not being terminal.
var restrictedFrom = map[Op][]Status{
	OpClaimForReview:    {StatusScreeningPending},
	OpCompleteScreening: {StatusScreeningScheduled},
	OpClaimFromPool:     {StatusTechPending},
}

// CanApply evaluates whether op may run against an application in status from.
// Rules:
// - terminal applications accept no operation
// - restricted operations require one of their source statuses
func CanApply(op Op, from Status) error {
	if from.Terminal() {
		return Errorf(ErrInvalidTransition, "application is %s: %s not allowed", from, op)
	}
	allowed, ok := restrictedFrom[op]
	if !ok {
		return nil
	}
	for _, st := range allowed {
		if st == from {
			return nil
		}
	}
	return Errorf(ErrInvalidTransition, "%s requires status %v, application is %s", op, allowed, from)
}

// CanAdvanceInterview evaluates whether booking or finalizing an interview of
// type t may move an application in status from to the scheduled status.
// An interview only drives the stage it belongs to.
func CanAdvanceInterview(op Op, t InterviewType, from Status) error {
	if err := CanApply(op, from); err != nil {
		return err
	}
	if from == t.PendingStatus() || from == t.ScheduledStatus() {
		return nil
	}
	return Errorf(ErrInvalidTransition, "%s interview cannot %s while application is %s", t, op, from)
}

// CanClaim checks a claim against the current owner: unowned or owned by the
// caller already.
func CanClaim(role string, owner *int64, caller int64) error {
	if owner == nil || *owner == caller {
		return nil
	}
	return Errorf(ErrConflict, "application already claimed by another %s", role)
}

func (op Op) String() string { return string(op) }
