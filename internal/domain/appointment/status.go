package appointment

import "fmt"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ===============================
// Actions
// ===============================

type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionCheckIn  Action = "check_in"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionConfirm, ActionCheckIn, ActionComplete, ActionCancel:
		return Action(s), true
	}
	return "", false
}

// ===============================
// Transition table
// ===============================

// transitions is the single source of truth for legal status changes.
// Anything not listed here fails with InvalidTransitionError and leaves
// the appointment untouched.
var transitions = map[Status]map[Action]Status{
	StatusScheduled: {
		ActionConfirm: StatusConfirmed,
		ActionCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		ActionCheckIn: StatusCheckedIn,
		ActionCancel:  StatusCancelled,
	},
	StatusCheckedIn: {
		ActionComplete: StatusCompleted,
	},
	// completed and cancelled are terminal: no outgoing transitions.
}

type InvalidTransitionError struct {
	From   Status
	Action Action
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an appointment in status %q", e.Action, e.From)
}

// Normalize maps an absent status (freshly created rows before the
// default lands) onto the initial state.
func Normalize(s Status) Status {
	if s == "" {
		return StatusScheduled
	}
	return s
}

func InitialStatus() Status {
	return StatusScheduled
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Transition returns the status reached by applying action to current,
// or InvalidTransitionError if the pair is not in the table.
func Transition(current Status, action Action) (Status, error) {
	from := Normalize(current)
	if next, ok := transitions[from][action]; ok {
		return next, nil
	}
	return from, InvalidTransitionError{From: from, Action: action}
}
