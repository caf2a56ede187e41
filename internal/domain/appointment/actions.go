package appointment

import (
	"time"

	"github.com/carelink/clinic-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================
//
// Each action validates the transition first; on failure the
// appointment is left exactly as it was.

func Confirm(ap *models.Appointment, now time.Time) error {
	next, err := Transition(Status(ap.Status), ActionConfirm)
	if err != nil {
		return err
	}

	ap.Status = string(next)
	ap.ConfirmedAt = &now
	return nil
}

// CheckIn marks the patient as arrived. An optional note is appended to
// the appointment notes.
func CheckIn(ap *models.Appointment, now time.Time, note string) error {
	next, err := Transition(Status(ap.Status), ActionCheckIn)
	if err != nil {
		return err
	}

	ap.Status = string(next)
	ap.CheckedInAt = &now
	appendNote(ap, note)
	return nil
}

func Complete(ap *models.Appointment, now time.Time, note string) error {
	next, err := Transition(Status(ap.Status), ActionComplete)
	if err != nil {
		return err
	}

	ap.Status = string(next)
	ap.CompletedAt = &now
	appendNote(ap, note)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	next, err := Transition(Status(ap.Status), ActionCancel)
	if err != nil {
		return err
	}

	ap.Status = string(next)
	ap.CancelledAt = &now
	return nil
}

// Apply dispatches a parsed action. Only check_in and complete carry a
// note payload; it is ignored for the others.
func Apply(ap *models.Appointment, action Action, now time.Time, note string) error {
	switch action {
	case ActionConfirm:
		return Confirm(ap, now)
	case ActionCheckIn:
		return CheckIn(ap, now, note)
	case ActionComplete:
		return Complete(ap, now, note)
	case ActionCancel:
		return Cancel(ap, now)
	}
	return InvalidTransitionError{From: Normalize(Status(ap.Status)), Action: action}
}

// Reschedule edits date/time/reason outside the state machine. The
// patient is immutable and terminal appointments are frozen.
func Reschedule(ap *models.Appointment, date time.Time, hhmm string, reason string) error {
	if IsTerminal(Normalize(Status(ap.Status))) {
		return InvalidTransitionError{From: Status(ap.Status), Action: "reschedule"}
	}

	ap.Date = date
	ap.Time = hhmm
	if reason != "" {
		ap.Reason = reason
	}
	return nil
}

func appendNote(ap *models.Appointment, note string) {
	if note == "" {
		return
	}
	if ap.Notes == "" {
		ap.Notes = note
		return
	}
	ap.Notes = ap.Notes + "\n" + note
}
