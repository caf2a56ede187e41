package appointment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carelink/clinic-scheduler/internal/models"
)

// ===============================
// Appointment Directory
// ===============================
//
// Read-only, pure queries over an appointment snapshot. Every function
// tolerates empty or partially-populated input and returns an empty
// slice rather than failing, so dashboards survive upstream hiccups.

// sortKey: appointments without a time sort as "00:00", i.e. first.
// This is a named policy, not an accident; dashboards rely on it.
func sortKey(ap models.Appointment) string {
	if ap.Time == "" {
		return "00:00"
	}
	return ap.Time
}

// TodaysSchedule filters to appointments on now's calendar day, ordered
// ascending by time of day.
func TodaysSchedule(appointments []models.Appointment, now time.Time) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, ap := range appointments {
		if SameDay(ap.Date, now) {
			out = append(out, ap)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

// StartAt combines date and "HH:MM" into a single instant in the date's
// location. ok is false when the appointment has no usable time.
func StartAt(ap models.Appointment) (time.Time, bool) {
	if ap.Time == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", ap.Time)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		ap.Date.Year(), ap.Date.Month(), ap.Date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		ap.Date.Location(),
	), true
}

// Upcoming keeps appointments starting at or after now. An appointment
// with no time is always upcoming regardless of date (named policy).
func Upcoming(appointments []models.Appointment, now time.Time) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, ap := range appointments {
		start, ok := StartAt(ap)
		if !ok || !start.Before(now) {
			out = append(out, ap)
		}
	}
	return out
}

// ===============================
// Composable filters (AND)
// ===============================

func FilterByStatus(appointments []models.Appointment, status Status) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, ap := range appointments {
		if Normalize(Status(ap.Status)) == status {
			out = append(out, ap)
		}
	}
	return out
}

func FilterByDoctor(appointments []models.Appointment, doctorID uint) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, ap := range appointments {
		if ap.DoctorID == doctorID {
			out = append(out, ap)
		}
	}
	return out
}

// FilterByPatients scopes to a caller-supplied patient id set, e.g. the
// children granted to a parent account. The set is trusted as-is.
func FilterByPatients(appointments []models.Appointment, patientIDs []uint) []models.Appointment {
	allowed := make(map[uint]struct{}, len(patientIDs))
	for _, id := range patientIDs {
		allowed[id] = struct{}{}
	}

	out := make([]models.Appointment, 0)
	for _, ap := range appointments {
		if _, ok := allowed[ap.PatientID]; ok {
			out = append(out, ap)
		}
	}
	return out
}

// SearchText matches term case-insensitively against patient name,
// doctor name, reason and facility name. An empty term matches all.
func SearchText(appointments []models.Appointment, term string) []models.Appointment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return appointments
	}

	out := make([]models.Appointment, 0)
	for _, ap := range appointments {
		haystack := strings.ToLower(strings.Join([]string{
			ap.Patient.FullName,
			ap.Doctor.Name,
			ap.Reason,
			ap.Facility.Name,
		}, " "))
		if strings.Contains(haystack, term) {
			out = append(out, ap)
		}
	}
	return out
}

// ===============================
// Relative time
// ===============================

// RelativeTimeLabel is a pure function of (ts, now) so it stays
// testable without the wall clock.
func RelativeTimeLabel(ts, now time.Time) string {
	diff := now.Sub(ts)

	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return ts.Format("Jan 2, 2006")
}

// ===============================
// Lateness
// ===============================

type Lateness string

const (
	LatenessOverdue      Lateness = "overdue"
	LatenessInProgress   Lateness = "in_progress"
	LatenessStartingSoon Lateness = "starting_soon"
	LatenessUpcoming     Lateness = "upcoming"
	LatenessNone         Lateness = "none"
)

const (
	slotDuration = slotStepMinutes * time.Minute
	overdueGrace = 30 * time.Minute
	soonHorizon  = 15 * time.Minute
)

// LatenessOf classifies how now relates to the scheduled slot. It is a
// display-only cue and never drives a status transition. Once the
// patient has checked in (or the appointment is terminal) there is
// nothing to flag.
//
// Overdue means more than 30 minutes past the end of the 30-minute
// slot with no check-in; until then a started appointment reads as in
// progress.
func LatenessOf(ap models.Appointment, now time.Time) Lateness {
	switch Normalize(Status(ap.Status)) {
	case StatusCheckedIn, StatusCompleted, StatusCancelled:
		return LatenessNone
	}

	start, ok := StartAt(ap)
	if !ok {
		return LatenessNone
	}

	end := start.Add(slotDuration)

	switch {
	case now.After(end.Add(overdueGrace)):
		return LatenessOverdue
	case !now.Before(start):
		return LatenessInProgress
	case start.Sub(now) <= soonHorizon:
		return LatenessStartingSoon
	}
	return LatenessUpcoming
}
