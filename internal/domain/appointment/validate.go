package appointment

import (
	"strings"
	"time"

	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
)

// ===============================
// Scheduling Request Validator
// ===============================

type ScheduleRequest struct {
	// Exactly one of PatientID (resolved via typeahead search) or
	// PatientName (deferred patient creation) must be supplied.
	PatientID   uint
	PatientName string

	Date   string // "2006-01-02"
	Time   string // "HH:MM"
	Reason string
	Kind   string
	Notes  string
}

// Submission is the normalized, accepted form handed to persistence.
type Submission struct {
	PatientID      uint
	NewPatientName string

	Date   time.Time
	Time   string
	Reason string
	Kind   string
	Notes  string
}

const minReasonLen = 3

// ValidateScheduleRequest checks every field and returns either a
// normalized submission or a field→message map covering all failures
// at once, so a form can highlight everything in a single pass. It
// never partially accepts.
func ValidateScheduleRequest(
	req ScheduleRequest,
	now time.Time,
	loc *time.Location,
) (*Submission, map[string]string) {

	if loc == nil {
		loc = time.UTC
	}

	fields := make(map[string]string)

	name := strings.TrimSpace(req.PatientName)
	switch {
	case req.PatientID == 0 && name == "":
		fields["patient"] = "Select a patient or enter a name for a new patient."
	case req.PatientID != 0 && name != "":
		fields["patient"] = "Provide either an existing patient or a new patient name, not both."
	}

	var date time.Time
	if strings.TrimSpace(req.Date) == "" {
		fields["appointment_date"] = "Appointment date is required."
	} else {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, loc)
		if err != nil {
			fields["appointment_date"] = "Appointment date must be YYYY-MM-DD."
		} else {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			if parsed.Before(today) {
				fields["appointment_date"] = "Appointment date cannot be in the past."
			} else {
				date = parsed
			}
		}
	}

	if strings.TrimSpace(req.Time) == "" {
		fields["appointment_time"] = "Appointment time is required."
	} else if err := ValidateTime(req.Time); err != nil {
		if httperr.IsBusiness(err, "outside_business_hours") {
			fields["appointment_time"] = "Appointment time is outside business hours."
		} else {
			fields["appointment_time"] = "Appointment time must be HH:MM."
		}
	}

	reason := strings.TrimSpace(req.Reason)
	if len(reason) < minReasonLen {
		fields["reason"] = "Reason must be at least 3 characters."
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindRoutine
	}
	switch kind {
	case models.KindRoutine, models.KindFollowUp, models.KindEmergency:
	default:
		fields["kind"] = "Unknown appointment kind."
	}

	if len(fields) > 0 {
		return nil, fields
	}

	return &Submission{
		PatientID:      req.PatientID,
		NewPatientName: name,
		Date:           date,
		Time:           NormalizeTime(req.Time),
		Reason:         reason,
		Kind:           kind,
		Notes:          strings.TrimSpace(req.Notes),
	}, nil
}
