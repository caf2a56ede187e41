package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/carelink/clinic-scheduler/internal/audit"
	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/events"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
	"github.com/carelink/clinic-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type ScheduleAppointmentInput struct {
	FacilityID  uint
	RequestedBy uint
	DoctorID    uint

	// Either a resolved patient id or a raw name for deferred
	// patient creation; the validator enforces exactly one.
	PatientID   uint
	PatientName string

	Date   string
	Time   string
	Reason string
	Kind   string
	Notes  string
}

// ======================================================
// USE CASE
// ======================================================

type ScheduleAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   *events.Bus
}

func NewScheduleAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus *events.Bus,
) *ScheduleAppointment {
	return &ScheduleAppointment{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute gates the submission through the scheduling validator, then
// resolves the patient, asserts the slot is free and persists the
// appointment in its initial status. Field-level failures come back in
// the map, never as an error.
func (uc *ScheduleAppointment) Execute(
	ctx context.Context,
	in ScheduleAppointmentInput,
) (*models.Appointment, map[string]string, error) {

	facility, err := uc.repo.GetFacilityByID(ctx, in.FacilityID)
	if err != nil {
		return nil, nil, err
	}

	loc := timezone.Location(facility.Timezone)
	now := timezone.NowIn(facility.Timezone)

	submission, fields := domain.ValidateScheduleRequest(domain.ScheduleRequest{
		PatientID:   in.PatientID,
		PatientName: in.PatientName,
		Date:        in.Date,
		Time:        in.Time,
		Reason:      in.Reason,
		Kind:        in.Kind,
		Notes:       in.Notes,
	}, now, loc)
	if fields != nil {
		return nil, fields, nil
	}

	doctor, err := uc.repo.GetDoctor(ctx, in.FacilityID, in.DoctorID)
	if err != nil {
		return nil, nil, httperr.ErrBusiness("doctor_not_found")
	}

	patientID := submission.PatientID
	if patientID == 0 {
		patient := &models.Patient{
			FacilityID: in.FacilityID,
			MRN:        uuid.NewString(),
			FullName:   submission.NewPatientName,
		}
		if err := uc.repo.CreatePatient(ctx, patient); err != nil {
			return nil, nil, err
		}
		patientID = patient.ID
	} else {
		if _, err := uc.repo.GetPatient(ctx, in.FacilityID, patientID); err != nil {
			return nil, nil, httperr.ErrBusiness("patient_not_found")
		}
	}

	ap := &models.Appointment{
		FacilityID: in.FacilityID,
		DoctorID:   doctor.ID,
		PatientID:  patientID,
		Date:       submission.Date,
		Time:       submission.Time,
		Reason:     submission.Reason,
		Kind:       submission.Kind,
		Notes:      submission.Notes,
		Status:     string(domain.InitialStatus()),
	}

	if err := uc.repo.CreateAppointmentIfSlotFree(ctx, ap); err != nil {
		return nil, nil, err
	}

	uc.audit.Dispatch(audit.Entry{
		FacilityID: in.FacilityID,
		UserID:     &in.RequestedBy,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.bus.Publish(events.TopicAppointmentCreated, *ap)

	return ap, nil, nil
}
