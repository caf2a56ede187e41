package appointment

import (
	"context"
	"time"

	"github.com/carelink/clinic-scheduler/internal/audit"
	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/events"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
	"github.com/carelink/clinic-scheduler/internal/timezone"
)

type RescheduleAppointmentInput struct {
	FacilityID    uint
	ActorID       uint
	AppointmentID uint

	Date   string
	Time   string
	Reason string
}

// RescheduleAppointment edits date/time/reason outside the state
// machine. The patient never changes and terminal appointments are
// rejected.
type RescheduleAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   *events.Bus
}

func NewRescheduleAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus *events.Bus,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, map[string]string, error) {

	facility, err := uc.repo.GetFacilityByID(ctx, in.FacilityID)
	if err != nil {
		return nil, nil, err
	}

	loc := timezone.Location(facility.Timezone)
	now := timezone.NowIn(facility.Timezone)

	fields := make(map[string]string)

	date, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		fields["appointment_date"] = "Appointment date must be YYYY-MM-DD."
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if date.Before(today) {
			fields["appointment_date"] = "Appointment date cannot be in the past."
		}
	}

	if err := domain.ValidateTime(in.Time); err != nil {
		if httperr.IsBusiness(err, "outside_business_hours") {
			fields["appointment_time"] = "Appointment time is outside business hours."
		} else {
			fields["appointment_time"] = "Appointment time must be HH:MM."
		}
	}

	if len(fields) > 0 {
		return nil, fields, nil
	}

	ap, err := uc.repo.GetAppointmentForFacility(ctx, in.AppointmentID, in.FacilityID)
	if err != nil {
		return nil, nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.Reschedule(ap, date, domain.NormalizeTime(in.Time), in.Reason); err != nil {
		return nil, nil, err
	}

	if err := uc.repo.UpdateAppointmentIfSlotFree(ctx, ap); err != nil {
		return nil, nil, err
	}

	uc.audit.Dispatch(audit.Entry{
		FacilityID: in.FacilityID,
		UserID:     &in.ActorID,
		Action:     "appointment_rescheduled",
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.bus.Publish(events.TopicAppointmentUpdated, *ap)

	return ap, nil, nil
}
