package appointment

import (
	"context"

	"github.com/carelink/clinic-scheduler/internal/audit"
	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/events"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
	"github.com/carelink/clinic-scheduler/internal/timezone"
)

// TransitionAppointment drives every state change (confirm, check_in,
// complete, cancel) through the domain transition table. Only check_in
// and complete carry a note; it is ignored for the others.
type TransitionAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   *events.Bus
}

func NewTransitionAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus *events.Bus,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Audit trail action per state-machine action.
var auditActions = map[domain.Action]string{
	domain.ActionConfirm:  "appointment_confirmed",
	domain.ActionCheckIn:  "appointment_checked_in",
	domain.ActionComplete: "appointment_completed",
	domain.ActionCancel:   "appointment_cancelled",
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	facilityID uint,
	actorID uint,
	appointmentID uint,
	action domain.Action,
	note string,
) (*models.Appointment, error) {

	facility, err := uc.repo.GetFacilityByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForFacility(ctx, appointmentID, facilityID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	now := timezone.NowIn(facility.Timezone)
	if err := domain.Apply(ap, action, now, note); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Entry{
		FacilityID: facilityID,
		UserID:     &actorID,
		Action:     auditActions[action],
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.bus.Publish(events.TopicAppointmentUpdated, *ap)

	return ap, nil
}
