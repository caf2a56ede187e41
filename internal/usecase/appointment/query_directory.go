package appointment

import (
	"context"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/dto"
	"github.com/carelink/clinic-scheduler/internal/models"
	"github.com/carelink/clinic-scheduler/internal/timezone"
)

// DirectoryQuery describes one role-scoped read over the appointment
// set. Filters combine with AND; zero values mean "no filter".
type DirectoryQuery struct {
	FacilityID uint

	// PatientIDs restricts the feed to a pre-authorized patient set
	// (the parent role); nil means facility-wide staff access.
	PatientIDs []uint

	DoctorID uint
	Status   string
	Search   string

	TodayOnly    bool
	UpcomingOnly bool
}

type QueryDirectory struct {
	repo domain.Repository
}

func NewQueryDirectory(repo domain.Repository) *QueryDirectory {
	return &QueryDirectory{repo: repo}
}

func (uc *QueryDirectory) Execute(
	ctx context.Context,
	q DirectoryQuery,
) ([]dto.AppointmentListDTO, error) {

	facility, err := uc.repo.GetFacilityByID(ctx, q.FacilityID)
	if err != nil {
		return nil, err
	}
	now := timezone.NowIn(facility.Timezone)

	var appointments []models.Appointment
	if q.PatientIDs != nil {
		appointments, err = uc.repo.ListAppointmentsForPatients(ctx, q.PatientIDs)
	} else {
		appointments, err = uc.repo.ListAppointmentsForFacility(ctx, q.FacilityID)
	}
	if err != nil {
		return nil, err
	}

	if q.DoctorID != 0 {
		appointments = domain.FilterByDoctor(appointments, q.DoctorID)
	}
	if q.Status != "" {
		appointments = domain.FilterByStatus(appointments, domain.Status(q.Status))
	}
	if q.Search != "" {
		appointments = domain.SearchText(appointments, q.Search)
	}
	if q.TodayOnly {
		appointments = domain.TodaysSchedule(appointments, now)
	}
	if q.UpcomingOnly {
		appointments = domain.Upcoming(appointments, now)
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.FromAppointment(ap, now))
	}

	return out, nil
}
