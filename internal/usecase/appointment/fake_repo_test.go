package appointment

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
)

// fakeRepo is the in-memory stand-in for the gorm adapter used across
// the use case tests.
type fakeRepo struct {
	facility     models.Facility
	doctors      map[uint]models.User
	patients     map[uint]models.Patient
	appointments map[uint]*models.Appointment
	grants       []models.ChildAccessGrant
	nextID       uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		facility: models.Facility{ID: 1, Name: "Riverside Pediatrics", Slug: "riverside", Timezone: "UTC"},
		doctors: map[uint]models.User{
			10: {ID: 10, FacilityID: 1, Name: "Dr. Okafor", Role: models.RoleDoctor},
		},
		patients: map[uint]models.Patient{
			100: {ID: 100, FacilityID: 1, FullName: "Maya Thompson"},
		},
		appointments: make(map[uint]*models.Appointment),
		nextID:       1000,
	}
}

func (f *fakeRepo) GetFacilityByID(_ context.Context, id uint) (*models.Facility, error) {
	if id != f.facility.ID {
		return nil, gorm.ErrRecordNotFound
	}
	facility := f.facility
	return &facility, nil
}

func (f *fakeRepo) GetDoctor(_ context.Context, facilityID, doctorID uint) (*models.User, error) {
	d, ok := f.doctors[doctorID]
	if !ok || d.FacilityID != facilityID {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (f *fakeRepo) GetPatient(_ context.Context, facilityID, patientID uint) (*models.Patient, error) {
	p, ok := f.patients[patientID]
	if !ok || p.FacilityID != facilityID {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeRepo) CreatePatient(_ context.Context, p *models.Patient) error {
	f.nextID++
	p.ID = f.nextID
	f.patients[p.ID] = *p
	return nil
}

func (f *fakeRepo) SearchPatients(_ context.Context, facilityID uint, term string) ([]models.Patient, error) {
	out := make([]models.Patient, 0)
	for _, p := range f.patients {
		if p.FacilityID == facilityID &&
			strings.Contains(strings.ToLower(p.FullName), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateAppointmentIfSlotFree(_ context.Context, ap *models.Appointment) error {
	if err := f.assertSlotFree(ap.DoctorID, ap.Date, ap.Time, 0); err != nil {
		return err
	}
	f.nextID++
	ap.ID = f.nextID
	ap.CreatedAt = time.Now()
	stored := *ap
	f.appointments[ap.ID] = &stored
	return nil
}

func (f *fakeRepo) UpdateAppointmentIfSlotFree(_ context.Context, ap *models.Appointment) error {
	if err := f.assertSlotFree(ap.DoctorID, ap.Date, ap.Time, ap.ID); err != nil {
		return err
	}
	stored := *ap
	f.appointments[ap.ID] = &stored
	return nil
}

func (f *fakeRepo) assertSlotFree(
	doctorID uint,
	date time.Time,
	hhmm string,
	excludeAppointmentID uint,
) error {
	for _, ap := range f.appointments {
		if ap.ID == excludeAppointmentID || ap.DoctorID != doctorID {
			continue
		}
		if ap.Status == string(domain.StatusCancelled) {
			continue
		}
		if domain.SameDay(ap.Date, date) && ap.Time == hhmm {
			return httperr.ErrBusiness("time_conflict")
		}
	}
	return nil
}

func (f *fakeRepo) GetAppointmentForFacility(_ context.Context, appointmentID, facilityID uint) (*models.Appointment, error) {
	ap, ok := f.appointments[appointmentID]
	if !ok || ap.FacilityID != facilityID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	stored := *ap
	f.appointments[ap.ID] = &stored
	return nil
}

func (f *fakeRepo) ListAppointmentsForPeriod(
	_ context.Context,
	facilityID uint,
	doctorID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0)
	for _, ap := range f.appointments {
		if ap.FacilityID != facilityID {
			continue
		}
		if doctorID != 0 && ap.DoctorID != doctorID {
			continue
		}
		if ap.Date.Before(start) || !ap.Date.Before(end) {
			continue
		}
		out = append(out, *ap)
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsForFacility(_ context.Context, facilityID uint) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0)
	for _, ap := range f.appointments {
		if ap.FacilityID == facilityID {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsForPatients(_ context.Context, patientIDs []uint) ([]models.Appointment, error) {
	allowed := make(map[uint]struct{}, len(patientIDs))
	for _, id := range patientIDs {
		allowed[id] = struct{}{}
	}

	out := make([]models.Appointment, 0)
	for _, ap := range f.appointments {
		if _, ok := allowed[ap.PatientID]; ok {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) BookedTimesForDay(_ context.Context, doctorID uint, date time.Time) ([]string, error) {
	out := make([]string, 0)
	for _, ap := range f.appointments {
		if ap.DoctorID != doctorID || ap.Status == string(domain.StatusCancelled) {
			continue
		}
		if domain.SameDay(ap.Date, date) && ap.Time != "" {
			out = append(out, ap.Time)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListChildrenForParent(_ context.Context, parentUserID uint) ([]models.ChildAccessGrant, error) {
	out := make([]models.ChildAccessGrant, 0)
	for _, g := range f.grants {
		if g.ParentUserID == parentUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)
