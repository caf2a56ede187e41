package appointment

import (
	"context"
	"time"

	"github.com/carelink/clinic-scheduler/internal/models"
)

type Repository interface {
	// -------- Facility --------
	GetFacilityByID(
		ctx context.Context,
		id uint,
	) (*models.Facility, error)

	// -------- Staff --------
	GetDoctor(
		ctx context.Context,
		facilityID uint,
		doctorID uint,
	) (*models.User, error)

	// -------- Patient --------
	GetPatient(
		ctx context.Context,
		facilityID uint,
		patientID uint,
	) (*models.Patient, error)

	CreatePatient(
		ctx context.Context,
		p *models.Patient,
	) error

	SearchPatients(
		ctx context.Context,
		facilityID uint,
		term string,
	) ([]models.Patient, error)

	// -------- Appointment (create / move) --------
	//
	// Both writes carry the slot-conflict check: the doctor must not
	// already hold a non-cancelled appointment at the same date+time.
	// Check and write happen atomically; a lost race surfaces as a
	// time_conflict business error, never as a double booking.
	CreateAppointmentIfSlotFree(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointmentIfSlotFree(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointmentForFacility(
		ctx context.Context,
		appointmentID uint,
		facilityID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Feeds --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		facilityID uint,
		doctorID uint, // 0 = every doctor in the facility
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForFacility(
		ctx context.Context,
		facilityID uint,
	) ([]models.Appointment, error)

	ListAppointmentsForPatients(
		ctx context.Context,
		patientIDs []uint,
	) ([]models.Appointment, error)

	BookedTimesForDay(
		ctx context.Context,
		doctorID uint,
		date time.Time,
	) ([]string, error)

	// -------- Child access grants --------
	ListChildrenForParent(
		ctx context.Context,
		parentUserID uint,
	) ([]models.ChildAccessGrant, error)
}
