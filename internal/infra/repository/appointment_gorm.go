package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Facility
// --------------------------------------------------

func (r *AppointmentGormRepository) GetFacilityByID(
	ctx context.Context,
	id uint,
) (*models.Facility, error) {

	var facility models.Facility
	if err := r.db.WithContext(ctx).First(&facility, id).Error; err != nil {
		return nil, err
	}
	return &facility, nil
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *AppointmentGormRepository) GetDoctor(
	ctx context.Context,
	facilityID uint,
	doctorID uint,
) (*models.User, error) {

	var doctor models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND facility_id = ? AND role = ?", doctorID, facilityID, models.RoleDoctor).
		First(&doctor).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

// --------------------------------------------------
// Patient
// --------------------------------------------------

func (r *AppointmentGormRepository) GetPatient(
	ctx context.Context,
	facilityID uint,
	patientID uint,
) (*models.Patient, error) {

	var patient models.Patient
	if err := r.db.WithContext(ctx).
		Where("id = ? AND facility_id = ?", patientID, facilityID).
		First(&patient).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *AppointmentGormRepository) CreatePatient(
	ctx context.Context,
	p *models.Patient,
) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *AppointmentGormRepository) SearchPatients(
	ctx context.Context,
	facilityID uint,
	term string,
) ([]models.Patient, error) {

	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Patient{}, nil
	}

	var patients []models.Patient
	if err := r.db.WithContext(ctx).
		Where("facility_id = ? AND LOWER(full_name) LIKE ?", facilityID, "%"+strings.ToLower(term)+"%").
		Order("full_name ASC").
		Limit(20).
		Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// --------------------------------------------------
// Appointment (create / move)
// --------------------------------------------------

// CreateAppointmentIfSlotFree checks and inserts inside one
// transaction, so two racing bookings for the same slot cannot both
// land: the second sees the first's locked row and gets time_conflict.
func (r *AppointmentGormRepository) CreateAppointmentIfSlotFree(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConflictingSlots(tx, ap.DoctorID, ap.Date, ap.Time, 0); err != nil {
			return err
		}
		return tx.Create(ap).Error
	})
}

// UpdateAppointmentIfSlotFree is the reschedule write: same check,
// excluding the appointment's own row.
func (r *AppointmentGormRepository) UpdateAppointmentIfSlotFree(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockConflictingSlots(tx, ap.DoctorID, ap.Date, ap.Time, ap.ID); err != nil {
			return err
		}
		return tx.Save(ap).Error
	})
}

// lockConflictingSlots selects (FOR UPDATE) the doctor's non-cancelled
// appointments at the same date+time and fails when any exist. Plain
// row selection on purpose: Postgres rejects a locking clause on an
// aggregate, so the rows are fetched and counted here.
func lockConflictingSlots(
	tx *gorm.DB,
	doctorID uint,
	date time.Time,
	hhmm string,
	excludeAppointmentID uint,
) error {

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	q := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"doctor_id = ? AND status <> 'cancelled' AND date >= ? AND date < ? AND time = ?",
			doctorID, dayStart, dayEnd, hhmm,
		)

	if excludeAppointmentID != 0 {
		q = q.Where("id <> ?", excludeAppointmentID)
	}

	var conflicts []models.Appointment
	if err := q.Find(&conflicts).Error; err != nil {
		return err
	}

	if len(conflicts) > 0 {
		return httperr.ErrBusiness("time_conflict")
	}

	return nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointmentForFacility(
	ctx context.Context,
	appointmentID uint,
	facilityID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where("id = ? AND facility_id = ?", appointmentID, facilityID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Feeds
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	facilityID uint,
	doctorID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where(
			"facility_id = ? AND date >= ? AND date < ?",
			facilityID, start, end,
		)

	if doctorID != 0 {
		q = q.Where("doctor_id = ?", doctorID)
	}

	var apps []models.Appointment
	if err := q.Order("date ASC, time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForFacility(
	ctx context.Context,
	facilityID uint,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where("facility_id = ?", facilityID).
		Order("date ASC, time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPatients(
	ctx context.Context,
	patientIDs []uint,
) ([]models.Appointment, error) {

	if len(patientIDs) == 0 {
		return []models.Appointment{}, nil
	}

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Preload("Facility").
		Where("patient_id IN ?", patientIDs).
		Order("date ASC, time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) BookedTimesForDay(
	ctx context.Context,
	doctorID uint,
	date time.Time,
) ([]string, error) {

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var times []string
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"doctor_id = ? AND status <> 'cancelled' AND date >= ? AND date < ? AND time <> ''",
			doctorID, dayStart, dayEnd,
		).
		Pluck("time", &times).Error; err != nil {
		return nil, err
	}

	return times, nil
}

// --------------------------------------------------
// Child access grants
// --------------------------------------------------

func (r *AppointmentGormRepository) ListChildrenForParent(
	ctx context.Context,
	parentUserID uint,
) ([]models.ChildAccessGrant, error) {

	var grants []models.ChildAccessGrant
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("parent_user_id = ?", parentUserID).
		Order("granted_at ASC").
		Find(&grants).Error; err != nil {
		return nil, err
	}

	return grants, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
