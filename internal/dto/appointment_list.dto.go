package dto

import (
	"time"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/models"
)

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	Kind        string    `json:"kind"`
	Reason      string    `json:"reason"`
	PatientName string    `json:"patient_name"`
	DoctorName  string    `json:"doctor_name"`

	// Lateness is a display-only cue; it never changes status.
	Lateness string `json:"lateness"`
	Booked   string `json:"booked"` // relative label for created_at
}

func FromAppointment(ap models.Appointment, now time.Time) AppointmentListDTO {
	return AppointmentListDTO{
		ID:          ap.ID,
		Date:        ap.Date,
		Time:        ap.Time,
		Status:      string(domain.Normalize(domain.Status(ap.Status))),
		Kind:        ap.Kind,
		Reason:      ap.Reason,
		PatientName: ap.Patient.FullName,
		DoctorName:  ap.Doctor.Name,
		Lateness:    string(domain.LatenessOf(ap, now)),
		Booked:      domain.RelativeTimeLabel(ap.CreatedAt, now),
	}
}
