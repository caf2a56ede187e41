package models

import "time"

// Appointment kinds drive the calendar day indicator (emergency wins
// over followup, followup over routine).
const (
	KindRoutine   = "routine"
	KindFollowUp  = "followup"
	KindEmergency = "emergency"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FacilityID uint     `json:"facility_id"`
	Facility   Facility `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"facility"`

	DoctorID uint `json:"doctor_id"`
	Doctor   User `gorm:"foreignKey:DoctorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"doctor"`

	PatientID uint    `json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"patient"`

	// Date carries the calendar day only; the clock part is always
	// midnight in the facility timezone.
	Date time.Time `gorm:"index" json:"date"`

	// Time is "HH:MM" in 24h facility-local time. It may be empty:
	// appointments with no time sort first and count as always-upcoming.
	Time string `gorm:"size:5" json:"time"`

	Reason string `gorm:"size:100;not null" json:"reason"`
	Notes  string `gorm:"size:500" json:"notes"`
	Kind   string `gorm:"size:20;default:'routine'" json:"kind"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CheckedInAt *time.Time `json:"checked_in_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
