package models

import "time"

type Patient struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FacilityID uint `json:"facility_id"`

	// MRN is the facility-facing medical record number, a UUID string
	// assigned on creation and never reused.
	MRN string `gorm:"size:36;uniqueIndex;not null" json:"mrn"`

	FullName    string     `gorm:"size:100;not null" json:"full_name"`
	Sex         string     `gorm:"size:10" json:"sex"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
