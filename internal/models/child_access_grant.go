package models

import "time"

// ChildAccessGrant links a parent/guardian account to a patient record.
// Directory queries for the parent role are scoped to granted patient ids.
type ChildAccessGrant struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ParentUserID uint `gorm:"index" json:"parent_user_id"`
	Parent       User `gorm:"foreignKey:ParentUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	PatientID uint    `gorm:"index" json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"patient"`

	Relationship string    `gorm:"size:30" json:"relationship"`
	GrantedAt    time.Time `json:"granted_at"`
}
