package models

import "time"

// Roles accepted in the "role" column / JWT claim.
const (
	RoleDoctor        = "doctor"
	RoleNurse         = "nurse"
	RoleFacilityAdmin = "facility_admin"
	RoleParent        = "parent"
)

type User struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	FacilityID uint     `json:"facility_id"`
	Facility   Facility `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"facility"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'doctor'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsStaffRole(role string) bool {
	switch role {
	case RoleDoctor, RoleNurse, RoleFacilityAdmin:
		return true
	}
	return false
}
