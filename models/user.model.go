package models

import (
	"time"
)

// Role values
const (
	RoleUser                = "USER"
	RoleHackathonOrganizer  = "HACKATHON_ORGANIZER"
	RoleInternshipOrganizer = "INTERNSHIP_ORGANIZER"
	RoleAdmin               = "ADMIN"
)

// User is any account known to the platform: participants, organizers and admins.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"default:''" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role      string    `gorm:"type:varchar(32);default:'USER'" json:"role"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
