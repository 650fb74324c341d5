package program

import (
	"time"
)

// Variant values
const (
	VariantHackathon  = "hackathon"
	VariantInternship = "internship"
)

// Status values, maintained by the program status sweep
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Program is a hackathon or internship run by a single organizer.
type Program struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Variant     string     `gorm:"type:varchar(16);not null;index" json:"variant"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	OrganizerID string     `gorm:"size:64;not null;index" json:"organizerId"`
	StartDate   time.Time  `gorm:"not null" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `gorm:"type:varchar(16);default:'upcoming'" json:"status"`
	IsDeleted   bool       `gorm:"default:false" json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Participants []ProgramParticipant `gorm:"foreignKey:ProgramID" json:"participants,omitempty"`
}

func (Program) TableName() string {
	return "programs"
}

// StatusAt derives the lifecycle status of the program at the given instant.
func (p Program) StatusAt(now time.Time) string {
	if now.Before(p.StartDate) {
		return StatusUpcoming
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return StatusCompleted
	}
	return StatusActive
}

// ProgramParticipant is the enrollment of a user in a program.
type ProgramParticipant struct {
	ProgramID string    `gorm:"primaryKey;size:64" json:"programId"`
	UserID    string    `gorm:"primaryKey;size:64;index" json:"userId"`
	JoinedAt  time.Time `json:"joinedAt"`
}

func (ProgramParticipant) TableName() string {
	return "program_participants"
}
