package certificate

import (
	"time"

	"gorm.io/datatypes"
)

// Status values of an issuance request
const (
	StatusPending  = "pending"
	StatusIssued   = "issued"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// IssuanceRequest is one attempt to produce a certificate. Rows are never
// deleted; a new attempt after a failure is a new row.
//
// ActiveSlot is true while the request is pending or issued and NULL once it
// failed or was rejected. It is part of the dedup unique index, so at most one
// live request exists per (participant, program, type) while terminal rows
// never collide.
type IssuanceRequest struct {
	ID              string            `gorm:"primaryKey;size:64" json:"id"`
	ParticipantID   string            `gorm:"size:64;not null;index;uniqueIndex:idx_issuance_dedup" json:"participantId"`
	ProgramID       string            `gorm:"size:64;not null;index;uniqueIndex:idx_issuance_dedup" json:"programId"`
	ProgramVariant  string            `gorm:"type:varchar(16);not null" json:"programVariant"`
	CertificateType string            `gorm:"size:32;not null;uniqueIndex:idx_issuance_dedup" json:"certificateType"`
	ActiveSlot      *bool             `gorm:"uniqueIndex:idx_issuance_dedup" json:"-"`
	Status          string            `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	RequestedBy     string            `gorm:"size:64" json:"requestedBy"`
	Reason          string            `json:"reason,omitempty"`
	ArtifactURL     string            `json:"artifactUrl,omitempty"`
	ArtifactMeta    datatypes.JSONMap `json:"artifactMeta,omitempty"`
	RequestedAt     time.Time         `gorm:"not null" json:"requestedAt"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func (IssuanceRequest) TableName() string {
	return "issuance_requests"
}

// IsTerminal reports whether no further transition is allowed.
func (r IssuanceRequest) IsTerminal() bool {
	return r.Status != StatusPending
}

// Certificate is the issued artifact for a request that reached issued.
type Certificate struct {
	ID                string    `gorm:"primaryKey;size:64" json:"id"`
	RequestID         string    `gorm:"size:64;not null;uniqueIndex" json:"requestId"`
	ParticipantID     string    `gorm:"size:64;not null;index" json:"participantId"`
	ProgramID         string    `gorm:"size:64;not null;index" json:"programId"`
	CertificateType   string    `gorm:"size:32;not null" json:"certificateType"`
	CertificateNumber string    `gorm:"size:96;not null;uniqueIndex" json:"certificateNumber"`
	URL               string    `json:"url"`
	IssuedAt          time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
