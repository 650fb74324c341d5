package certificate

import (
	"certhub/models"
	programModels "certhub/models/program"
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ProgramRoster is the read-only view of programs owned by program management.
// Program returns an error of kind NotFound for unknown ids.
type ProgramRoster interface {
	Program(ctx context.Context, programID string) (programModels.Program, error)
	IsEnrolled(ctx context.Context, programID, participantID string) (bool, error)
}

// ParticipantRoster is the read-only view of user identities.
type ParticipantRoster interface {
	Participant(ctx context.Context, participantID string) (models.User, error)
}

// GormRoster serves both rosters from the shared database.
type GormRoster struct {
	db *gorm.DB
}

func NewGormRoster(db *gorm.DB) *GormRoster {
	return &GormRoster{db: db}
}

func (r *GormRoster) Program(ctx context.Context, programID string) (programModels.Program, error) {
	var p programModels.Program
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", programID, false).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, notFound("program %s not found", programID)
	}
	if err != nil {
		return p, upstream(err, "load program %s", programID)
	}
	return p, nil
}

func (r *GormRoster) IsEnrolled(ctx context.Context, programID, participantID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&programModels.ProgramParticipant{}).
		Where("program_id = ? AND user_id = ?", programID, participantID).
		Count(&count).Error
	if err != nil {
		return false, upstream(err, "check enrollment of %s in %s", participantID, programID)
	}
	return count > 0, nil
}

func (r *GormRoster) Participant(ctx context.Context, participantID string) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", participantID, false).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return u, notFound("participant %s not found", participantID)
	}
	if err != nil {
		return u, upstream(err, "load participant %s", participantID)
	}
	return u, nil
}
