package certificate

import (
	programModels "certhub/models/program"
	"context"
	"time"
)

// Resolver decides whether a participant may receive a certificate for a
// program and which types are on offer. It has no side effects.
type Resolver struct {
	programs     ProgramRoster
	participants ParticipantRoster
	grace        time.Duration
	now          func() time.Time
}

// NewResolver builds a Resolver. A positive grace makes participants of a
// program that ends later than now+grace ineligible until then; zero turns the
// end-date check off.
func NewResolver(programs ProgramRoster, participants ParticipantRoster, grace time.Duration) *Resolver {
	return &Resolver{
		programs:     programs,
		participants: participants,
		grace:        grace,
		now:          time.Now,
	}
}

// Resolve fails with NotFound when the program or participant is unknown.
func (r *Resolver) Resolve(ctx context.Context, participantID, programID string) (EligibilityRecord, error) {
	program, err := r.programs.Program(ctx, programID)
	if err != nil {
		return EligibilityRecord{}, err
	}
	return r.resolveFor(ctx, program, participantID)
}

func (r *Resolver) resolveFor(ctx context.Context, program programModels.Program, participantID string) (EligibilityRecord, error) {
	rec := EligibilityRecord{
		ParticipantID: participantID,
		ProgramID:     program.ID,
		Variant:       program.Variant,
		Types:         []CertificateType{},
	}

	if _, err := r.participants.Participant(ctx, participantID); err != nil {
		return EligibilityRecord{}, err
	}

	enrolled, err := r.programs.IsEnrolled(ctx, program.ID, participantID)
	if err != nil {
		return EligibilityRecord{}, err
	}
	rec.Enrolled = enrolled

	if enrolled && r.timeWindowOpen(program) {
		rec.Eligible = true
		rec.Types = TypesFor(program.Variant)
	}
	return rec, nil
}

// timeWindowOpen applies the date rules. Hackathon status is not consulted;
// internships must have started.
func (r *Resolver) timeWindowOpen(program programModels.Program) bool {
	now := r.now()
	if r.grace > 0 && program.EndDate != nil && program.EndDate.After(now.Add(r.grace)) {
		return false
	}
	if program.Variant == programModels.VariantInternship && program.StartDate.After(now) {
		return false
	}
	return true
}
