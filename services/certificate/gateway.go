package certificate

import (
	certModels "certhub/models/certificate"
	"context"
	"time"
)

// Summary is what the organizer gets back for an accepted request.
type Summary struct {
	ID              string    `json:"id"`
	ParticipantID   string    `json:"participantId"`
	ProgramID       string    `json:"programId"`
	ProgramVariant  string    `json:"programVariant"`
	CertificateType string    `json:"certificateType"`
	Status          string    `json:"status"`
	RequestedAt     time.Time `json:"requestedAt"`
}

func SummaryOf(r certModels.IssuanceRequest) Summary {
	return Summary{
		ID:              r.ID,
		ParticipantID:   r.ParticipantID,
		ProgramID:       r.ProgramID,
		ProgramVariant:  r.ProgramVariant,
		CertificateType: r.CertificateType,
		Status:          r.Status,
		RequestedAt:     r.RequestedAt,
	}
}

// Gateway is the organizer-facing entry point for certificate requests.
type Gateway struct {
	programs ProgramRoster
	resolver *Resolver
	ledger   *Ledger
}

func NewGateway(programs ProgramRoster, resolver *Resolver, ledger *Ledger) *Gateway {
	return &Gateway{programs: programs, resolver: resolver, ledger: ledger}
}

// RequestCertificate runs authorization, eligibility and submission in that
// order and stops at the first failure. Only Submit is atomic; the ledger
// re-resolves eligibility itself.
func (g *Gateway) RequestCertificate(ctx context.Context, callerID, participantID, programID, certificateType string) (Summary, error) {
	program, err := g.programs.Program(ctx, programID)
	if err != nil {
		return Summary{}, err
	}
	if callerID == "" || program.OrganizerID != callerID {
		return Summary{}, newError(KindUnauthorized, "", "caller %q does not organize program %s", callerID, programID)
	}

	t := CertificateType(certificateType)
	if !ValidFor(program.Variant, t) {
		return Summary{}, newError(KindInvalidType, ReasonUnknownType,
			"certificate type %q is not defined for %s programs", certificateType, program.Variant)
	}

	rec, err := g.resolver.resolveFor(ctx, program, participantID)
	if err != nil {
		return Summary{}, err
	}
	if !rec.Allows(t) {
		return Summary{}, newError(KindInvalidType, ReasonNotEligible,
			"participant %s is not eligible for a %s certificate in %s", participantID, t, programID)
	}

	row, err := g.ledger.Submit(ctx, SubmitRequest{
		ParticipantID: participantID,
		ProgramID:     programID,
		Type:          t,
		RequestedBy:   callerID,
	})
	if err != nil {
		return Summary{}, err
	}
	return SummaryOf(row), nil
}

// Eligibility resolves a pair on behalf of the program's organizer.
func (g *Gateway) Eligibility(ctx context.Context, callerID, participantID, programID string) (EligibilityRecord, error) {
	program, err := g.programs.Program(ctx, programID)
	if err != nil {
		return EligibilityRecord{}, err
	}
	if callerID == "" || program.OrganizerID != callerID {
		return EligibilityRecord{}, newError(KindUnauthorized, "", "caller %q does not organize program %s", callerID, programID)
	}
	return g.resolver.resolveFor(ctx, program, participantID)
}
