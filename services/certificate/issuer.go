package certificate

import (
	"certhub/models"
	certModels "certhub/models/certificate"
	programModels "certhub/models/program"
	"context"
	"log"
	"time"
)

// ArtifactRequest describes the certificate to render.
type ArtifactRequest struct {
	RequestID       string    `json:"requestId"`
	ParticipantID   string    `json:"participantId"`
	ParticipantName string    `json:"participantName"`
	ProgramID       string    `json:"programId"`
	ProgramTitle    string    `json:"programTitle"`
	ProgramVariant  string    `json:"programVariant"`
	CertificateType string    `json:"certificateType"`
	RequestedAt     time.Time `json:"requestedAt"`
}

// ArtifactGenerator renders, stores and returns the location of a certificate.
type ArtifactGenerator interface {
	Generate(ctx context.Context, req ArtifactRequest) (Artifact, error)
}

// Notifier tells a participant their certificate is available.
type Notifier interface {
	CertificateIssued(ctx context.Context, participant models.User, program programModels.Program, cert certModels.Certificate) error
}

// Issuer drives a pending request to issued or failed through the artifact
// generator.
type Issuer struct {
	ledger       *Ledger
	programs     ProgramRoster
	participants ParticipantRoster
	generator    ArtifactGenerator
	notifier     Notifier
}

// NewIssuer builds an Issuer; notifier may be nil.
func NewIssuer(ledger *Ledger, programs ProgramRoster, participants ParticipantRoster, generator ArtifactGenerator, notifier Notifier) *Issuer {
	return &Issuer{
		ledger:       ledger,
		programs:     programs,
		participants: participants,
		generator:    generator,
		notifier:     notifier,
	}
}

// Issue generates the artifact for a pending request. A generator failure
// marks the request failed and is returned as UpstreamFailure. Roster
// failures leave the request pending.
func (i *Issuer) Issue(ctx context.Context, requestID string) (certModels.Certificate, error) {
	req, err := i.ledger.Get(ctx, requestID)
	if err != nil {
		return certModels.Certificate{}, err
	}
	if req.IsTerminal() {
		return certModels.Certificate{}, newError(KindInvalidTransition, "", "request %s is %s and cannot be issued", requestID, req.Status)
	}

	program, err := i.programs.Program(ctx, req.ProgramID)
	if err != nil {
		return certModels.Certificate{}, err
	}
	participant, err := i.participants.Participant(ctx, req.ParticipantID)
	if err != nil {
		return certModels.Certificate{}, err
	}

	artifact, genErr := i.generator.Generate(ctx, ArtifactRequest{
		RequestID:       req.ID,
		ParticipantID:   participant.ID,
		ParticipantName: participant.Name,
		ProgramID:       program.ID,
		ProgramTitle:    program.Title,
		ProgramVariant:  program.Variant,
		CertificateType: req.CertificateType,
		RequestedAt:     req.RequestedAt,
	})
	if genErr != nil {
		log.Printf("[ISSUER] Artifact generation failed for %s: %v", requestID, genErr)
		if err := i.ledger.MarkFailed(ctx, requestID, genErr.Error()); err != nil {
			return certModels.Certificate{}, err
		}
		return certModels.Certificate{}, upstream(genErr, "generate artifact for %s", requestID)
	}

	cert, err := i.ledger.MarkIssued(ctx, requestID, artifact)
	if err != nil {
		return certModels.Certificate{}, err
	}

	if i.notifier != nil {
		if err := i.notifier.CertificateIssued(ctx, participant, program, cert); err != nil {
			log.Printf("[ISSUER] Failed to notify %s about %s: %v", participant.ID, cert.CertificateNumber, err)
		}
	}
	return cert, nil
}

// Accept issues a request on behalf of the participant it names.
func (i *Issuer) Accept(ctx context.Context, callerID, requestID string) (certModels.Certificate, error) {
	req, err := i.ledger.Get(ctx, requestID)
	if err != nil {
		return certModels.Certificate{}, err
	}
	if callerID == "" || req.ParticipantID != callerID {
		return certModels.Certificate{}, newError(KindUnauthorized, "", "request %s does not belong to %q", requestID, callerID)
	}
	return i.Issue(ctx, requestID)
}
