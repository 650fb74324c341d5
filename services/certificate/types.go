package certificate

import (
	programModels "certhub/models/program"
)

// CertificateType is a value from the closed set of the program's variant.
type CertificateType string

const (
	TypeParticipation CertificateType = "participation"
	TypeWinner1       CertificateType = "winner1"
	TypeWinner2       CertificateType = "winner2"
	TypeWinner3       CertificateType = "winner3"
	TypeCompletion    CertificateType = "completion"
)

var typesByVariant = map[string][]CertificateType{
	programModels.VariantHackathon:  {TypeParticipation, TypeWinner1, TypeWinner2, TypeWinner3},
	programModels.VariantInternship: {TypeParticipation, TypeCompletion},
}

// TypesFor returns the certificate types defined by a program variant.
// Unknown variants define none.
func TypesFor(variant string) []CertificateType {
	types := typesByVariant[variant]
	out := make([]CertificateType, len(types))
	copy(out, types)
	return out
}

// ValidFor reports whether t belongs to the variant's set.
func ValidFor(variant string, t CertificateType) bool {
	for _, v := range typesByVariant[variant] {
		if v == t {
			return true
		}
	}
	return false
}

// EligibilityRecord is computed per (participant, program) and never cached.
type EligibilityRecord struct {
	ParticipantID string            `json:"participantId"`
	ProgramID     string            `json:"programId"`
	Variant       string            `json:"programVariant"`
	Enrolled      bool              `json:"enrolled"`
	Eligible      bool              `json:"eligible"`
	Types         []CertificateType `json:"certificateTypes"`
}

// Allows reports whether t may be issued under this record.
func (r EligibilityRecord) Allows(t CertificateType) bool {
	if !r.Eligible {
		return false
	}
	for _, v := range r.Types {
		if v == t {
			return true
		}
	}
	return false
}

// DedupKey identifies the slot that at most one live request may occupy.
type DedupKey struct {
	ParticipantID string
	ProgramID     string
	Type          CertificateType
}

func (k DedupKey) String() string {
	return k.ParticipantID + "/" + k.ProgramID + "/" + string(k.Type)
}
