package certificate

import (
	"certhub/models"
	certModels "certhub/models/certificate"
	programModels "certhub/models/program"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Directory answers the read-only listing queries behind the dashboards.
type Directory struct {
	db       *gorm.DB
	programs ProgramRoster
	resolver *Resolver
}

func NewDirectory(db *gorm.DB, programs ProgramRoster, resolver *Resolver) *Directory {
	return &Directory{db: db, programs: programs, resolver: resolver}
}

// ParticipantRequest is a request as shown to its participant.
type ParticipantRequest struct {
	RequestID       string    `json:"requestId"`
	ProgramID       string    `json:"programId"`
	ProgramTitle    string    `json:"programTitle"`
	ProgramVariant  string    `json:"programVariant"`
	CertificateType string    `json:"certificateType"`
	Status          string    `json:"status"`
	RequestedAt     time.Time `json:"requestedAt"`
}

// PendingForParticipant lists the caller's pending requests, oldest first.
func (d *Directory) PendingForParticipant(ctx context.Context, participantID string) ([]ParticipantRequest, error) {
	out := []ParticipantRequest{}
	err := d.db.WithContext(ctx).
		Table("issuance_requests AS r").
		Select("r.id AS request_id, r.program_id, p.title AS program_title, r.program_variant, r.certificate_type, r.status, r.requested_at").
		Joins("JOIN programs p ON p.id = r.program_id").
		Where("r.participant_id = ? AND r.status = ?", participantID, certModels.StatusPending).
		Order("r.requested_at asc").
		Scan(&out).Error
	if err != nil {
		return nil, upstream(err, "list pending requests for %s", participantID)
	}
	return out, nil
}

// IssuedCertificate is a certificate with its program title.
type IssuedCertificate struct {
	certModels.Certificate
	ProgramTitle   string `json:"programTitle"`
	ProgramVariant string `json:"programVariant"`
}

// CertificatesForParticipant lists issued certificates, newest first.
func (d *Directory) CertificatesForParticipant(ctx context.Context, participantID string) ([]IssuedCertificate, error) {
	var certs []certModels.Certificate
	if err := d.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("issued_at desc").
		Find(&certs).Error; err != nil {
		return nil, upstream(err, "list certificates for %s", participantID)
	}

	out := make([]IssuedCertificate, 0, len(certs))
	for _, c := range certs {
		item := IssuedCertificate{Certificate: c}
		p, err := d.programs.Program(ctx, c.ProgramID)
		switch {
		case err == nil:
			item.ProgramTitle = p.Title
			item.ProgramVariant = p.Variant
		case errors.Is(err, ErrNotFound):
			// program removed from the roster; the certificate still stands
		default:
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// RequestFilter narrows the organizer request listing.
type RequestFilter struct {
	ProgramID string
	Status    string
	Page      int
	Limit     int
}

// RequestsForOrganizer pages through requests of the organizer's programs.
func (d *Directory) RequestsForOrganizer(ctx context.Context, organizerID string, f RequestFilter) ([]certModels.IssuanceRequest, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	owned := d.db.WithContext(ctx).Model(&programModels.Program{}).Select("id").Where("organizer_id = ? AND is_deleted = ?", organizerID, false)
	q := d.db.WithContext(ctx).Model(&certModels.IssuanceRequest{}).Where("program_id IN (?)", owned)
	if f.ProgramID != "" {
		q = q.Where("program_id = ?", f.ProgramID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, upstream(err, "count requests for organizer %s", organizerID)
	}

	rows := []certModels.IssuanceRequest{}
	if err := q.Order("requested_at desc").Offset((f.Page - 1) * f.Limit).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, upstream(err, "list requests for organizer %s", organizerID)
	}
	return rows, total, nil
}

// RequestFor returns a request if the caller is its participant or the
// organizer of its program.
func (d *Directory) RequestFor(ctx context.Context, callerID, requestID string) (certModels.IssuanceRequest, error) {
	var row certModels.IssuanceRequest
	err := d.db.WithContext(ctx).Where("id = ?", requestID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, notFound("issuance request %s not found", requestID)
	}
	if err != nil {
		return row, upstream(err, "load issuance request %s", requestID)
	}
	if callerID != "" && row.ParticipantID == callerID {
		return row, nil
	}

	program, err := d.programs.Program(ctx, row.ProgramID)
	if err != nil {
		return certModels.IssuanceRequest{}, err
	}
	if callerID == "" || program.OrganizerID != callerID {
		return certModels.IssuanceRequest{}, newError(KindUnauthorized, "", "request %s is not visible to %q", requestID, callerID)
	}
	return row, nil
}

// ProgramEligibility is one program entry of an EligibleParticipant.
type ProgramEligibility struct {
	ProgramID        string            `json:"programId"`
	ProgramTitle     string            `json:"programTitle"`
	ProgramVariant   string            `json:"programVariant"`
	Eligible         bool              `json:"eligible"`
	CertificateTypes []CertificateType `json:"certificateTypes"`
}

// EligibleParticipant groups a participant's programs under one organizer.
type EligibleParticipant struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Programs []ProgramEligibility `json:"programs"`
}

// EligibleForOrganizer lists every participant of the organizer's programs
// with a fresh eligibility record per program.
func (d *Directory) EligibleForOrganizer(ctx context.Context, organizerID string) ([]EligibleParticipant, error) {
	var programs []programModels.Program
	if err := d.db.WithContext(ctx).
		Where("organizer_id = ? AND is_deleted = ?", organizerID, false).
		Order("start_date asc").
		Find(&programs).Error; err != nil {
		return nil, upstream(err, "list programs of %s", organizerID)
	}

	out := []EligibleParticipant{}
	index := map[string]int{}

	for _, program := range programs {
		var users []models.User
		if err := d.db.WithContext(ctx).
			Joins("JOIN program_participants pp ON pp.user_id = users.id").
			Where("pp.program_id = ? AND users.is_deleted = ?", program.ID, false).
			Order("pp.joined_at asc").
			Find(&users).Error; err != nil {
			return nil, upstream(err, "list participants of %s", program.ID)
		}

		for _, u := range users {
			rec, err := d.resolver.resolveFor(ctx, program, u.ID)
			if err != nil {
				return nil, err
			}
			pos, ok := index[u.ID]
			if !ok {
				pos = len(out)
				index[u.ID] = pos
				out = append(out, EligibleParticipant{ID: u.ID, Name: u.Name, Email: u.Email})
			}
			out[pos].Programs = append(out[pos].Programs, ProgramEligibility{
				ProgramID:        program.ID,
				ProgramTitle:     program.Title,
				ProgramVariant:   program.Variant,
				Eligible:         rec.Eligible,
				CertificateTypes: rec.Types,
			})
		}
	}
	return out, nil
}

// PendingRequestIDs returns pending requests created before cutoff, oldest first.
func (d *Directory) PendingRequestIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	var ids []string
	err := d.db.WithContext(ctx).Model(&certModels.IssuanceRequest{}).
		Where("status = ? AND requested_at <= ?", certModels.StatusPending, cutoff.UTC()).
		Order("requested_at asc").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, upstream(err, "list pending requests")
	}
	return ids, nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	ProgramsByVariant map[string]int64 `json:"programsByVariant"`
	Participants      int64            `json:"participants"`
	RequestsByStatus  map[string]int64 `json:"requestsByStatus"`
	Certificates      int64            `json:"certificates"`
}

func (d *Directory) Stats(ctx context.Context) (Stats, error) {
	db := d.db.WithContext(ctx)
	stats := Stats{
		ProgramsByVariant: map[string]int64{programModels.VariantHackathon: 0, programModels.VariantInternship: 0},
		RequestsByStatus: map[string]int64{
			certModels.StatusPending: 0, certModels.StatusIssued: 0,
			certModels.StatusRejected: 0, certModels.StatusFailed: 0,
		},
	}

	type bucket struct {
		BucketKey string
		Count     int64
	}

	var variants []bucket
	if err := db.Model(&programModels.Program{}).Select("variant AS bucket_key, count(*) AS count").
		Where("is_deleted = ?", false).Group("variant").Scan(&variants).Error; err != nil {
		return stats, upstream(err, "count programs")
	}
	for _, b := range variants {
		stats.ProgramsByVariant[b.BucketKey] = b.Count
	}

	var statuses []bucket
	if err := db.Model(&certModels.IssuanceRequest{}).Select("status AS bucket_key, count(*) AS count").
		Group("status").Scan(&statuses).Error; err != nil {
		return stats, upstream(err, "count requests")
	}
	for _, b := range statuses {
		stats.RequestsByStatus[b.BucketKey] = b.Count
	}

	if err := db.Model(&programModels.ProgramParticipant{}).Distinct("user_id").Count(&stats.Participants).Error; err != nil {
		return stats, upstream(err, "count participants")
	}
	if err := db.Model(&certModels.Certificate{}).Count(&stats.Certificates).Error; err != nil {
		return stats, upstream(err, "count certificates")
	}
	return stats, nil
}
