package certificate

import (
	certModels "certhub/models/certificate"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmitRequest is the input to Ledger.Submit.
type SubmitRequest struct {
	ParticipantID string
	ProgramID     string
	Type          CertificateType
	RequestedBy   string
}

// Artifact is what the artifact generator produced for an issued request.
type Artifact struct {
	URL  string
	Meta map[string]interface{}
}

// Ledger owns every write to the issuance_requests table.
type Ledger struct {
	db       *gorm.DB
	resolver *Resolver
	clock    *monotonicClock
}

func NewLedger(db *gorm.DB, resolver *Resolver) *Ledger {
	return &Ledger{
		db:       db,
		resolver: resolver,
		clock:    &monotonicClock{now: time.Now},
	}
}

// Key is the dedup slot the request would occupy.
func (r SubmitRequest) Key() DedupKey {
	return DedupKey{ParticipantID: r.ParticipantID, ProgramID: r.ProgramID, Type: r.Type}
}

// Submit checks the type against the program variant, re-resolves
// eligibility and inserts a pending request. The dedup unique index makes the
// duplicate check and the insert one atomic step.
func (l *Ledger) Submit(ctx context.Context, req SubmitRequest) (certModels.IssuanceRequest, error) {
	key := req.Key()

	program, err := l.resolver.programs.Program(ctx, req.ProgramID)
	if err != nil {
		return certModels.IssuanceRequest{}, err
	}
	if !ValidFor(program.Variant, req.Type) {
		return certModels.IssuanceRequest{}, newError(KindInvalidType, ReasonUnknownType,
			"certificate type %q is not defined for %s programs", req.Type, program.Variant)
	}
	rec, err := l.resolver.resolveFor(ctx, program, req.ParticipantID)
	if err != nil {
		return certModels.IssuanceRequest{}, err
	}
	if !rec.Allows(req.Type) {
		return certModels.IssuanceRequest{}, newError(KindInvalidType, ReasonNotEligible,
			"participant %s is not eligible for a %s certificate in %s", req.ParticipantID, req.Type, req.ProgramID)
	}

	live := true
	row := certModels.IssuanceRequest{
		ID:              uuid.NewString(),
		ParticipantID:   req.ParticipantID,
		ProgramID:       req.ProgramID,
		ProgramVariant:  rec.Variant,
		CertificateType: string(req.Type),
		ActiveSlot:      &live,
		Status:          certModels.StatusPending,
		RequestedBy:     req.RequestedBy,
		RequestedAt:     l.clock.Now(),
	}

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return certModels.IssuanceRequest{}, newError(KindDuplicateRequest, "",
				"a certificate for %s is already pending or issued", key)
		}
		return certModels.IssuanceRequest{}, upstream(err, "insert issuance request")
	}

	log.Printf("[LEDGER] Accepted request %s (%s)", row.ID, key)
	return row, nil
}

// Get returns a request by id.
func (l *Ledger) Get(ctx context.Context, requestID string) (certModels.IssuanceRequest, error) {
	var row certModels.IssuanceRequest
	err := l.db.WithContext(ctx).Where("id = ?", requestID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, notFound("issuance request %s not found", requestID)
	}
	if err != nil {
		return row, upstream(err, "load issuance request %s", requestID)
	}
	return row, nil
}

// MarkIssued moves a pending request to issued and records its certificate in
// the same transaction.
func (l *Ledger) MarkIssued(ctx context.Context, requestID string, artifact Artifact) (certModels.Certificate, error) {
	var cert certModels.Certificate

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":       certModels.StatusIssued,
			"artifact_url": artifact.URL,
			"updated_at":   now,
		}
		if artifact.Meta != nil {
			updates["artifact_meta"] = datatypes.JSONMap(artifact.Meta)
		}

		res := tx.Model(&certModels.IssuanceRequest{}).
			Where("id = ? AND status = ?", requestID, certModels.StatusPending).
			Updates(updates)
		if res.Error != nil {
			return upstream(res.Error, "mark request %s issued", requestID)
		}
		if res.RowsAffected == 0 {
			return transitionError(tx, requestID, certModels.StatusIssued)
		}

		var row certModels.IssuanceRequest
		if err := tx.Where("id = ?", requestID).First(&row).Error; err != nil {
			return upstream(err, "reload request %s", requestID)
		}

		cert = certModels.Certificate{
			ID:                uuid.NewString(),
			RequestID:         row.ID,
			ParticipantID:     row.ParticipantID,
			ProgramID:         row.ProgramID,
			CertificateType:   row.CertificateType,
			CertificateNumber: certificateNumber(row, now),
			URL:               artifact.URL,
			IssuedAt:          now,
		}
		if err := tx.Create(&cert).Error; err != nil {
			return upstream(err, "create certificate for %s", requestID)
		}
		return nil
	})
	if err != nil {
		return certModels.Certificate{}, err
	}

	log.Printf("[LEDGER] Request %s issued as %s", requestID, cert.CertificateNumber)
	return cert, nil
}

// MarkFailed moves a pending request to failed and frees its dedup slot.
func (l *Ledger) MarkFailed(ctx context.Context, requestID, reason string) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&certModels.IssuanceRequest{}).
			Where("id = ? AND status = ?", requestID, certModels.StatusPending).
			Updates(map[string]interface{}{
				"status":      certModels.StatusFailed,
				"reason":      reason,
				"active_slot": nil,
				"updated_at":  time.Now().UTC(),
			})
		if res.Error != nil {
			return upstream(res.Error, "mark request %s failed", requestID)
		}
		if res.RowsAffected == 0 {
			return transitionError(tx, requestID, certModels.StatusFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[LEDGER] Request %s failed: %s", requestID, reason)
	return nil
}

// transitionError explains why a conditional update touched no rows.
func transitionError(tx *gorm.DB, requestID, target string) error {
	var row certModels.IssuanceRequest
	err := tx.Select("id", "status").Where("id = ?", requestID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("issuance request %s not found", requestID)
	}
	if err != nil {
		return upstream(err, "load issuance request %s", requestID)
	}
	return newError(KindInvalidTransition, "", "request %s is %s and cannot become %s", requestID, row.Status, target)
}

func certificateNumber(row certModels.IssuanceRequest, issuedAt time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(row.ID, "-", ""))
	if len(short) > 10 {
		short = short[:10]
	}
	return fmt.Sprintf("CERT-%s-%d", short, issuedAt.Unix())
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") || strings.Contains(msg, "duplicate entry")
}

// monotonicClock hands out strictly increasing request timestamps.
type monotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
