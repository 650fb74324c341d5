package utils

import (
	programModels "certhub/models/program"
	certsvc "certhub/services/certificate"
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// autoIssueBatch caps the number of pending requests issued per run.
const autoIssueBatch = 50

// ProgramScheduler runs the periodic program and issuance sweeps.
type ProgramScheduler struct {
	DB        *gorm.DB
	Issuer    *certsvc.Issuer
	Directory *certsvc.Directory

	// AutoIssueAfter is how long a request must sit pending before the
	// auto-issue sweep picks it up.
	AutoIssueAfter time.Duration

	now func() time.Time
}

func NewProgramScheduler(db *gorm.DB, issuer *certsvc.Issuer, directory *certsvc.Directory) *ProgramScheduler {
	return &ProgramScheduler{
		DB:        db,
		Issuer:    issuer,
		Directory: directory,
		now:       time.Now,
	}
}

// InitializeSchedulers registers the sweeps and starts the cron runner.
// Auto-issue is only registered when autoIssue is set.
func (s *ProgramScheduler) InitializeSchedulers(statusSpec, autoIssueSpec string, autoIssue bool) (*cron.Cron, error) {
	log.Println("[PROGRAM-SCHEDULER] Initializing program scheduler...")

	c := cron.New()

	if _, err := c.AddFunc(statusSpec, func() {
		log.Println("[PROGRAM-SCHEDULER] Running program status sweep...")
		s.RefreshProgramStatuses(context.Background())
	}); err != nil {
		return nil, err
	}

	if autoIssue {
		if _, err := c.AddFunc(autoIssueSpec, func() {
			log.Println("[PROGRAM-SCHEDULER] Running auto-issue sweep...")
			s.IssuePending(context.Background())
		}); err != nil {
			return nil, err
		}
	}

	c.Start()
	log.Printf("[PROGRAM-SCHEDULER] Program scheduler started - status %q, auto-issue %v", statusSpec, autoIssue)
	return c, nil
}

// RefreshProgramStatuses stores the derived status of every program whose
// stored status has drifted. It returns the number of programs updated.
func (s *ProgramScheduler) RefreshProgramStatuses(ctx context.Context) int {
	now := s.now()

	var programs []programModels.Program
	if err := s.DB.WithContext(ctx).
		Where("is_deleted = ?", false).
		Find(&programs).Error; err != nil {
		log.Printf("[PROGRAM-SCHEDULER] Error fetching programs: %v", err)
		return 0
	}

	updated := 0
	for _, p := range programs {
		status := p.StatusAt(now)
		if status == p.Status {
			continue
		}
		if err := s.DB.WithContext(ctx).
			Model(&programModels.Program{}).
			Where("id = ?", p.ID).
			Update("status", status).Error; err != nil {
			log.Printf("[PROGRAM-SCHEDULER] Error updating program %s: %v", p.ID, err)
			continue
		}
		updated++
		log.Printf("[PROGRAM-SCHEDULER] Program %s moved %s -> %s", p.ID, p.Status, status)
	}
	return updated
}

// IssuePending issues pending requests older than AutoIssueAfter. Failures
// are logged and the sweep moves on; a request left pending is retried on
// the next run.
func (s *ProgramScheduler) IssuePending(ctx context.Context) int {
	cutoff := s.now().Add(-s.AutoIssueAfter)

	ids, err := s.Directory.PendingRequestIDs(ctx, cutoff, autoIssueBatch)
	if err != nil {
		log.Printf("[PROGRAM-SCHEDULER] Error fetching pending requests: %v", err)
		return 0
	}

	issued := 0
	for _, id := range ids {
		cert, err := s.Issuer.Issue(ctx, id)
		if err != nil {
			log.Printf("[PROGRAM-SCHEDULER] Could not issue request %s: %v", id, err)
			continue
		}
		issued++
		log.Printf("[PROGRAM-SCHEDULER] Issued %s for request %s", cert.CertificateNumber, id)
	}
	return issued
}
