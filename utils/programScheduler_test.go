package utils

import (
	"certhub/config"
	"certhub/database"
	"certhub/models"
	certModels "certhub/models/certificate"
	programModels "certhub/models/program"
	certsvc "certhub/services/certificate"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type schedulerFixture struct {
	db        *gorm.DB
	gateway   *certsvc.Gateway
	scheduler *ProgramScheduler
	now       time.Time
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	db, err := database.Open(&config.Config{
		DBDriver: "sqlite",
		DBDSN:    filepath.Join(t.TempDir(), "scheduler.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	roster := certsvc.NewGormRoster(db)
	resolver := certsvc.NewResolver(roster, roster, 0)
	ledger := certsvc.NewLedger(db, resolver)
	directory := certsvc.NewDirectory(db, roster, resolver)
	issuer := certsvc.NewIssuer(ledger, roster, roster,
		&LocalArtifactGenerator{Dir: t.TempDir(), AppName: "CertHub"},
		&CertificateMailer{Sender: &fakeSender{}, AppName: "CertHub"})

	f := &schedulerFixture{
		db:        db,
		gateway:   certsvc.NewGateway(roster, resolver, ledger),
		scheduler: NewProgramScheduler(db, issuer, directory),
		now:       time.Now().UTC(),
	}
	f.scheduler.now = func() time.Time { return f.now }
	return f
}

func (f *schedulerFixture) program(t *testing.T, id string, start time.Time, end *time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&programModels.Program{
		ID:          id,
		Variant:     programModels.VariantHackathon,
		Title:       "Program " + id,
		OrganizerID: "o1",
		StartDate:   start,
		EndDate:     end,
		Status:      programModels.StatusActive,
	}).Error)
}

func TestRefreshProgramStatuses(t *testing.T) {
	f := newSchedulerFixture(t)
	past := f.now.Add(-time.Hour)
	future := f.now.Add(time.Hour)

	f.program(t, "running", f.now.Add(-48*time.Hour), &future)
	f.program(t, "later", f.now.Add(24*time.Hour), nil)
	f.program(t, "done", f.now.Add(-48*time.Hour), &past)

	assert.Equal(t, 2, f.scheduler.RefreshProgramStatuses(context.Background()))

	statuses := map[string]string{}
	var programs []programModels.Program
	require.NoError(t, f.db.Find(&programs).Error)
	for _, p := range programs {
		statuses[p.ID] = p.Status
	}
	assert.Equal(t, map[string]string{
		"running": programModels.StatusActive,
		"later":   programModels.StatusUpcoming,
		"done":    programModels.StatusCompleted,
	}, statuses)

	// nothing drifted since the last run
	assert.Equal(t, 0, f.scheduler.RefreshProgramStatuses(context.Background()))
}

func TestIssuePending(t *testing.T) {
	f := newSchedulerFixture(t)
	require.NoError(t, f.db.Create(&models.User{ID: "o1", Email: "o1@example.com", Role: models.RoleHackathonOrganizer}).Error)
	require.NoError(t, f.db.Create(&models.User{ID: "p1", Name: "Pat", Email: "p1@example.com"}).Error)
	end := f.now.Add(48 * time.Hour)
	f.program(t, "h1", f.now.Add(-24*time.Hour), &end)
	require.NoError(t, f.db.Create(&programModels.ProgramParticipant{ProgramID: "h1", UserID: "p1", JoinedAt: f.now}).Error)

	summary, err := f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "participation")
	require.NoError(t, err)

	f.scheduler.AutoIssueAfter = time.Hour
	assert.Equal(t, 0, f.scheduler.IssuePending(context.Background()))

	f.now = f.now.Add(2 * time.Hour)
	assert.Equal(t, 1, f.scheduler.IssuePending(context.Background()))

	var row certModels.IssuanceRequest
	require.NoError(t, f.db.First(&row, "id = ?", summary.ID).Error)
	assert.Equal(t, certModels.StatusIssued, row.Status)

	assert.Equal(t, 0, f.scheduler.IssuePending(context.Background()))
}

func TestInitializeSchedulers(t *testing.T) {
	f := newSchedulerFixture(t)

	c, err := f.scheduler.InitializeSchedulers("0 * * * *", "*/5 * * * *", true)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
	c.Stop()

	c, err = f.scheduler.InitializeSchedulers("0 * * * *", "*/5 * * * *", false)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	c.Stop()

	_, err = f.scheduler.InitializeSchedulers("every tuesday", "*/5 * * * *", false)
	assert.Error(t, err)
}
