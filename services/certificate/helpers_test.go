package certificate

import (
	"certhub/config"
	"certhub/database"
	"certhub/models"
	programModels "certhub/models/program"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	roster    *GormRoster
	resolver  *Resolver
	ledger    *Ledger
	gateway   *Gateway
	directory *Directory
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(&config.Config{
		DBDriver: "sqlite",
		DBDSN:    filepath.Join(t.TempDir(), "certs.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{db: db, now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.roster = NewGormRoster(db)
	f.resolver = NewResolver(f.roster, f.roster, 0)
	f.resolver.now = func() time.Time { return f.now }
	f.ledger = NewLedger(db, f.resolver)
	f.gateway = NewGateway(f.roster, f.resolver, f.ledger)
	f.directory = NewDirectory(db, f.roster, f.resolver)
	return f
}

func (f *fixture) user(t *testing.T, id, role string) models.User {
	t.Helper()
	u := models.User{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) program(t *testing.T, id, variant, organizer string, start time.Time, end *time.Time, participants ...string) programModels.Program {
	t.Helper()
	p := programModels.Program{
		ID:          id,
		Variant:     variant,
		Title:       "Program " + id,
		OrganizerID: organizer,
		StartDate:   start,
		EndDate:     end,
		Status:      programModels.StatusActive,
	}
	require.NoError(t, f.db.Create(&p).Error)
	for i, pid := range participants {
		require.NoError(t, f.db.Create(&programModels.ProgramParticipant{
			ProgramID: id,
			UserID:    pid,
			JoinedAt:  start.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	return p
}

// scenario seeds organizer o1 owning hackathon h1 with participant p1 enrolled,
// organizer o2, and participant p2 who is not enrolled.
func (f *fixture) scenario(t *testing.T) {
	t.Helper()
	f.user(t, "o1", models.RoleHackathonOrganizer)
	f.user(t, "o2", models.RoleHackathonOrganizer)
	f.user(t, "p1", models.RoleUser)
	f.user(t, "p2", models.RoleUser)
	end := f.now.Add(48 * time.Hour)
	f.program(t, "h1", programModels.VariantHackathon, "o1", f.now.Add(-24*time.Hour), &end, "p1")
}

func timePtr(t time.Time) *time.Time { return &t }
