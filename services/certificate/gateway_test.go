package certificate

import (
	"certhub/models"
	certModels "certhub/models/certificate"
	programModels "certhub/models/program"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCertificateScenario(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	c := context.Background()

	summary, err := f.gateway.RequestCertificate(c, "o1", "p1", "h1", "winner1")
	require.NoError(t, err)
	assert.Equal(t, certModels.StatusPending, summary.Status)
	assert.Equal(t, "winner1", summary.CertificateType)
	assert.Equal(t, "hackathon", summary.ProgramVariant)

	_, err = f.gateway.RequestCertificate(c, "o1", "p1", "h1", "winner1")
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	_, err = f.gateway.RequestCertificate(c, "o1", "p1", "h1", "winner4")
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Equal(t, ReasonUnknownType, ReasonOf(err))

	_, err = f.gateway.RequestCertificate(c, "o2", "p1", "h1", "winner1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRequestCertificateErrorOrder(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	c := context.Background()

	_, err := f.gateway.RequestCertificate(c, "o1", "p1", "nope", "winner1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Authorization is checked before the type.
	_, err = f.gateway.RequestCertificate(c, "o2", "p1", "h1", "winner4")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.gateway.RequestCertificate(c, "", "p1", "h1", "winner1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Type shape is checked before eligibility.
	_, err = f.gateway.RequestCertificate(c, "o1", "p2", "h1", "completion")
	assert.Equal(t, ReasonUnknownType, ReasonOf(err))

	_, err = f.gateway.RequestCertificate(c, "o1", "p2", "h1", "participation")
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = f.gateway.RequestCertificate(c, "o1", "ghost", "h1", "participation")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestCertificateConcurrentIdenticalCalls(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "participation")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if KindOf(err) == KindDuplicateRequest {
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestRequestCertificateAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	c := context.Background()

	first, err := f.gateway.RequestCertificate(c, "o1", "p1", "h1", "participation")
	require.NoError(t, err)
	require.NoError(t, f.ledger.MarkFailed(c, first.ID, "renderer timeout"))

	second, err := f.gateway.RequestCertificate(c, "o1", "p1", "h1", "participation")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, certModels.StatusPending, second.Status)
}

func TestRequestCertificateInternship(t *testing.T) {
	f := newFixture(t)
	f.user(t, "io", models.RoleInternshipOrganizer)
	f.user(t, "intern", models.RoleUser)
	f.program(t, "i1", programModels.VariantInternship, "io", f.now.Add(-30*24*time.Hour), nil, "intern")
	c := context.Background()

	_, err := f.gateway.RequestCertificate(c, "io", "intern", "i1", "completion")
	assert.NoError(t, err)

	_, err = f.gateway.RequestCertificate(c, "io", "intern", "i1", "winner1")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestEligibilityRequiresOrganizer(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)

	rec, err := f.gateway.Eligibility(context.Background(), "o1", "p1", "h1")
	require.NoError(t, err)
	assert.True(t, rec.Eligible)

	_, err = f.gateway.Eligibility(context.Background(), "o2", "p1", "h1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
