package certificate

import (
	"certhub/models"
	certModels "certhub/models/certificate"
	programModels "certhub/models/program"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	err   error
	calls []ArtifactRequest
}

func (g *stubGenerator) Generate(_ context.Context, req ArtifactRequest) (Artifact, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return Artifact{}, g.err
	}
	return Artifact{URL: "/certificates/" + req.RequestID + ".html"}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *recordingNotifier) CertificateIssued(_ context.Context, participant models.User, _ programModels.Program, cert certModels.Certificate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, participant.Email+":"+cert.CertificateNumber)
	return n.err
}

func newIssuer(f *fixture, gen ArtifactGenerator, n Notifier) *Issuer {
	return NewIssuer(f.ledger, f.roster, f.roster, gen, n)
}

func TestIssueSuccess(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	gen := &stubGenerator{}
	notifier := &recordingNotifier{}
	issuer := newIssuer(f, gen, notifier)

	summary, err := f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "winner3")
	require.NoError(t, err)

	cert, err := issuer.Issue(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "/certificates/"+summary.ID+".html", cert.URL)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Program h1", gen.calls[0].ProgramTitle)
	assert.Equal(t, "User p1", gen.calls[0].ParticipantName)
	assert.Equal(t, "winner3", gen.calls[0].CertificateType)

	assert.Equal(t, []string{"p1@example.com:" + cert.CertificateNumber}, notifier.sent)

	row, err := f.ledger.Get(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, certModels.StatusIssued, row.Status)

	_, err = issuer.Issue(context.Background(), summary.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, gen.calls, 1)
}

func TestIssueGeneratorFailureMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	issuer := newIssuer(f, &stubGenerator{err: fmt.Errorf("renderer returned 502")}, nil)

	summary, err := f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "participation")
	require.NoError(t, err)

	_, err = issuer.Issue(context.Background(), summary.ID)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.True(t, Retryable(err))

	row, err := f.ledger.Get(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, certModels.StatusFailed, row.Status)
	assert.Contains(t, row.Reason, "502")

	_, err = issuer.Issue(context.Background(), summary.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "participation")
	assert.NoError(t, err)
}

func TestIssueNotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	issuer := newIssuer(f, &stubGenerator{}, &recordingNotifier{err: fmt.Errorf("smtp down")})

	summary, err := f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "participation")
	require.NoError(t, err)

	_, err = issuer.Issue(context.Background(), summary.ID)
	assert.NoError(t, err)
}

func TestAcceptChecksParticipant(t *testing.T) {
	f := newFixture(t)
	f.scenario(t)
	issuer := newIssuer(f, &stubGenerator{}, nil)

	summary, err := f.gateway.RequestCertificate(context.Background(), "o1", "p1", "h1", "participation")
	require.NoError(t, err)

	_, err = issuer.Accept(context.Background(), "p2", summary.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = issuer.Accept(context.Background(), "o1", summary.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	cert, err := issuer.Accept(context.Background(), "p1", summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", cert.ParticipantID)

	_, err = issuer.Accept(context.Background(), "p1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
