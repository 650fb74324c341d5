package utils

import (
	certsvc "certhub/services/certificate"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalArtifactGenerator renders certificates as HTML files under Dir, which
// the server exposes at /certificates.
type LocalArtifactGenerator struct {
	Dir     string
	AppName string
}

func (g *LocalArtifactGenerator) Generate(_ context.Context, req certsvc.ArtifactRequest) (certsvc.Artifact, error) {
	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return certsvc.Artifact{}, err
	}

	fileName := req.RequestID + ".html"
	filePath := filepath.Join(g.Dir, fileName)

	issuedOn := time.Now().UTC().Format("January 2, 2006")
	body := renderCertificate(g.AppName, req, issuedOn)
	if err := os.WriteFile(filePath, []byte(body), 0644); err != nil {
		return certsvc.Artifact{}, err
	}

	return certsvc.Artifact{
		URL: GetFileURL(fileName),
		Meta: map[string]interface{}{
			"renderer": "local",
			"bytes":    len(body),
		},
	}, nil
}

func GetFileURL(fileName string) string {
	if fileName == "" {
		return ""
	}
	return "/certificates/" + fileName
}

func certificateTitle(certType string) string {
	switch certType {
	case "winner1":
		return "Certificate of Achievement - 1st Place"
	case "winner2":
		return "Certificate of Achievement - 2nd Place"
	case "winner3":
		return "Certificate of Achievement - 3rd Place"
	case "completion":
		return "Certificate of Completion"
	default:
		return "Certificate of Participation"
	}
}

func renderCertificate(appName string, req certsvc.ArtifactRequest, issuedOn string) string {
	body := fmt.Sprintf(`
		<p>This certifies that</p>
		<h1 style="color: #00004D;">%s</h1>
		<p>has been awarded the</p>
		<h3>%s</h3>
		<p>for the %s <strong>%s</strong>.</p>
		<div class="info-box">Certificate reference: %s<br>Issued on %s</div>
	`,
		html.EscapeString(req.ParticipantName),
		certificateTitle(req.CertificateType),
		html.EscapeString(req.ProgramVariant),
		html.EscapeString(req.ProgramTitle),
		html.EscapeString(strings.ToUpper(req.RequestID)),
		issuedOn,
	)
	return getEmailTemplate(appName, certificateTitle(req.CertificateType), body)
}
