package utils

import (
	certsvc "certhub/services/certificate"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteArtifactGenerator asks an external rendering service for the
// certificate artifact.
type RemoteArtifactGenerator struct {
	client *resty.Client
}

type artifactResponse struct {
	Location string                 `json:"location"`
	Meta     map[string]interface{} `json:"meta"`
}

type artifactError struct {
	Message string `json:"message"`
}

func NewRemoteArtifactGenerator(baseURL, token string, timeout time.Duration) *RemoteArtifactGenerator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	if token != "" {
		client.SetAuthToken(token)
	}
	return &RemoteArtifactGenerator{client: client}
}

func (g *RemoteArtifactGenerator) Generate(ctx context.Context, req certsvc.ArtifactRequest) (certsvc.Artifact, error) {
	var out artifactResponse
	var apiErr artifactError

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/artifacts")
	if err != nil {
		return certsvc.Artifact{}, fmt.Errorf("artifact service: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = resp.Status()
		}
		return certsvc.Artifact{}, fmt.Errorf("artifact service returned %d: %s", resp.StatusCode(), msg)
	}
	if out.Location == "" {
		return certsvc.Artifact{}, fmt.Errorf("artifact service returned no location")
	}

	return certsvc.Artifact{URL: out.Location, Meta: out.Meta}, nil
}
