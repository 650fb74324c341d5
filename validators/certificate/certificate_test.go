package certificateValidator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCertificateAliases(t *testing.T) {
	var got *GenerateCertificateRequest
	app := fiber.New()
	app.Post("/", GenerateCertificate(), func(c *fiber.Ctx) error {
		got = c.Locals("validatedGenerate").(*GenerateCertificateRequest)
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, body := range []string{
		`{"participantId":" p1 ","programId":"h1","certificateType":"winner1"}`,
		`{"participantId":"p1","hackathonId":"h1","certificateType":"winner1"}`,
		`{"participantId":"p1","internshipId":"h1","certificateType":" winner1"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode, body)

		assert.Equal(t, "p1", got.ParticipantID)
		assert.Equal(t, "h1", got.ProgramID)
		assert.Equal(t, "winner1", got.CertificateType)
	}
}

func TestGenerateCertificateRejects(t *testing.T) {
	app := fiber.New()
	app.Post("/", GenerateCertificate(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"participantId":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, _ := json.Marshal(map[string]string{"participantId": strings.Repeat("x", 65)})
	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "participantId must be at most 64!", body.Data["participantId"])
	assert.Equal(t, "programId is required!", body.Data["programId"])
	assert.Equal(t, "certificateType is required!", body.Data["certificateType"])
}

func TestRequestList(t *testing.T) {
	var got *RequestListQuery
	app := fiber.New()
	app.Get("/", RequestList(), func(c *fiber.Ctx) error {
		got = c.Locals("validatedRequestList").(*RequestListQuery)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?programId=h1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "h1", got.ProgramID)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 10, got.Limit)

	for _, q := range []string{"status=done", "limit=500", "page=-1"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?"+q, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, q)
	}
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Get("/requests/:id", RequestID(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("requestID").(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/requests/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/requests/"+strings.Repeat("a", 65), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
