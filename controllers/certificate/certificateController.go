package controllers

import (
	"certhub/middleware"
	certsvc "certhub/services/certificate"
	validators "certhub/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

// CertificateController exposes the certificate services over HTTP.
type CertificateController struct {
	Gateway   *certsvc.Gateway
	Issuer    *certsvc.Issuer
	Directory *certsvc.Directory
}

// GenerateCertificate lets an organizer request a certificate for a participant
func (ctl *CertificateController) GenerateCertificate(c *fiber.Ctx) error {
	reqData := c.Locals("validatedGenerate").(*validators.GenerateCertificateRequest)

	summary, err := ctl.Gateway.RequestCertificate(
		c.UserContext(),
		middleware.CallerID(c),
		reqData.ParticipantID,
		reqData.ProgramID,
		reqData.CertificateType,
	)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generation request sent successfully!", summary)
}

// GetEligibility returns the eligibility record of a participant in one of the caller's programs
func (ctl *CertificateController) GetEligibility(c *fiber.Ctx) error {
	programID := c.Locals("programID").(string)
	participantID := c.Locals("participantID").(string)

	rec, err := ctl.Gateway.Eligibility(c.UserContext(), middleware.CallerID(c), participantID, programID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Eligibility fetched successfully!", rec)
}

// GetEligibleParticipants lists participants across the caller's programs
func (ctl *CertificateController) GetEligibleParticipants(c *fiber.Ctx) error {
	participants, err := ctl.Directory.EligibleForOrganizer(c.UserContext(), middleware.CallerID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Eligible participants fetched successfully!", fiber.Map{
		"participants": participants,
		"total":        len(participants),
	})
}

// GetOrganizerRequests pages through requests of the caller's programs
func (ctl *CertificateController) GetOrganizerRequests(c *fiber.Ctx) error {
	query := c.Locals("validatedRequestList").(*validators.RequestListQuery)

	rows, total, err := ctl.Directory.RequestsForOrganizer(c.UserContext(), middleware.CallerID(c), certsvc.RequestFilter{
		ProgramID: query.ProgramID,
		Status:    query.Status,
		Page:      query.Page,
		Limit:     query.Limit,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", fiber.Map{
		"requests": rows,
		"pagination": fiber.Map{
			"total": total,
			"page":  query.Page,
			"limit": query.Limit,
		},
	})
}

// GetMyPendingRequests lists pending requests addressed to the caller
func (ctl *CertificateController) GetMyPendingRequests(c *fiber.Ctx) error {
	requests, err := ctl.Directory.PendingForParticipant(c.UserContext(), middleware.CallerID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate requests fetched successfully!", requests)
}

// GetRequest returns one request to its participant or organizer
func (ctl *CertificateController) GetRequest(c *fiber.Ctx) error {
	requestID := c.Locals("requestID").(string)

	row, err := ctl.Directory.RequestFor(c.UserContext(), middleware.CallerID(c), requestID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request fetched successfully!", row)
}

// AcceptRequest lets the participant mint a pending certificate
func (ctl *CertificateController) AcceptRequest(c *fiber.Ctx) error {
	requestID := c.Locals("requestID").(string)

	cert, err := ctl.Issuer.Accept(c.UserContext(), middleware.CallerID(c), requestID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate minted successfully!", cert)
}

// GetMyCertificates lists certificates issued to the caller
func (ctl *CertificateController) GetMyCertificates(c *fiber.Ctx) error {
	certs, err := ctl.Directory.CertificatesForParticipant(c.UserContext(), middleware.CallerID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certs,
		"total":        len(certs),
	})
}

// AdminDashboardStats gets dashboard statistics
func (ctl *CertificateController) AdminDashboardStats(c *fiber.Ctx) error {
	stats, err := ctl.Directory.Stats(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", stats)
}
