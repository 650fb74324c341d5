package certificateRoutes

import (
	controllers "certhub/controllers/certificate"
	"certhub/middleware"
	"certhub/models"
	validators "certhub/validators/certificate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupCertificateRoutes sets up organizer, participant and admin certificate routes
func SetupCertificateRoutes(app *fiber.App, ctl *controllers.CertificateController, db *gorm.DB) {
	organizerOnly := middleware.RequireRole(db, models.RoleHackathonOrganizer, models.RoleInternshipOrganizer, models.RoleAdmin)

	// Organizer
	app.Post("/certificates/generate", middleware.JWTMiddleware, organizerOnly, validators.GenerateCertificate(), ctl.GenerateCertificate)
	app.Post("/hackathons/organizer/certificates/generate", middleware.JWTMiddleware, organizerOnly, validators.GenerateCertificate(), ctl.GenerateCertificate)
	app.Post("/internships/organizer/certificates/generate", middleware.JWTMiddleware, organizerOnly, validators.GenerateCertificate(), ctl.GenerateCertificate)
	app.Get("/certificates/eligibility/:programId/:participantId", middleware.JWTMiddleware, organizerOnly, validators.Eligibility(), ctl.GetEligibility)

	organizerGroup := app.Group("/organizer/certificates")
	organizerGroup.Get("/eligible", middleware.JWTMiddleware, organizerOnly, ctl.GetEligibleParticipants)
	organizerGroup.Get("/requests", middleware.JWTMiddleware, organizerOnly, validators.RequestList(), ctl.GetOrganizerRequests)

	// Participant
	certGroup := app.Group("/certificates")
	certGroup.Get("/requests", middleware.JWTMiddleware, ctl.GetMyPendingRequests)
	certGroup.Get("/requests/:id", middleware.JWTMiddleware, validators.RequestID(), ctl.GetRequest)
	certGroup.Post("/requests/:id/accept", middleware.JWTMiddleware, validators.RequestID(), ctl.AcceptRequest)
	certGroup.Get("/mine", middleware.JWTMiddleware, ctl.GetMyCertificates)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard")
	dashGroup.Get("/stats", middleware.JWTMiddleware, middleware.RequireRole(db, models.RoleAdmin), ctl.AdminDashboardStats)
}
