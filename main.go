package main

import (
	"certhub/config"
	controllers "certhub/controllers/certificate"
	"certhub/database"
	certificateRoutes "certhub/routers/certificateRoutes"
	certsvc "certhub/services/certificate"
	"certhub/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cfg := config.AppConfig
	db := database.Database.Db

	roster := certsvc.NewGormRoster(db)
	resolver := certsvc.NewResolver(roster, roster, cfg.GraceWindow)
	ledger := certsvc.NewLedger(db, resolver)
	directory := certsvc.NewDirectory(db, roster, resolver)

	var generator certsvc.ArtifactGenerator
	if cfg.ArtifactServiceURL != "" {
		generator = utils.NewRemoteArtifactGenerator(cfg.ArtifactServiceURL, cfg.ArtifactServiceToken, cfg.ArtifactTimeout)
	} else {
		generator = &utils.LocalArtifactGenerator{Dir: cfg.ArtifactDir, AppName: cfg.AppName}
	}

	var sender utils.EmailSender = utils.ConsoleSender{}
	if cfg.SendgridAPIKey != "" {
		sender = utils.NewSendgridSender(cfg.SendgridAPIKey, cfg.AppName, cfg.EmailSender)
	}
	mailer := &utils.CertificateMailer{Sender: sender, AppName: cfg.AppName}

	issuer := certsvc.NewIssuer(ledger, roster, roster, generator, mailer)

	ctl := &controllers.CertificateController{
		Gateway:   certsvc.NewGateway(roster, resolver, ledger),
		Issuer:    issuer,
		Directory: directory,
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	certificateRoutes.SetupCertificateRoutes(app, ctl, db)

	// Locally rendered certificates, after the API routes sharing the prefix
	app.Static("/certificates", cfg.ArtifactDir)

	scheduler := utils.NewProgramScheduler(db, issuer, directory)
	scheduler.AutoIssueAfter = cfg.AutoIssueAfter
	c, err := scheduler.InitializeSchedulers(cfg.ProgramStatusCron, cfg.AutoIssueCron, cfg.AutoIssue)
	if err != nil {
		log.Fatalf("Failed to start schedulers: %v", err)
	}
	defer c.Stop()

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
