package utils

import (
	"certhub/models"
	certModels "certhub/models/certificate"
	programModels "certhub/models/program"
	"context"
	"fmt"
	"html"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailMessage is a single HTML email.
type EmailMessage struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
}

// EmailSender delivers EmailMessages.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SendgridSender sends mail through the SendGrid v3 API.
type SendgridSender struct {
	key  string
	from *sgmail.Email
	host string
}

func NewSendgridSender(key, appName, fromEmail string) *SendgridSender {
	return &SendgridSender{
		key:  key,
		from: sgmail.NewEmail(appName, fromEmail),
		host: "https://api.sendgrid.com",
	}
}

func (s *SendgridSender) Send(ctx context.Context, msg EmailMessage) error {
	m := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail(msg.ToName, msg.ToEmail), "", msg.HTML)

	req := sendgrid.GetRequest(s.key, "/v3/mail/send", s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleSender writes mail to the log; used when no SendGrid key is set.
type ConsoleSender struct{}

func (ConsoleSender) Send(_ context.Context, msg EmailMessage) error {
	log.Printf("[EMAIL] To: %s <%s> Subject: %s", msg.ToName, msg.ToEmail, msg.Subject)
	return nil
}

// CertificateMailer notifies participants when a certificate is issued.
type CertificateMailer struct {
	Sender  EmailSender
	AppName string
}

func (m *CertificateMailer) CertificateIssued(ctx context.Context, participant models.User, program programModels.Program, cert certModels.Certificate) error {
	if participant.Email == "" {
		return fmt.Errorf("participant %s has no email address", participant.ID)
	}

	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! Your certificate for <strong>%s</strong> has been issued.</p>
		<div class="info-box">
			<strong>Certificate Number:</strong> %s
		</div>
		<p>You can use this certificate number for verification purposes.</p>
		<a href="%s" class="btn">View Certificate</a>
	`,
		html.EscapeString(participant.Name),
		html.EscapeString(program.Title),
		cert.CertificateNumber,
		html.EscapeString(cert.URL),
	)

	return m.Sender.Send(ctx, EmailMessage{
		ToName:  participant.Name,
		ToEmail: participant.Email,
		Subject: "Your certificate for " + program.Title,
		HTML:    getEmailTemplate(m.AppName, certificateTitle(cert.CertificateType), body),
	})
}

func getEmailTemplate(appName, title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #d7b56d; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(appName), title, bodyContent)
}
