// File: /services/email_service.go
package services

import (
	"fmt"
	"html"
	"strings"

	"convoy-api/config"
	"convoy-api/models"
	"convoy-api/utils"

	"gopkg.in/gomail.v2"
)

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	config *config.Config
	sender MailSender
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return NewEmailServiceWithSender(cfg, dialer)
}

func NewEmailServiceWithSender(cfg *config.Config, sender MailSender) *EmailService {
	return &EmailService{config: cfg, sender: sender}
}

// Enabled is false when no SMTP host is configured; sends become no-ops.
func (es *EmailService) Enabled() bool {
	return es.config.SMTPHost != ""
}

func (es *EmailService) newMessage(to []string, subject, textBody, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)
	return m
}

func (es *EmailService) send(m *gomail.Message) error {
	if !es.Enabled() {
		return nil
	}
	if err := es.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #111827; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>Convoy for a Cause</h1></div>
        <div class="content">%s</div>
        <div class="footer"><p>This is an automated email, please do not reply.</p></div>
    </div>
</body>
</html>`

// SendRegistrationReceived confirms a new submission to the registrant.
func (es *EmailService) SendRegistrationReceived(reg *models.Registration, eventTitle string) error {
	name := html.EscapeString(reg.FullName)
	title := html.EscapeString(eventTitle)
	car := html.EscapeString(fmt.Sprintf("%d %s %s", reg.CarYear, reg.CarMake, reg.CarModel))

	htmlBody := fmt.Sprintf(emailLayout, fmt.Sprintf(`
            <h2>Thanks, %s!</h2>
            <p>We received your registration for <strong>%s</strong> with your %s.</p>
            <p>Our team reviews every entry. You will hear from us once it has been approved.</p>`,
		name, title, car))

	textBody := fmt.Sprintf(`Thanks, %s!

We received your registration for %s with your %d %s %s.
Our team reviews every entry. You will hear from us once it has been approved.
`, reg.FullName, eventTitle, reg.CarYear, reg.CarMake, reg.CarModel)

	m := es.newMessage([]string{reg.Email}, "Registration received: "+eventTitle, textBody, htmlBody)
	return es.send(m)
}

// SendStatusUpdate tells the registrant their entry was approved or rejected.
// Pending needs no mail.
func (es *EmailService) SendStatusUpdate(reg *models.Registration) error {
	var subject, line string
	switch reg.Status {
	case models.StatusApproved:
		subject = "You're in! Registration approved"
		line = "Great news: your registration has been approved. We'll send event details closer to the date."
	case models.StatusRejected:
		subject = "Update on your registration"
		line = "Thank you for applying. Unfortunately we are not able to accept your registration this time."
	default:
		return nil
	}

	htmlBody := fmt.Sprintf(emailLayout, fmt.Sprintf(`
            <h2>Hello %s,</h2>
            <p>%s</p>`, html.EscapeString(reg.FullName), line))
	textBody := fmt.Sprintf("Hello %s,\n\n%s\n", reg.FullName, line)

	m := es.newMessage([]string{reg.Email}, subject, textBody, htmlBody)
	return es.send(m)
}

// SendActiveEventAlert warns admins that the active-event check failed.
func (es *EmailService) SendActiveEventAlert(report models.ActiveStateReport) error {
	admins := es.config.AdminEmailList()
	if len(admins) == 0 {
		return nil
	}

	var line string
	switch report.Status {
	case models.ActiveNone:
		line = "No event is currently active. Registrations will not default to any event until one is activated."
	case models.ActiveMultiple:
		line = fmt.Sprintf("%d events are active at once (%s). Activate the intended event again to repair this.",
			report.Count, strings.Join(report.ActiveIDs, ", "))
	default:
		return nil
	}

	checked := utils.NewDateFormatter(nil).FormatTimeForDisplay(report.CheckedAt)
	htmlBody := fmt.Sprintf(emailLayout, fmt.Sprintf(`
            <h2>Active event check</h2>
            <p>%s</p>
            <p><small>Checked at %s</small></p>`, html.EscapeString(line), checked))
	textBody := fmt.Sprintf("Active event check\n\n%s\n\nChecked at %s\n", line, checked)

	m := es.newMessage(admins, "Active event check failed", textBody, htmlBody)
	return es.send(m)
}
