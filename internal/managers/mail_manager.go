// Package managers handles the sending of account emails using the Hermes package for email formatting
// and Mailgun or plain SMTP for delivery.
package managers

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"starter-server/internal/config"
	"starter-server/internal/schemas"
)

const sendTimeout = 5 * time.Second

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendWelcomeMail(ctx context.Context, recipient *schemas.User) error
	SendVerifyEmailMail(ctx context.Context, recipient *schemas.User, link string) error
	SendPasswordResetMail(ctx context.Context, recipient *schemas.User, link string) error
}

// MailTransport delivers an already rendered message.
type MailTransport interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
type MailManager struct {
	Hermes    *hermes.Hermes
	Transport MailTransport
	appName   string
}

// NewMailManager initializes a new MailManager with the configured transport.
// Outside production every mail is only logged.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	var transport MailTransport
	switch {
	case !cfg.IsProduction():
		log.Println("Running in development mode, email will not be sent to users")
		transport = &LogTransport{}
	case cfg.Mail.Driver == config.MailDriverMailgun:
		transport = NewMailgunTransport(&cfg.Mail)
	case cfg.Mail.Driver == config.MailDriverSMTP:
		transport = NewSMTPTransport(&cfg.Mail)
	default:
		transport = &LogTransport{}
	}

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        cfg.AppName,
				Link:        cfg.Mail.ProductLink,
				Copyright:   "© " + cfg.AppName,
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Transport: transport,
		appName:   cfg.AppName,
	}
	log.Info("Initialized mail manager")
	return mm
}

// SendWelcomeMail greets a freshly registered user.
func (mm *MailManager) SendWelcomeMail(ctx context.Context, recipient *schemas.User) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: recipient.Name,
			Intros: []string{
				"Welcome to " + mm.appName + "! We're very excited to have you on board.",
			},
			Outros: []string{
				"Need help, or have questions? Just reply to this email, we'd love to help.",
			},
		},
	}

	return mm.send(ctx, recipient.Email, "Welcome to "+mm.appName, mailBody)
}

// SendVerifyEmailMail sends the link confirming the ownership of the email address.
func (mm *MailManager) SendVerifyEmailMail(ctx context.Context, recipient *schemas.User, link string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: recipient.Name,
			Intros: []string{
				"Please confirm that this is your email address.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your email address, please click here:",
					Button: hermes.Button{
						Color: "#22BC66",
						Text:  "Verify email",
						Link:  link,
					},
				},
			},
			Outros: []string{
				"If you did not create an account, no further action is required.",
			},
		},
	}

	return mm.send(ctx, recipient.Email, "Verify your email address", mailBody)
}

// SendPasswordResetMail sends the link allowing the user to choose a new password.
func (mm *MailManager) SendPasswordResetMail(ctx context.Context, recipient *schemas.User, link string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: recipient.Name,
			Intros: []string{
				"You have received this email because a password reset request for your account was received.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password:",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Reset your password",
						Link:  link,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}

	return mm.send(ctx, recipient.Email, "Reset your password", mailBody)
}

func (mm *MailManager) send(ctx context.Context, to, subject string, mailBody hermes.Email) error {
	html, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return errors.Wrap(err, "render mail")
	}
	text, err := mm.Hermes.GeneratePlainText(mailBody)
	if err != nil {
		return errors.Wrap(err, "render mail")
	}

	if err := mm.Transport.Send(ctx, to, subject, html, text); err != nil {
		log.Warning("Error sending mail '" + subject + "': " + err.Error())
		return err
	}
	log.Debug("Mail '"+subject+"' sent to ", to)

	return nil
}

// MailgunTransport delivers mails through the Mailgun API.
type MailgunTransport struct {
	Mailgun mailgun.Mailgun
	from    string
}

func NewMailgunTransport(cfg *config.MailConfig) *MailgunTransport {
	mailgunInstance := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunEU {
		mailgunInstance.SetAPIBase(mailgun.APIBaseEU)
	}

	return &MailgunTransport{Mailgun: mailgunInstance, from: cfg.From}
}

func (t *MailgunTransport) Send(ctx context.Context, to, subject, html, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := t.Mailgun.NewMessage(t.from, subject, text, to)
	message.SetHtml(html)
	_, _, err := t.Mailgun.Send(ctx, message)
	return err
}

// SMTPTransport delivers mails through an SMTP relay.
type SMTPTransport struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPTransport(cfg *config.MailConfig) *SMTPTransport {
	return &SMTPTransport{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.From,
	}
}

func (t *SMTPTransport) Send(_ context.Context, to, subject, html, text string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", t.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	return t.dialer.DialAndSend(msg)
}

// LogTransport only logs the mail, used outside production.
type LogTransport struct{}

func (t *LogTransport) Send(_ context.Context, to, subject, _, text string) error {
	log.WithFields(log.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Skipping mail delivery in development mode")
	log.Debug(text)
	return nil
}
