package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

// SMTPConfig holds the notification-sink connection settings. All values come
// from the environment; credentials are never baked in.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Enabled reports whether enough configuration exists to dial out.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Mailer sends survey confirmation emails over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewMailer constructs a Mailer. With incomplete SMTP configuration the
// dialer stays nil and every send fails loudly instead of silently.
func NewMailer(cfg SMTPConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialer *gomail.Dialer
	if cfg.Enabled() {
		dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}

	return &Mailer{cfg: cfg, dialer: dialer, logger: logger}
}

// SendThankYou delivers the confirmation email for a submitted survey with an
// HTML body and a plain-text alternative.
func (m *Mailer) SendThankYou(ctx context.Context, survey *domain.Survey) error {
	if m.dialer == nil {
		return errors.New("email sending is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	html, text, err := renderThankYou(survey)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", survey.Email)
	msg.SetHeader("Subject", "Thank You for Completing the EGA Program Survey!")
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send thank-you email to %s: %w", survey.Email, err)
	}

	m.logger.Info("thank-you email sent",
		zap.String("surveyId", survey.ID),
		zap.String("email", survey.Email))
	return nil
}
