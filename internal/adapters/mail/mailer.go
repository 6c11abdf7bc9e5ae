// Package mail delivers the transactional auth emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/ports/gateways"
	"github.com/neptunetech/storefront/internal/middleware"
	"github.com/neptunetech/storefront/internal/platform/config"
	"gopkg.in/gomail.v2"
)

// Dialer opens an SMTP connection. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

type SMTPMailer struct {
	dialer     Dialer
	from       string
	senderName string
	baseURL    string
}

var _ gateways.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a mailer from the SMTP_* settings.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	return NewMailer(d, cfg.SMTPEmail, cfg.MailSenderName, cfg.AppBaseURL)
}

func NewMailer(dialer Dialer, from, senderName, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		dialer:     dialer,
		from:       from,
		senderName: senderName,
		baseURL:    baseURL,
	}
}

func (m *SMTPMailer) verificationLink(token string) string {
	return fmt.Sprintf("%s/auth/email-verification?token=%s", m.baseURL, token)
}

func (m *SMTPMailer) resetLink(token string) string {
	return fmt.Sprintf("%s/auth/new-password?token=%s", m.baseURL, token)
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(`<p>Click <a href="%s">here</a> to verify your email.</p>`, m.verificationLink(token))
	return m.send(ctx, to, "Verify your email", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password.</p>`, m.resetLink(token))
	return m.send(ctx, to, "Reset Your Password", body)
}

func (m *SMTPMailer) SendTwoFactorTokenEmail(ctx context.Context, to, code string) error {
	body := fmt.Sprintf(`<p>Your two factor authentication code is: %s</p>`, code)
	return m.send(ctx, to, "Two factor authentication code", body)
}

// send dials first and only logs a failed connection; the message is then
// silently dropped. Failures after a successful dial are returned.
func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("mail_subject", subject))

	sc, err := m.dialer.Dial()
	if err != nil {
		logger.Warn("SMTP connection check failed, email not sent", slog.String("error", err.Error()))
		return nil
	}
	defer sc.Close()

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.senderName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := gomail.Send(sc, msg); err != nil {
		logger.Error("Failed to send email", slog.String("error", err.Error()))
		return apperrors.NewDeliveryError("Failed to send email", err)
	}

	logger.Info("Email sent successfully")
	return nil
}
