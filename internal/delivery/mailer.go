package delivery

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"taicc-readiness/internal/model"
)

const emailSubject = "Your AI Readiness Assessment Report - TAICC"

const emailBody = `
Dear %s,

Thank you for completing the TAICC AI Readiness Assessment!

Your comprehensive AI Readiness Assessment Report is attached to this email. This report includes:

• Your AI Maturity Level Assessment
• Executive Summary
• Detailed Analysis and Recommendations
• Visual Charts and Trends
• Actionable Next Steps

We hope this report helps you understand your organization's AI readiness and plan your AI transformation journey.

If you have any questions or would like to discuss your results, please don't hesitate to reach out to us.

Best regards,
TAICC Partners Team

---
This is an automated email. Please do not reply to this email.
`

// Mailer sends the report to the person who took the assessment.
type Mailer interface {
	SendReport(ctx context.Context, to, name string, doc *model.ReportDocument) error
}

// SMTPConfig holds the sender account. Port 587 with mandatory STARTTLS.
type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
	Timeout  time.Duration
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer returns nil when the sender or app password is missing.
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	if cfg.Sender == "" || cfg.Password == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &smtpMailer{cfg: cfg}
}

// BuildMessage composes the report email with the PDF attached.
func BuildMessage(from, to, name string, doc *model.ReportDocument) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	m.Subject(emailSubject)
	m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(emailBody, name))
	m.AttachReadSeeker(doc.FileName, bytes.NewReader(doc.Bytes),
		mail.WithFileContentType(mail.ContentType("application/pdf")))
	return m, nil
}

func (s *smtpMailer) SendReport(ctx context.Context, to, name string, doc *model.ReportDocument) error {
	msg, err := BuildMessage(s.cfg.Sender, to, name, doc)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Sender),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("email client setup failed: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email delivery to %s failed: %w", to, err)
	}
	return nil
}
