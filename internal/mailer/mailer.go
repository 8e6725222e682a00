package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/formgate/formgate-api/config"
	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/pkg/logger"
)

// SMTPMailer delivers submission notifications over a single configured SMTP
// transport. Credentials and addressing come entirely from configuration; the
// mailer never inspects recipient domains to pick a provider.
type SMTPMailer struct {
	cfg           config.SMTPConfig
	subjectPrefix string
}

func NewSMTPMailer(cfg config.SMTPConfig, subjectPrefix string) *SMTPMailer {
	return &SMTPMailer{
		cfg:           cfg,
		subjectPrefix: subjectPrefix,
	}
}

// Send mails the submission to the configured inbox with the rendered PDF
// attached. The caller's context bounds the SMTP dial and transfer.
func (m *SMTPMailer) Send(ctx context.Context, fields models.SanitizedFields, submissionID int64, attachment []byte) error {
	msg, err := m.buildMessage(fields, submissionID, attachment)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	if m.cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

func (m *SMTPMailer) buildMessage(fields models.SanitizedFields, submissionID int64, attachment []byte) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	} else {
		if err := msg.From(m.cfg.FromAddress); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	}

	if err := msg.To(m.cfg.ToAddress); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}

	// Replies go straight back to the submitter. The address passed field
	// validation but may still be undeliverable; that is the replier's problem.
	if err := msg.ReplyTo(fields.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}

	id := strconv.FormatInt(submissionID, 10)
	msg.Subject(fmt.Sprintf("%s #%s from %s", m.subjectPrefix, id, fields.Name))

	msg.SetBodyString(mail.TypeTextPlain, plainBody(fields, id))
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody(fields, id))

	if len(attachment) > 0 {
		if err := msg.AttachReader("submission-"+id+".pdf", bytes.NewReader(attachment)); err != nil {
			return nil, fmt.Errorf("failed to attach document: %w", err)
		}
	}

	return msg, nil
}

func plainBody(fields models.SanitizedFields, id string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Submission ID: %s\n", id)
	fmt.Fprintf(&b, "Name: %s\n", fields.Name)
	fmt.Fprintf(&b, "Email: %s\n", fields.Email)
	if fields.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", fields.Company)
	}
	if fields.Interest != "" {
		fmt.Fprintf(&b, "Interest: %s\n", fields.Interest)
	}
	fmt.Fprintf(&b, "\n%s\n", fields.Message)
	return b.String()
}

func htmlBody(fields models.SanitizedFields, id string) string {
	var b bytes.Buffer
	b.WriteString("<h2>New contact form submission</h2>")
	fmt.Fprintf(&b, "<p><strong>Submission ID:</strong> %s</p>", id)
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(fields.Name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(fields.Email))
	if fields.Company != "" {
		fmt.Fprintf(&b, "<p><strong>Company:</strong> %s</p>", html.EscapeString(fields.Company))
	}
	if fields.Interest != "" {
		fmt.Fprintf(&b, "<p><strong>Interest:</strong> %s</p>", html.EscapeString(fields.Interest))
	}
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(fields.Message))
	return b.String()
}

// LogMailer stands in for SMTP delivery when no transport is configured,
// logging the submission instead. Used for local testing.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, fields models.SanitizedFields, submissionID int64, attachment []byte) error {
	logger.Info("Mail delivery skipped (no SMTP transport configured)",
		zap.Int64("submission_id", submissionID),
		zap.String("name", fields.Name),
		zap.String("email", fields.Email),
		zap.Int("attachment_bytes", len(attachment)),
		zap.Time("received_at", time.Now()),
	)
	return nil
}
