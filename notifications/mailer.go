package notifications

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"supplier-compliance-backend/config"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer only logs messages. Used when MAIL_ENABLED is false.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer { return &LogMailer{log: log} }

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("mail delivery disabled, message logged",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}

// NewMailer picks the SMTP mailer when mail is enabled.
func NewMailer(cfg config.MailConfig, log *zap.Logger) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(log)
}
