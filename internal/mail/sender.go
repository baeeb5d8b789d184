package mail

import (
	"context"
	"fmt"

	"github.com/frahmantamala/recruitment/internal"
	gomail "github.com/wneessen/go-mail"
)

const implicitTLSPort = 465

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers over SMTP with implicit TLS on 465 and mandatory
// STARTTLS on any other port.
type SMTPSender struct {
	cfg internal.MailConfig
}

func NewSMTPSender(cfg internal.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	client, err := gomail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) options() []gomail.Option {
	port := s.cfg.Port
	if port == 0 {
		port = implicitTLSPort
	}
	opts := []gomail.Option{gomail.WithPort(port)}

	switch {
	case s.cfg.Insecure:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	case port == implicitTLSPort:
		opts = append(opts, gomail.WithSSL())
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}
