// Package mailer delivers rendered status reports over SMTP.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/yairfalse/vahti/internal/logger"
	"github.com/yairfalse/vahti/internal/output"
	"github.com/yairfalse/vahti/pkg/config"
	"github.com/yairfalse/vahti/pkg/types"
)

// Mailer sends one report per call. It does not retry; the scheduler that
// runs the reporter reruns it on the next tick anyway.
type Mailer struct {
	cfg config.SMTPConfig
	log logger.Logger
}

// New creates a mailer for the given SMTP settings.
func New(cfg config.SMTPConfig, log logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send renders the report and delivers it as a multipart/alternative message
// with a plain-text and an HTML part.
func (m *Mailer) Send(ctx context.Context, report *types.Report) error {
	msg, err := m.buildMessage(report)
	if err != nil {
		return err
	}

	client, err := m.newClient()
	if err != nil {
		return fmt.Errorf("smtp client setup failed: %w", err)
	}

	m.log.WithFields(map[string]interface{}{
		"host": m.cfg.Host,
		"to":   m.cfg.To,
	}).Info("sending report")

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp delivery to %s failed: %w", m.cfg.Host, err)
	}

	m.log.Info("report sent")
	return nil
}

func (m *Mailer) buildMessage(report *types.Report) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(recipients(m.cfg.To)...); err != nil {
		return nil, fmt.Errorf("invalid recipients %q: %w", m.cfg.To, err)
	}
	msg.Subject(m.cfg.Subject)

	// The plain part mirrors the HTML part so text-only clients lose nothing.
	msg.SetBodyString(mail.TypeTextPlain, output.NewTextFormatter(true).Format(report))
	msg.AddAlternativeString(mail.TypeTextHTML, output.RenderHTML(report))

	return msg, nil
}

func (m *Mailer) newClient() (*mail.Client, error) {
	policy := mail.TLSMandatory
	if !m.cfg.StartTLS() {
		policy = mail.NoTLS
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(policy),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	return mail.NewClient(m.cfg.Host, opts...)
}

// recipients splits a comma-separated address list.
func recipients(to string) []string {
	parts := strings.Split(to, ",")
	addrs := make([]string, 0, len(parts))
	for _, part := range parts {
		if addr := strings.TrimSpace(part); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
