package notify

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Mailer sends plain-text notification emails over SMTP.
type Mailer struct {
	host string
	port string
	from string
	pass string
}

func NewMailer(host, port, from, pass string) *Mailer {
	return &Mailer{host: host, port: port, from: from, pass: pass}
}

func (m *Mailer) Send(log *zerolog.Logger, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, to, subject, body,
	)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.from, m.pass, m.host)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		log.Warn().Msgf("failed to send email to %s: %v", to, err)
		return fmt.Errorf("send email: %w", err)
	}

	log.Info().Msgf("email sent to %s (subject: %s)", to, subject)
	return nil
}
