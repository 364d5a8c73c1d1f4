package email

import (
	"fmt"
	"time"

	"github.com/WadsonGarbes/formaplus-api/internal/config"
	"github.com/go-mail/mail/v2"
)

type SMTPClient struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPClient(cfg config.SMTPConfig) *SMTPClient {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	dialer.Timeout = 30 * time.Second

	switch cfg.Port {
	case 587:
		dialer.StartTLSPolicy = mail.MandatoryStartTLS
	case 465:
		dialer.SSL = true
		dialer.StartTLSPolicy = mail.NoStartTLS
	default:
		dialer.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	return &SMTPClient{
		dialer: dialer,
		from:   cfg.From,
	}
}

// SendPasswordReset mails the reset link. The token is also included as text
// for clients that strip links.
func (s *SMTPClient) SendPasswordReset(to, resetURL, token string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset Your Password")

	msg.SetBody("text/plain", fmt.Sprintf(
		"To reset your password, open the link below:\n\n%s\n\n"+
			"The link is valid for a short time. If you did not request a "+
			"password reset, you can ignore this message.\n\nToken: %s\n",
		resetURL, token,
	))

	msg.AddAlternative("text/html", fmt.Sprintf(`
		<p>To reset your password, <a href="%s">click here</a>.</p>
		<p>The link is valid for a short time. If you did not request a
		password reset, you can ignore this message.</p>
	`, resetURL))

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
