package mailer

import (
	"log/slog"

	"github.com/pkg/errors"
	gomail "gopkg.in/gomail.v2"
)

var ErrInvalidMailerConfig = errors.New("invalid mailer config")

// Mailer is a thin SMTP wrapper for transactional mail (OTP codes,
// price alerts). Delivery failures are the caller's to log; SendAsync
// swallows them after logging since mail is a side effect, never part
// of the primary action.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *slog.Logger
}

type Option func(*Mailer)

func WithSMTP(host string, port int, username, password string) Option {
	return func(m *Mailer) {
		m.host = host
		m.port = port
		m.username = username
		m.password = password
	}
}

func WithFrom(from string) Option {
	return func(m *Mailer) {
		m.from = from
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		m.logger = l
	}
}

func (m *Mailer) IsValid() error {
	switch {
	case m.host == "":
		return errors.Wrap(ErrInvalidMailerConfig, "host cannot be empty")
	case m.port <= 0:
		return errors.Wrap(ErrInvalidMailerConfig, "port must be positive")
	case m.from == "":
		return errors.Wrap(ErrInvalidMailerConfig, "from cannot be empty")
	case m.logger == nil:
		return errors.Wrap(ErrInvalidMailerConfig, "logger cannot be nil")
	default:
		return nil
	}
}

func New(opts ...Option) (*Mailer, error) {
	m := &Mailer{}

	for _, opt := range opts {
		opt(m)
	}

	return m, m.IsValid()
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}
	return nil
}

// SendAsync delivers in the background. Used for notification mail
// where the triggering request must not wait on SMTP.
func (m *Mailer) SendAsync(to, subject, body string) {
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			m.logger.Error("async mail delivery failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
