package mailer

import (
	"fmt"

	"github.com/google/uuid"
	gomail "gopkg.in/gomail.v2"

	"github.com/docnotify/docnotify-api/pkg/config"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

// Message is a single outbound email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Transport is an open, verified connection to the mail server. It is reused
// for every send within one batch and closed afterwards.
type Transport interface {
	Send(msg Message) (string, error)
	Close() error
}

// Dialer opens transports. Dialing doubles as the connection verification
// step: a Dialer that cannot reach or authenticate against the server fails
// here, before any message is composed.
type Dialer interface {
	Dial() (Transport, error)
}

// NewDialer returns the SMTP dialer for the given configuration. When the
// configuration is incomplete it returns a dialer whose Dial always fails
// with the configuration error, so the gap surfaces on use instead of at
// startup.
func NewDialer(cfg config.SMTPConfig) Dialer {
	d, err := NewSMTPDialer(cfg)
	if err != nil {
		return errDialer{err: err}
	}
	return d
}

type errDialer struct {
	err error
}

func (d errDialer) Dial() (Transport, error) {
	return nil, d.err
}

// SMTPDialer connects to an SMTP server using the configured credentials.
type SMTPDialer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPDialer validates the SMTP configuration and returns a dialer.
// Missing credentials are a configuration error, not a transport error.
func NewSMTPDialer(cfg config.SMTPConfig) (*SMTPDialer, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.Username == "" || cfg.Password == "" || cfg.From == "" {
		return nil, appErrors.Clone(appErrors.ErrConfig, "missing email configuration environment variables")
	}
	return &SMTPDialer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

// Dial opens and verifies the SMTP connection.
func (d *SMTPDialer) Dial() (Transport, error) {
	sc, err := d.dialer.Dial()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMailTransport.Code, appErrors.ErrMailTransport.Status, "email transport verification failed")
	}
	return &smtpTransport{sender: sc, from: d.from}, nil
}

type smtpTransport struct {
	sender gomail.SendCloser
	from   string
}

// Send delivers the message over the open connection and returns the
// generated message ID.
func (t *smtpTransport) Send(msg Message) (string, error) {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	messageID := fmt.Sprintf("<%s@docnotify>", uuid.NewString())
	m.SetHeader("Message-Id", messageID)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := gomail.Send(t.sender, m); err != nil {
		return "", err
	}
	return messageID, nil
}

func (t *smtpTransport) Close() error {
	return t.sender.Close()
}
