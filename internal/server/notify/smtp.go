package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	subjectOTP     = "StreamForge Account Verification - OTP Required"
	subjectReset   = "StreamForge Password Reset Request"
	subjectWelcome = "Welcome to StreamForge"

	senderName = "StreamForge Security"
)

// ErrNoRecipient is returned when a send is attempted without an address.
var ErrNoRecipient = errors.New("notify: empty recipient")

// SMTPConfig describes the outgoing mail server and the wording of
// expiry hints in the messages.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
	// Insecure allows plaintext SMTP (local relays, mail catchers).
	Insecure bool
	Timeout  time.Duration

	OTPTTL      time.Duration
	ResetTTL    time.Duration
	FrontendURL string
}

// SMTPNotifier renders account emails and delivers them over SMTP. A
// mail.Client holds its connection, so every delivery dials its own.
type SMTPNotifier struct {
	cfg  SMTPConfig
	opts []mail.Option
	// send is replaced in tests.
	send func(ctx context.Context, m *mail.Msg) error
}

// NewSMTPNotifier validates cfg. No connection is made until the first
// message is sent.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("notify: smtp host is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	policy := mail.TLSMandatory
	if cfg.Insecure {
		policy = mail.TLSOpportunistic
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(policy),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	n := &SMTPNotifier{cfg: cfg, opts: opts}
	if _, err := n.newClient(); err != nil {
		return nil, err
	}
	n.send = func(ctx context.Context, m *mail.Msg) error {
		c, err := n.newClient()
		if err != nil {
			return err
		}
		return c.DialAndSendWithContext(ctx, m)
	}
	return n, nil
}

func (n *SMTPNotifier) newClient() (*mail.Client, error) {
	c, err := mail.NewClient(n.cfg.Host, n.opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}
	return c, nil
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, to, name, code string) error {
	r, err := render(subjectOTP, "otp", templateData{
		Greeting:  greeting(name),
		Code:      code,
		ExpiresIn: humanDuration(n.cfg.OTPTTL),
	})
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, r)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	r, err := render(subjectReset, "reset", templateData{
		Greeting:  greeting(name),
		URL:       resetURL,
		ExpiresIn: humanDuration(n.cfg.ResetTTL),
	})
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, r)
}

func (n *SMTPNotifier) SendWelcome(ctx context.Context, to, name string) error {
	r, err := render(subjectWelcome, "welcome", templateData{
		Greeting: greeting(name),
		URL:      n.cfg.FrontendURL,
	})
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, r)
}

func (n *SMTPNotifier) deliver(ctx context.Context, to string, r *rendered) error {
	m, err := buildMsg(n.cfg.From, to, r)
	if err != nil {
		return err
	}
	if err := n.send(ctx, m); err != nil {
		return fmt.Errorf("notify: send %q: %w", r.Subject, err)
	}
	return nil
}

func buildMsg(from, to string, r *rendered) (*mail.Msg, error) {
	if strings.TrimSpace(to) == "" {
		return nil, ErrNoRecipient
	}

	m := mail.NewMsg()
	if err := m.FromFormat(senderName, from); err != nil {
		return nil, fmt.Errorf("notify: from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("notify: to address: %w", err)
	}
	m.Subject(r.Subject)
	m.SetBodyString(mail.TypeTextHTML, r.HTML)
	m.AddAlternativeString(mail.TypeTextPlain, r.Text)
	return m, nil
}

// humanDuration renders whole hours or minutes, e.g. "10 minutes", "1 hour".
func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	default:
		return plural(int(d.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
