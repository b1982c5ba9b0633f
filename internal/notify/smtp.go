package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTP presets for SMTPConfig.Provider.
var smtpProviders = map[string]struct {
	host string
	port int
}{
	"gmail":   {"smtp.gmail.com", 587},
	"smtp2go": {"mail.smtp2go.com", 2525},
}

// SMTPConfig describes the outgoing mail server and addresses.
type SMTPConfig struct {
	Provider string // "gmail" or "smtp2go"; ignored when Host is set
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPNotifier emails submissions as HTML messages.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
	now      func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	host, port := cfg.Host, cfg.Port
	if host == "" {
		preset, ok := smtpProviders[cfg.Provider]
		if !ok {
			return nil, fmt.Errorf("notify: unknown smtp provider %q", cfg.Provider)
		}
		host = preset.host
		if port == 0 {
			port = preset.port
		}
	}
	if port == 0 {
		port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.To == "" {
		cfg.To = cfg.From
	}
	if cfg.From == "" {
		return nil, errors.New("notify: smtp sender address is required")
	}
	if cfg.Username != "" && cfg.Password == "" {
		return nil, errors.New("notify: smtp password is required")
	}

	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
		now:      time.Now,
	}, nil
}

func (s *SMTPNotifier) Notify(ctx context.Context, kind Kind, p Payload) error {
	msg, err := buildMessage(kind, p, s.from, s.to, s.now())
	if err != nil {
		return err
	}

	c, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(s.from); err != nil {
		return fmt.Errorf("smtp MAIL: %w", err)
	}
	if err := c.Rcpt(s.to); err != nil {
		return fmt.Errorf("smtp RCPT: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end body: %w", err)
	}
	return c.Quit()
}

// Verify connects, negotiates TLS and authenticates without sending mail.
func (s *SMTPNotifier) Verify(ctx context.Context) error {
	c, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Quit()
}

func (s *SMTPNotifier) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
				c.Close()
				return nil, fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	return c, nil
}

func buildMessage(kind Kind, p Payload, from, to string, now time.Time) ([]byte, error) {
	var subject, body string
	switch kind {
	case KindContact:
		subject = "Career Hub Contact: " + p.Subject
		body = fmt.Sprintf(`<h3>New Contact Form Submission</h3>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Subject:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>
`, html.EscapeString(p.Name), html.EscapeString(p.Email), html.EscapeString(p.Subject),
			strings.ReplaceAll(html.EscapeString(normalizeNewlines(p.Message)), "\n", "<br>"))
	case KindSubscribe:
		subject = "New Newsletter Subscription"
		body = fmt.Sprintf(`<h3>New Newsletter Subscription</h3>
<p><strong>Email:</strong> %s</p>
<p>Someone has subscribed to your newsletter.</p>
`, html.EscapeString(p.Email))
	default:
		return nil, fmt.Errorf("notify: unknown kind %q", kind)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&buf, "To: %s\r\n", headerValue(to))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(subject)))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(normalizeNewlines(body), "\n", "\r\n"))
	return buf.Bytes(), nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// headerValue drops line breaks so form input cannot inject headers.
func headerValue(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}
