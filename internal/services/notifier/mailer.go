package notifier

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	config "github.com/jafetfresenbet/TrueTime/internal/config/reminder"
	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
)

// Mailer delivers reminder mail over SMTP. Server replies in the 5xx
// range come back wrapped as reminder.PermanentError so the engine can
// tell a bad recipient from an unreachable relay.
type Mailer struct {
	addr       string
	auth       smtp.Auth
	useTLS     bool
	timeout    time.Duration
	from       string
	subjPrefix string

	log *zap.Logger
}

var _ reminder.EmailSender = (*Mailer)(nil)

func NewMailer(cfg config.SMTP) *Mailer {
	var auth smtp.Auth
	if cfg.User != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, host(cfg.Addr))
	}
	return &Mailer{
		addr:       cfg.Addr,
		auth:       auth,
		useTLS:     cfg.UseTLS,
		timeout:    cfg.Timeout,
		from:       cfg.From,
		subjPrefix: cfg.SubjPrefix,
		log:        zap.L().With(zap.String("component", "reminder.mailer")),
	}
}

func (m *Mailer) WithLogger(l *zap.Logger) *Mailer {
	if l == nil {
		return m
	}
	cp := *m
	cp.log = l.With(zap.String("component", "reminder.mailer"))
	return &cp
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	subj := strings.TrimSpace(m.subjPrefix + " " + subject)
	msg := []byte(
		"From: " + m.from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subj + "\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + body + "\r\n")

	start := time.Now()
	log := m.log.With(
		zap.String("smtp_addr", m.addr),
		zap.Bool("tls", m.useTLS),
		zap.String("to", to),
		zap.String("subject", subj),
	)

	if err := m.send(to, msg); err != nil {
		log.Error("send failed", zap.Error(err))
		return classify(err)
	}
	log.Info("email sent", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *Mailer) send(to string, msg []byte) error {
	if !m.useTLS {
		return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg)
	}

	dialer := net.Dialer{Timeout: m.timeout}
	conn, err := tls.DialWithDialer(&dialer, "tcp", m.addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}

// classify wraps permanent SMTP failures (5xx replies: bad mailbox,
// hard bounce) so they are not retried. Dial errors, timeouts and 4xx
// replies stay transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 500 && tpErr.Code < 600 {
		return &reminder.PermanentError{Err: err}
	}
	return err
}

func host(addr string) string {
	if i := strings.Index(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}
