package smtp

import (
	"context"
	"fmt"
	smtpPkg "net/smtp"
	"os"
	"strings"
)

type ItfSmtp interface {
	Send(ctx context.Context, subject, body string) error
}

type smtp struct {
	auth smtpPkg.Auth
	host string
	addr string
	mail string
	to   []string
}

// New reads SMTP_MAIL, SMTP_PASSWORD, SMTP_HOST, SMTP_PORT and SMTP_TO
// (comma separated). It returns nil when no recipient or sender is set.
func New() ItfSmtp {
	mail := os.Getenv("SMTP_MAIL")
	to := splitRecipients(os.Getenv("SMTP_TO"))
	if mail == "" || len(to) == 0 {
		return nil
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	auth := smtpPkg.PlainAuth("", mail, os.Getenv("SMTP_PASSWORD"), host)

	return &smtp{auth: auth, host: host, addr: host + ":" + port, mail: mail, to: to}
}

func splitRecipients(raw string) []string {
	var out []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (s *smtp) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := []byte(fmt.Sprintf("From: Avril <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.mail, strings.Join(s.to, ", "), subject, body))

	errCh := make(chan error, 1)
	go func() {
		errCh <- smtpPkg.SendMail(s.addr, s.auth, s.mail, s.to, message)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
