package probes

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/Ishswami-Tech/healthops/health"
	"github.com/Ishswami-Tech/healthops/resilience"
)

// Mail checks an outbound SMTP gateway.
type Mail struct {
	addr     string
	username string
	password string
	hostname string
}

// NewMail creates a mail gateway probe. Credentials are optional; when set,
// the probe authenticates after STARTTLS.
func NewMail(addr, username, password string) *Mail {
	return &Mail{addr: addr, username: username, password: password, hostname: "healthd"}
}

// Check greets the server, optionally authenticates and sends NOOP.
func (m *Mail) Check(ctx context.Context) health.Result {
	start := time.Now()
	if err := m.session(ctx); err != nil {
		return health.Unhealthy("", err).WithResponseTime(time.Since(start))
	}
	return health.Healthy("connected").WithResponseTime(time.Since(start))
}

func (m *Mail) session(ctx context.Context) error {
	host, _, err := net.SplitHostPort(m.addr)
	if err != nil {
		return fmt.Errorf("mail address %q: %w", m.addr, err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return resilience.AsConnectionError("mail", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if err := c.Hello(m.hostname); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}

	if m.username != "" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}
		if err := c.Auth(smtp.PlainAuth("", m.username, m.password, host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Noop(); err != nil {
		return fmt.Errorf("smtp noop: %w", err)
	}
	return c.Quit()
}
